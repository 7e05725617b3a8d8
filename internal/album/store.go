package album

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"discmatch/internal/provider"
)

const entryColumns = `id, folder_name, path, status, search_results, selected, analysis, files, error, created_at, updated_at`

// Store persists the entry working set.
type Store struct {
	db *sql.DB
}

// NewStore creates an entry store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new entry. New entries always start pending with no
// search results.
func (s *Store) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.FolderName == "" {
		return fmt.Errorf("entry folder name is required")
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if !ValidStatus(e.Status) {
		return fmt.Errorf("invalid entry status: %q", e.Status)
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	results, selected, files, err := encodeColumns(e)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.FolderName, e.Path, e.Status,
		results, selected, e.Analysis, files, e.Error,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID (its folder path).
// Returns nil, nil when no entry matches.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	return e, nil
}

// List returns all entries in insertion order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY rowid`)
}

// ListByStatus returns all entries with the given status in insertion order.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]Entry, error) {
	return s.list(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE status = ? ORDER BY rowid`, status)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Update replaces all mutable fields of an entry in one statement, so a
// concurrent reader sees either the old row or the new row, never a mix.
// FolderName and path are deliberately not part of the update.
func (s *Store) Update(ctx context.Context, e *Entry) error {
	if !ValidStatus(e.Status) {
		return fmt.Errorf("invalid entry status: %q", e.Status)
	}
	if (e.Selected != nil) != (e.Status == StatusCompleted) {
		return fmt.Errorf("entry %s: selected release and completed status must agree", e.ID)
	}

	e.UpdatedAt = time.Now().UTC()

	results, selected, files, err := encodeColumns(e)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET status = ?, search_results = ?, selected = ?, analysis = ?, files = ?, error = ?, updated_at = ?
		WHERE id = ?
	`,
		e.Status, results, selected, e.Analysis, files, e.Error,
		e.UpdatedAt.Format(time.RFC3339), e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry not found: %s", e.ID)
	}
	return nil
}

// Rename moves an entry to a new folder path, updating its identity and leaf
// name. Used by the organizer after a folder rename on disk.
func (s *Store) Rename(ctx context.Context, oldID, newID, newFolderName string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE entries SET id = ?, path = ?, folder_name = ?, updated_at = ?
		WHERE id = ?
	`, newID, newID, newFolderName, time.Now().UTC().Format(time.RFC3339), oldID)
	if err != nil {
		return fmt.Errorf("renaming entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry not found: %s", oldID)
	}
	return nil
}

// Sync reconciles the stored working set with the entries discovered by a
// fresh walk. New folders are inserted as pending, folders that vanished are
// removed, and entries that persist keep their state so a re-run only
// processes what is still pending. Returns (added, removed).
func (s *Store) Sync(ctx context.Context, discovered []Entry) (int, int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.ID] = true
	}

	seen := make(map[string]bool, len(discovered))
	added := 0
	for i := range discovered {
		e := discovered[i]
		seen[e.ID] = true
		if known[e.ID] {
			continue
		}
		if err := s.Create(ctx, &e); err != nil {
			return added, 0, err
		}
		added++
	}

	removed := 0
	for _, e := range existing {
		if seen[e.ID] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, e.ID); err != nil {
			return added, removed, fmt.Errorf("removing stale entry: %w", err)
		}
		removed++
	}

	return added, removed, nil
}

// CountByStatus returns entry counts keyed by status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM entries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func encodeColumns(e *Entry) (results, selected any, files string, err error) {
	sr := e.SearchResults
	if sr == nil {
		sr = []provider.Release{}
	}
	resultsJSON, err := json.Marshal(sr)
	if err != nil {
		return nil, nil, "", fmt.Errorf("encoding search results: %w", err)
	}

	fl := e.Files
	if fl == nil {
		fl = []string{}
	}
	filesJSON, err := json.Marshal(fl)
	if err != nil {
		return nil, nil, "", fmt.Errorf("encoding files: %w", err)
	}

	if e.Selected == nil {
		return string(resultsJSON), nil, string(filesJSON), nil
	}
	selectedJSON, err := json.Marshal(e.Selected)
	if err != nil {
		return nil, nil, "", fmt.Errorf("encoding selected release: %w", err)
	}
	return string(resultsJSON), string(selectedJSON), string(filesJSON), nil
}

// scanEntry scans a database row into an Entry.
func scanEntry(row interface{ Scan(...any) error }) (*Entry, error) {
	var e Entry
	var results, files string
	var selected sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&e.ID, &e.FolderName, &e.Path, &e.Status,
		&results, &selected, &e.Analysis, &files, &e.Error,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(results), &e.SearchResults); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	if err := json.Unmarshal([]byte(files), &e.Files); err != nil {
		return nil, fmt.Errorf("decoding files: %w", err)
	}
	if selected.Valid {
		var rel provider.Release
		if err := json.Unmarshal([]byte(selected.String), &rel); err != nil {
			return nil, fmt.Errorf("decoding selected release: %w", err)
		}
		e.Selected = &rel
	}

	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)

	return &e, nil
}

// parseTime parses a time string, handling both RFC3339 and SQLite datetime formats.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
