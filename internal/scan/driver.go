// Package scan owns the sequential matching pipeline: it walks the pending
// entry set one folder at a time, searches the catalog, applies the
// auto-match policy, and commits each entry's outcome as a single state
// update. Manual resolution funnels through the same completion path.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"discmatch/internal/album"
	"discmatch/internal/event"
	"discmatch/internal/matcher"
	"discmatch/internal/provider"
)

const minDelay = time.Second

// Annotator produces a free-text note for a matched release. Best effort:
// the driver swallows its errors.
type Annotator interface {
	Annotate(ctx context.Context, folderName string, rel provider.Release) (string, error)
}

// CoverFetcher downloads an image by URL.
type CoverFetcher interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Result summarizes one full pass over the pending entries.
type Result struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Processed   int        `json:"processed"`
	Completed   int        `json:"completed"`
	NeedsReview int        `json:"needs_review"`
	NotFound    int        `json:"not_found"`
	Errors      int        `json:"errors"`
	Skipped     int        `json:"skipped"`
}

// Config wires a Driver.
type Config struct {
	Store     *album.Store
	Searcher  provider.Searcher
	Details   provider.DetailFetcher // optional: enables sidecar enrichment
	Covers    CoverFetcher           // optional: enables cover download
	Annotator Annotator              // optional: enables AI annotation
	Bus       *event.Bus             // optional
	Logger    *slog.Logger
	Delay     time.Duration // floor 1s, enforced
	// LibraryRoot is the absolute path the entry paths are relative to.
	// Empty disables all writes into album folders.
	LibraryRoot string
}

// Driver runs the sequential scan and the manual resolution flow.
type Driver struct {
	store       *album.Store
	searcher    provider.Searcher
	details     provider.DetailFetcher
	covers      CoverFetcher
	annotator   Annotator
	bus         *event.Bus
	logger      *slog.Logger
	delay       time.Duration
	libraryRoot string

	mu        sync.Mutex
	reviewing map[string]bool
}

// NewDriver creates a scan driver. The inter-request delay never drops
// below one second; the catalog's rate limit is a hard contract, not a
// tuning knob.
func NewDriver(cfg Config) *Driver {
	delay := cfg.Delay
	if delay < minDelay {
		delay = minDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		store:       cfg.Store,
		searcher:    cfg.Searcher,
		details:     cfg.Details,
		covers:      cfg.Covers,
		annotator:   cfg.Annotator,
		bus:         cfg.Bus,
		logger:      logger,
		delay:       delay,
		libraryRoot: cfg.LibraryRoot,
	}
}

// Run processes every pending entry in insertion order, strictly one at a
// time with the configured delay between consecutive searches. Failures are
// recorded on the entry and never abort the pass; only context cancellation
// stops the loop early. A pass over a fully resolved set performs zero
// external calls.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	entries, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	result := &Result{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	first := true
	for i := range entries {
		e := entries[i]

		if err := ctx.Err(); err != nil {
			return d.finish(result), err
		}
		if e.Status != album.StatusPending || d.underReview(e.ID) {
			if e.Status == album.StatusPending {
				result.Skipped++
			}
			continue
		}

		// Pace every search after the first.
		if !first {
			if err := d.wait(ctx); err != nil {
				return d.finish(result), err
			}
		}
		first = false

		result.Processed++
		if err := d.processEntry(ctx, &e, result); err != nil {
			// Only cancellation escapes processEntry.
			return d.finish(result), err
		}
	}

	final := d.finish(result)
	d.publish(event.Event{
		Type: event.ScanCompleted,
		Data: map[string]any{
			"scan_id":      final.ID,
			"processed":    final.Processed,
			"completed":    final.Completed,
			"needs_review": final.NeedsReview,
			"not_found":    final.NotFound,
			"errors":       final.Errors,
		},
	})
	return final, nil
}

func (d *Driver) processEntry(ctx context.Context, e *album.Entry, result *Result) error {
	e.Status = album.StatusSearching
	if err := d.store.Update(ctx, e); err != nil {
		return fmt.Errorf("marking entry searching: %w", err)
	}
	d.publishEntry(e)

	releases, err := d.searcher.SearchRelease(ctx, e.FolderName)
	if err != nil {
		// A canceled context is the caller stopping the scan, not a
		// per-entry failure: put the entry back and surface it.
		if ctx.Err() != nil {
			e.Status = album.StatusPending
			e.SearchResults = nil
			if uerr := d.store.Update(context.Background(), e); uerr != nil {
				d.logger.Warn("restoring entry after cancel", "entry", e.ID, "error", uerr)
			}
			return ctx.Err()
		}

		d.logger.Warn("search failed", "entry", e.ID, "error", err)
		e.Status = album.StatusError
		e.Error = err.Error()
		if uerr := d.store.Update(ctx, e); uerr != nil {
			return fmt.Errorf("recording entry error: %w", uerr)
		}
		d.publishEntry(e)
		result.Errors++
		return nil
	}

	status, selected := matcher.Resolve(e.FolderName, releases)
	e.SearchResults = releases
	e.Error = ""

	if selected != nil {
		if err := d.complete(ctx, e, selected); err != nil {
			return err
		}
		result.Completed++
		return nil
	}

	e.Status = status
	if err := d.store.Update(ctx, e); err != nil {
		return fmt.Errorf("committing entry: %w", err)
	}
	d.publishEntry(e)

	switch status {
	case album.StatusNeedsReview:
		result.NeedsReview++
	case album.StatusNotFound:
		result.NotFound++
	}
	return nil
}

// ErrNotReviewable is returned when manual resolution targets an entry that
// has never been searched.
var ErrNotReviewable = errors.New("entry has no search results to choose from")

// ResolveManual finalizes an entry with a candidate picked by the user from
// its stored search results. It runs the identical completion path as the
// automatic flow, so both converge on the same terminal shape.
func (d *Driver) ResolveManual(ctx context.Context, id string, index int) (*album.Entry, error) {
	if !d.beginReview(id) {
		return nil, fmt.Errorf("entry %s is already under review", id)
	}
	defer d.endReview(id)

	e, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("entry not found: %s", id)
	}
	if len(e.SearchResults) == 0 {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotReviewable)
	}
	if index < 0 || index >= len(e.SearchResults) {
		return nil, fmt.Errorf("entry %s: candidate %d out of range (have %d)",
			id, index, len(e.SearchResults))
	}

	chosen := e.SearchResults[index]
	e.Error = ""
	if err := d.complete(ctx, e, &chosen); err != nil {
		return nil, err
	}
	return e, nil
}

// complete is the single finalization path for both automatic and manual
// matches: annotate (best effort), commit the terminal state in one update,
// then enrich the album folder (best effort).
func (d *Driver) complete(ctx context.Context, e *album.Entry, rel *provider.Release) error {
	if d.annotator != nil {
		text, err := d.annotator.Annotate(ctx, e.FolderName, *rel)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Warn("annotation failed", "entry", e.ID, "error", err)
			text = ""
		}
		e.Analysis = text
	}

	e.Status = album.StatusCompleted
	e.Selected = rel

	if err := d.store.Update(ctx, e); err != nil {
		return fmt.Errorf("committing entry: %w", err)
	}
	d.publishEntry(e)
	d.logger.Info("entry matched",
		"entry", e.ID,
		"release", rel.Title,
		"discogs_id", rel.ID,
	)

	d.enrichFolder(ctx, e, rel)
	return nil
}

// underReview reports whether the manual flow currently holds the entry.
func (d *Driver) underReview(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reviewing[id]
}

func (d *Driver) beginReview(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reviewing == nil {
		d.reviewing = make(map[string]bool)
	}
	if d.reviewing[id] {
		return false
	}
	d.reviewing[id] = true
	return true
}

func (d *Driver) endReview(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.reviewing, id)
}

func (d *Driver) wait(ctx context.Context) error {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Driver) finish(r *Result) *Result {
	now := time.Now().UTC()
	r.CompletedAt = &now
	return r
}

func (d *Driver) publish(e event.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

func (d *Driver) publishEntry(e *album.Entry) {
	d.publish(event.Event{
		Type: event.EntryUpdated,
		Data: map[string]any{
			"entry":  e.ID,
			"folder": e.FolderName,
			"status": string(e.Status),
		},
	})
}
