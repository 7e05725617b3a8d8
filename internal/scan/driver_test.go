package scan

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"discmatch/internal/album"
	"discmatch/internal/database"
	"discmatch/internal/provider"
)

// fakeSearcher serves canned results per folder name and records every call.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]provider.Release
	errs    map[string]error
	calls   []string
	times   []time.Time
	onCall  func(query string)
}

func (f *fakeSearcher) SearchRelease(ctx context.Context, query string) ([]provider.Release, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.times = append(f.times, time.Now())
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(query)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAnnotator struct {
	text string
	err  error
}

func (f *fakeAnnotator) Annotate(ctx context.Context, folderName string, rel provider.Release) (string, error) {
	return f.text, f.err
}

func setupStore(t *testing.T) (*album.Store, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return album.NewStore(db), db
}

func seedEntry(t *testing.T, store *album.Store, id, folder string) {
	t.Helper()
	err := store.Create(context.Background(), &album.Entry{
		ID:         id,
		FolderName: folder,
		Path:       id,
	})
	if err != nil {
		t.Fatalf("seeding entry %s: %v", id, err)
	}
}

func newTestDriver(store *album.Store, searcher provider.Searcher) *Driver {
	d := NewDriver(Config{Store: store, Searcher: searcher})
	d.delay = 10 * time.Millisecond
	return d
}

func TestRunResolvesEntries(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/Exact", "Exact")
	seedEntry(t, store, "x/Lonely", "Lonely")
	seedEntry(t, store, "x/Ambiguous", "Ambiguous")
	seedEntry(t, store, "x/Missing", "Missing")

	searcher := &fakeSearcher{results: map[string][]provider.Release{
		"Exact": {
			{ID: 1, Title: "Not It"},
			{ID: 2, Title: "exact"},
		},
		"Lonely": {
			{ID: 3, Title: "Something Else Entirely"},
		},
		"Ambiguous": {
			{ID: 4, Title: "Ambiguous Vol 1"},
			{ID: 5, Title: "Ambiguous Vol 2"},
		},
		"Missing": {},
	}}
	driver := newTestDriver(store, searcher)

	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Processed != 4 {
		t.Errorf("expected 4 processed, got %d", result.Processed)
	}
	if result.Completed != 2 || result.NeedsReview != 1 || result.NotFound != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	ctx := context.Background()
	checks := []struct {
		id     string
		status album.Status
		relID  int
	}{
		{"x/Exact", album.StatusCompleted, 2},
		{"x/Lonely", album.StatusCompleted, 3},
		{"x/Ambiguous", album.StatusNeedsReview, 0},
		{"x/Missing", album.StatusNotFound, 0},
	}
	for _, c := range checks {
		e, err := store.Get(ctx, c.id)
		if err != nil {
			t.Fatalf("Get %s: %v", c.id, err)
		}
		if e.Status != c.status {
			t.Errorf("%s: expected status %s, got %s", c.id, c.status, e.Status)
		}
		if c.relID == 0 {
			if e.Selected != nil {
				t.Errorf("%s: unexpected selection %+v", c.id, e.Selected)
			}
		} else if e.Selected == nil || e.Selected.ID != c.relID {
			t.Errorf("%s: expected release %d, got %+v", c.id, c.relID, e.Selected)
		}
	}

	// The ambiguous entry keeps its candidates for manual review.
	e, _ := store.Get(ctx, "x/Ambiguous")
	if len(e.SearchResults) != 2 {
		t.Errorf("expected stored candidates, got %d", len(e.SearchResults))
	}
}

func TestRunPacesSearches(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/A", "A")
	seedEntry(t, store, "x/B", "B")
	seedEntry(t, store, "x/C", "C")

	searcher := &fakeSearcher{results: map[string][]provider.Release{}}
	driver := newTestDriver(store, searcher)
	driver.delay = 50 * time.Millisecond

	if _, err := driver.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(searcher.times) != 3 {
		t.Fatalf("expected 3 searches, got %d", len(searcher.times))
	}
	for i := 1; i < len(searcher.times); i++ {
		if gap := searcher.times[i].Sub(searcher.times[i-1]); gap < 50*time.Millisecond {
			t.Errorf("searches %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/A", "A")
	seedEntry(t, store, "x/B", "B")

	searcher := &fakeSearcher{results: map[string][]provider.Release{
		"A": {{ID: 1, Title: "A"}},
		"B": {},
	}}
	driver := newTestDriver(store, searcher)

	if _, err := driver.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if searcher.callCount() != 2 {
		t.Fatalf("expected 2 searches on first pass, got %d", searcher.callCount())
	}

	// Everything is resolved, so a second pass must not touch the network.
	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if searcher.callCount() != 2 {
		t.Errorf("expected no searches on second pass, got %d total", searcher.callCount())
	}
	if result.Processed != 0 {
		t.Errorf("expected 0 processed on second pass, got %d", result.Processed)
	}
}

func TestRunIsolatesEntryFailures(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/Bad", "Bad")
	seedEntry(t, store, "x/Good", "Good")

	searcher := &fakeSearcher{
		results: map[string][]provider.Release{
			"Good": {{ID: 1, Title: "Good"}},
		},
		errs: map[string]error{
			"Bad": errors.New("service unavailable"),
		},
	}
	driver := newTestDriver(store, searcher)

	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Errors != 1 || result.Completed != 1 {
		t.Errorf("expected 1 error and 1 completed, got %+v", result)
	}

	bad, _ := store.Get(context.Background(), "x/Bad")
	if bad.Status != album.StatusError {
		t.Errorf("expected error status, got %s", bad.Status)
	}
	if !strings.Contains(bad.Error, "service unavailable") {
		t.Errorf("expected error message recorded, got %q", bad.Error)
	}

	good, _ := store.Get(context.Background(), "x/Good")
	if good.Status != album.StatusCompleted {
		t.Errorf("expected later entry still completed, got %s", good.Status)
	}
}

func TestRunCancelRestoresEntry(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/A", "A")
	seedEntry(t, store, "x/B", "B")

	ctx, cancel := context.WithCancel(context.Background())
	searcher := &fakeSearcher{
		results: map[string][]provider.Release{},
		onCall:  func(string) { cancel() },
	}
	driver := newTestDriver(store, searcher)

	_, err := driver.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if searcher.callCount() != 1 {
		t.Errorf("expected loop to stop after 1 search, got %d", searcher.callCount())
	}

	// The in-flight entry goes back to pending so a re-run picks it up.
	a, _ := store.Get(context.Background(), "x/A")
	if a.Status != album.StatusPending {
		t.Errorf("expected first entry restored to pending, got %s", a.Status)
	}
	b, _ := store.Get(context.Background(), "x/B")
	if b.Status != album.StatusPending {
		t.Errorf("expected untouched entry still pending, got %s", b.Status)
	}
}

func TestRunAnnotatesCompletedEntries(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/A", "A")

	searcher := &fakeSearcher{results: map[string][]provider.Release{
		"A": {{ID: 1, Title: "A"}},
	}}
	driver := newTestDriver(store, searcher)
	driver.annotator = &fakeAnnotator{text: "A fine record."}

	if _, err := driver.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	e, _ := store.Get(context.Background(), "x/A")
	if e.Analysis != "A fine record." {
		t.Errorf("expected annotation persisted, got %q", e.Analysis)
	}
}

func TestRunSwallowsAnnotatorErrors(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/A", "A")

	searcher := &fakeSearcher{results: map[string][]provider.Release{
		"A": {{ID: 1, Title: "A"}},
	}}
	driver := newTestDriver(store, searcher)
	driver.annotator = &fakeAnnotator{err: errors.New("model offline")}

	if _, err := driver.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	e, _ := store.Get(context.Background(), "x/A")
	if e.Status != album.StatusCompleted {
		t.Errorf("expected completed despite annotator failure, got %s", e.Status)
	}
	if e.Analysis != "" {
		t.Errorf("expected empty analysis, got %q", e.Analysis)
	}
}

func TestResolveManual(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/Ambiguous", "Ambiguous")

	searcher := &fakeSearcher{results: map[string][]provider.Release{
		"Ambiguous": {
			{ID: 10, Title: "Ambiguous Vol 1"},
			{ID: 11, Title: "Ambiguous Vol 2"},
		},
	}}
	driver := newTestDriver(store, searcher)
	if _, err := driver.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	resolved, err := driver.ResolveManual(context.Background(), "x/Ambiguous", 1)
	if err != nil {
		t.Fatalf("ResolveManual failed: %v", err)
	}
	if resolved.Status != album.StatusCompleted {
		t.Errorf("expected completed, got %s", resolved.Status)
	}
	if resolved.Selected == nil || resolved.Selected.ID != 11 {
		t.Fatalf("expected release 11 selected, got %+v", resolved.Selected)
	}

	// The choice persists.
	e, _ := store.Get(context.Background(), "x/Ambiguous")
	if e.Selected == nil || e.Selected.ID != 11 {
		t.Errorf("expected persisted selection 11, got %+v", e.Selected)
	}
}

func TestResolveManualValidation(t *testing.T) {
	store, _ := setupStore(t)
	seedEntry(t, store, "x/Fresh", "Fresh")
	seedEntry(t, store, "x/Reviewed", "Reviewed")

	searcher := &fakeSearcher{results: map[string][]provider.Release{
		"Reviewed": {
			{ID: 1, Title: "Reviewed Vol 1"},
			{ID: 2, Title: "Reviewed Vol 2"},
		},
		"Fresh": {{ID: 3, Title: "Fresh"}},
	}}
	driver := newTestDriver(store, searcher)

	// Never searched: nothing to choose from.
	if _, err := driver.ResolveManual(context.Background(), "x/Fresh", 0); !errors.Is(err, ErrNotReviewable) {
		t.Errorf("expected ErrNotReviewable, got %v", err)
	}

	if _, err := driver.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := driver.ResolveManual(context.Background(), "x/Reviewed", 5); err == nil {
		t.Error("expected out-of-range error")
	}
	if _, err := driver.ResolveManual(context.Background(), "x/Reviewed", -1); err == nil {
		t.Error("expected negative index error")
	}
	if _, err := driver.ResolveManual(context.Background(), "x/Nope", 0); err == nil {
		t.Error("expected missing entry error")
	}
}
