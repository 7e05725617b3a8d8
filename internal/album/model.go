package album

import (
	"time"

	"discmatch/internal/provider"
)

// Status tracks an entry through the matching pipeline.
type Status string

// Entry statuses.
const (
	StatusPending     Status = "pending"
	StatusSearching   Status = "searching"
	StatusNeedsReview Status = "needs_review"
	StatusCompleted   Status = "completed"
	StatusNotFound    Status = "not_found"
	StatusError       Status = "error"
)

// Terminal reports whether the status is an end state for the scan driver.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusNotFound, StatusNeedsReview, StatusError:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for list output.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusSearching:
		return "Searching"
	case StatusNeedsReview:
		return "Needs Review"
	case StatusCompleted:
		return "Completed"
	case StatusNotFound:
		return "Not Found"
	case StatusError:
		return "Error"
	default:
		return string(s)
	}
}

// ValidStatus reports whether s is a known entry status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusSearching, StatusNeedsReview,
		StatusCompleted, StatusNotFound, StatusError:
		return true
	}
	return false
}

// Entry is one candidate album folder tracked through the matching pipeline.
//
// ID is the full relative folder path and doubles as the primary key.
// FolderName and Path never change after creation; everything else is
// mutated only by the scan driver or the manual resolution flow, one
// whole-entry update at a time.
type Entry struct {
	ID            string
	FolderName    string
	Path          string
	Status        Status
	SearchResults []provider.Release
	Selected      *provider.Release
	Analysis      string
	Files         []string
	Error         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
