package provider

import (
	"context"
	"fmt"
	"strings"
)

// Release is a catalog record returned by a search, in the shape the rest of
// the application consumes. Titles follow the Discogs "Artist - Album"
// convention.
type Release struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	CatNo      string   `json:"catno,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Styles     []string `json:"styles,omitempty"`
	Country    string   `json:"country,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	CoverImage string   `json:"cover_image,omitempty"`
	Thumb      string   `json:"thumb,omitempty"`
}

// Artist returns the artist part of the "Artist - Album" title, or "" when
// the title does not follow the convention.
func (r Release) Artist() string {
	if artist, _, ok := strings.Cut(r.Title, " - "); ok {
		return strings.TrimSpace(artist)
	}
	return ""
}

// Album returns the album part of the "Artist - Album" title, falling back
// to the whole title.
func (r Release) Album() string {
	if _, album, ok := strings.Cut(r.Title, " - "); ok {
		return strings.TrimSpace(album)
	}
	return r.Title
}

// Track is one row of a release tracklist.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// ReleaseDetail is the extra information available for a single release.
type ReleaseDetail struct {
	ID        int      `json:"id"`
	Notes     string   `json:"notes,omitempty"`
	Tracklist []Track  `json:"tracklist,omitempty"`
	Images    []string `json:"images,omitempty"`
}

// Searcher is the search half of the catalog client, as consumed by the
// scan driver.
type Searcher interface {
	SearchRelease(ctx context.Context, query string) ([]Release, error)
}

// DetailFetcher fetches extended information for a selected release.
type DetailFetcher interface {
	GetRelease(ctx context.Context, id int) (*ReleaseDetail, error)
}

// ErrAuthRequired indicates the catalog needs an access token but none is
// configured, or the configured one was rejected.
type ErrAuthRequired struct {
	Provider string
}

func (e *ErrAuthRequired) Error() string {
	return fmt.Sprintf("provider %s: access token not configured or rejected", e.Provider)
}

// ErrNotFound indicates the provider has no data for the requested ID.
type ErrNotFound struct {
	Provider string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: release %s not found", e.Provider, e.ID)
}

// ErrUnavailable indicates a transient failure (network error, rate-limited,
// server error).
type ErrUnavailable struct {
	Provider string
	Cause    error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }
