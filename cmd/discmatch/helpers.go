package main

import (
	"context"
	"fmt"
	"strconv"

	"discmatch/internal/album"
)

// resolveEntryArg finds an entry by argument: either the row number shown by
// `discmatch list` (1-based) or the entry's folder path.
func resolveEntryArg(ctx context.Context, store *album.Store, arg string) (*album.Entry, error) {
	if e, err := store.Get(ctx, arg); err != nil {
		return nil, err
	} else if e != nil {
		return e, nil
	}

	if n, err := strconv.Atoi(arg); err == nil {
		entries, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > len(entries) {
			return nil, fmt.Errorf("entry %d out of range (have %d)", n, len(entries))
		}
		return &entries[n-1], nil
	}

	return nil, fmt.Errorf("entry not found: %s", arg)
}

// parseStatus converts a user-supplied status filter into an album.Status.
func parseStatus(s string) (album.Status, error) {
	status := album.Status(s)
	if !album.ValidStatus(status) {
		return "", fmt.Errorf("unknown status %q (expected pending, searching, needs_review, completed, not_found or error)", s)
	}
	return status, nil
}

// releaseSummary renders a one-line description of a matched release.
func releaseSummary(e *album.Entry) (title, year, id string) {
	if rel := e.Selected; rel != nil {
		return rel.Title, rel.Year, strconv.Itoa(rel.ID)
	}
	return "", "", ""
}
