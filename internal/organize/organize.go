// Package organize renames matched album folders to a normalized
// "Artist - Year - Album" layout derived from the selected release.
package organize

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"discmatch/internal/album"
)

var (
	illegalChars   = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// Sanitize strips characters that are not portable in folder names,
// collapses the replacement underscores, and trims leading/trailing spaces
// and dots.
func Sanitize(name string) string {
	s := illegalChars.ReplaceAllString(name, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, " .")
}

// SuggestedName builds the normalized folder name for a completed entry:
// "Artist - Year - Album", omitting parts the release does not carry.
// Returns "" when the entry has no selected release.
func SuggestedName(e *album.Entry) string {
	rel := e.Selected
	if rel == nil {
		return ""
	}

	var parts []string
	if artist := rel.Artist(); artist != "" {
		parts = append(parts, Sanitize(artist))
	}
	if rel.Year != "" {
		parts = append(parts, rel.Year)
	}
	if albumName := rel.Album(); albumName != "" {
		parts = append(parts, Sanitize(albumName))
	}
	if len(parts) == 0 {
		return Sanitize(rel.Title)
	}
	return Sanitize(strings.Join(parts, " - "))
}

// Suggestion pairs an entry with its proposed folder name.
type Suggestion struct {
	Entry   album.Entry
	NewName string
}

// Plan returns rename suggestions for every completed entry whose folder
// name differs from the normalized form.
func Plan(entries []album.Entry) []Suggestion {
	var suggestions []Suggestion
	for _, e := range entries {
		name := SuggestedName(&e)
		if name == "" || name == e.FolderName {
			continue
		}
		suggestions = append(suggestions, Suggestion{Entry: e, NewName: name})
	}
	return suggestions
}

// Apply renames the folder on disk and moves the stored entry to its new
// path. The rename is skipped with an error when the target already exists.
func Apply(ctx context.Context, store *album.Store, root string, s Suggestion) error {
	oldRel := s.Entry.Path
	newRel := path.Join(path.Dir(oldRel), s.NewName)
	if path.Dir(oldRel) == "." {
		newRel = s.NewName
	}

	oldAbs := filepath.Join(root, filepath.FromSlash(oldRel))
	newAbs := filepath.Join(root, filepath.FromSlash(newRel))

	if _, err := os.Stat(newAbs); err == nil {
		return fmt.Errorf("target folder already exists: %s", s.NewName)
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("renaming folder: %w", err)
	}

	if err := store.Rename(ctx, s.Entry.ID, newRel, s.NewName); err != nil {
		// Roll the filesystem back so disk and store stay in step.
		_ = os.Rename(newAbs, oldAbs)
		return err
	}
	return nil
}
