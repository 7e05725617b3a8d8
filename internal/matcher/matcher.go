// Package matcher decides whether a set of search results resolves a folder
// automatically or needs a human.
package matcher

import (
	"strings"

	"discmatch/internal/album"
	"discmatch/internal/provider"
)

// Resolve applies the auto-match policy to a folder's search results:
//
//   - no candidates: not found
//   - exactly one candidate: completed with that candidate, no title check
//   - several candidates: completed with the first whose title equals the
//     folder name case-insensitively, otherwise needs review
//
// The singleton rule trusts the search service unconditionally, so a lone
// wrong result is accepted as-is. Anything ambiguous defers to manual
// resolution.
func Resolve(folderName string, candidates []provider.Release) (album.Status, *provider.Release) {
	switch len(candidates) {
	case 0:
		return album.StatusNotFound, nil
	case 1:
		return album.StatusCompleted, &candidates[0]
	}

	want := strings.ToLower(folderName)
	for i := range candidates {
		if strings.ToLower(candidates[i].Title) == want {
			return album.StatusCompleted, &candidates[i]
		}
	}
	return album.StatusNeedsReview, nil
}
