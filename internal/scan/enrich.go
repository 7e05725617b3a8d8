package scan

import (
	"context"
	"encoding/json"
	"path/filepath"

	"discmatch/internal/album"
	"discmatch/internal/filesystem"
	"discmatch/internal/provider"
)

// sidecar is the album_info.json document written into a matched folder.
type sidecar struct {
	Artist    string           `json:"artist"`
	Album     string           `json:"album"`
	Title     string           `json:"title"`
	Year      string           `json:"year,omitempty"`
	Labels    []string         `json:"labels,omitempty"`
	CatNo     string           `json:"catno,omitempty"`
	Genres    []string         `json:"genres,omitempty"`
	Styles    []string         `json:"styles,omitempty"`
	Country   string           `json:"country,omitempty"`
	DiscogsID int              `json:"discogs_id"`
	Notes     string           `json:"notes,omitempty"`
	Tracklist []provider.Track `json:"tracklist,omitempty"`
}

// enrichFolder writes the metadata sidecar and the cover image into the
// matched album folder. Everything here is best effort: a failure is logged
// and never alters the entry's state.
func (d *Driver) enrichFolder(ctx context.Context, e *album.Entry, rel *provider.Release) {
	if d.libraryRoot == "" {
		return
	}
	dir := filepath.Join(d.libraryRoot, filepath.FromSlash(e.Path))

	doc := sidecar{
		Artist:    rel.Artist(),
		Album:     rel.Album(),
		Title:     rel.Title,
		Year:      rel.Year,
		Labels:    rel.Labels,
		CatNo:     rel.CatNo,
		Genres:    rel.Genres,
		Styles:    rel.Styles,
		Country:   rel.Country,
		DiscogsID: rel.ID,
	}

	coverURL := rel.CoverImage
	if d.details != nil {
		detail, err := d.details.GetRelease(ctx, rel.ID)
		if err != nil {
			d.logger.Warn("fetching release details", "entry", e.ID, "error", err)
		} else {
			doc.Notes = detail.Notes
			doc.Tracklist = detail.Tracklist
			if coverURL == "" && len(detail.Images) > 0 {
				coverURL = detail.Images[0]
			}
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		d.logger.Warn("encoding album sidecar", "entry", e.ID, "error", err)
	} else if err := filesystem.WriteFileAtomic(filepath.Join(dir, "album_info.json"), data, 0o644); err != nil {
		d.logger.Warn("writing album sidecar", "entry", e.ID, "error", err)
	}

	if d.covers == nil || coverURL == "" {
		return
	}
	img, err := d.covers.DownloadImage(ctx, coverURL)
	if err != nil {
		d.logger.Warn("downloading cover", "entry", e.ID, "error", err)
		return
	}
	if err := filesystem.WriteFileAtomic(filepath.Join(dir, "cover.jpg"), img, 0o644); err != nil {
		d.logger.Warn("writing cover", "entry", e.ID, "error", err)
	}
}
