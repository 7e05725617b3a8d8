// Package export serializes the entry working set to flat tabular formats.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"discmatch/internal/album"
	"discmatch/internal/filesystem"
)

// DefaultCSVName is the artifact name offered for CSV downloads.
const DefaultCSVName = "album_metadata_export.csv"

// csvHeader is the fixed column layout. Order matters: rows from new runs
// must line up with prior exports.
var csvHeader = []string{
	"Folder Name", "File Count", "Title", "Year", "Label", "Catalog No",
	"Genre", "Style", "Country", "AI Analysis", "Cover URL", "Discogs ID",
}

// WriteCSV writes all entries as UTF-8 comma-separated rows, header first.
// Entries without a selected release still produce a row with the metadata
// columns empty. Free-text columns (folder name, title, label, genre, style,
// annotation) are always quoted with embedded quotes doubled; numeric and
// simple columns are emitted bare.
func WriteCSV(w io.Writer, entries []album.Entry) error {
	if _, err := io.WriteString(w, strings.Join(csvHeader, ",")+"\n"); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range entries {
		if _, err := io.WriteString(w, csvRow(&entries[i])+"\n"); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return nil
}

// CSVBytes renders the full CSV document in memory.
func CSVBytes(entries []album.Entry) ([]byte, error) {
	var b strings.Builder
	if err := WriteCSV(&b, entries); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// ExportCSV writes the CSV document to path atomically.
func ExportCSV(path string, entries []album.Entry) error {
	data, err := CSVBytes(entries)
	if err != nil {
		return err
	}
	if err := filesystem.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	return nil
}

func csvRow(e *album.Entry) string {
	var title, year, labels, catno, genres, styles, country, cover, id string
	if rel := e.Selected; rel != nil {
		title = rel.Title
		year = rel.Year
		labels = strings.Join(rel.Labels, ", ")
		catno = rel.CatNo
		genres = strings.Join(rel.Genres, ", ")
		styles = strings.Join(rel.Styles, ", ")
		country = rel.Country
		cover = rel.CoverImage
		id = strconv.Itoa(rel.ID)
	}

	fields := []string{
		quote(e.FolderName),
		strconv.Itoa(len(e.Files)),
		quote(title),
		year,
		quote(labels),
		catno,
		quote(genres),
		quote(styles),
		country,
		quote(e.Analysis),
		cover,
		id,
	}
	return strings.Join(fields, ",")
}

// quote wraps a field in double quotes, doubling any embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
