package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discmatch/internal/album"
	"discmatch/internal/provider"
)

func completedEntry() album.Entry {
	rel := provider.Release{
		ID:         249504,
		Title:      "The Wall",
		Year:       "1979",
		Labels:     []string{"Harvest", "EMI"},
		CatNo:      "SHDW 411",
		Genres:     []string{"Rock"},
		Styles:     []string{"Prog Rock", "Art Rock"},
		Country:    "UK",
		CoverImage: "https://img.discogs.com/the-wall.jpg",
	}
	return album.Entry{
		ID:         "Rock/The Wall",
		FolderName: "The Wall",
		Path:       "Rock/The Wall",
		Status:     album.StatusCompleted,
		Selected:   &rel,
		Analysis:   "Double album from 1979.",
		Files:      []string{"01.mp3", "02.mp3", "03.mp3"},
	}
}

func TestWriteCSVHeaderOrder(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "Folder Name,File Count,Title,Year,Label,Catalog No,Genre,Style,Country,AI Analysis,Cover URL,Discogs ID\n"
	if b.String() != want {
		t.Errorf("header mismatch:\n got %q\nwant %q", b.String(), want)
	}
}

func TestWriteCSVCompletedRow(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, []album.Entry{completedEntry()}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}

	want := `"The Wall",3,"The Wall",1979,"Harvest, EMI",SHDW 411,"Rock","Prog Rock, Art Rock",UK,"Double album from 1979.",https://img.discogs.com/the-wall.jpg,249504`
	if lines[1] != want {
		t.Errorf("row mismatch:\n got %s\nwant %s", lines[1], want)
	}
}

func TestWriteCSVUnmatchedRowHasEmptyMetadata(t *testing.T) {
	entry := album.Entry{
		ID:         "x/Unknown",
		FolderName: "Unknown",
		Status:     album.StatusNotFound,
		Files:      []string{"01.mp3"},
	}

	var b strings.Builder
	if err := WriteCSV(&b, []album.Entry{entry}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	want := `"Unknown",1,"",,"",,"","",,"",,`
	if lines[1] != want {
		t.Errorf("row mismatch:\n got %s\nwant %s", lines[1], want)
	}
}

func TestQuoteDoublesEmbeddedQuotes(t *testing.T) {
	entry := album.Entry{
		ID:         `x/A "B" C`,
		FolderName: `A "B" C`,
		Status:     album.StatusNotFound,
	}

	var b strings.Builder
	if err := WriteCSV(&b, []album.Entry{entry}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if !strings.Contains(b.String(), `"A ""B"" C"`) {
		t.Errorf("embedded quotes not doubled: %s", b.String())
	}
}

func TestExportCSVWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ExportCSV(path, []album.Entry{completedEntry()}); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Folder Name,") {
		t.Errorf("export missing header: %s", data)
	}
	if !strings.Contains(string(data), "249504") {
		t.Errorf("export missing release ID: %s", data)
	}
}
