package discogs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"discmatch/internal/provider"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL("test-token", provider.NewRateLimiterMap(), slog.Default(), srv.URL)
}

func TestSearchRelease(t *testing.T) {
	var gotAuth, gotQuery, gotType string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [{
				"id": 249504,
				"title": "Pink Floyd - The Wall",
				"year": "1979",
				"label": ["Harvest"],
				"catno": "SHDW 411",
				"genre": ["Rock"],
				"style": ["Prog Rock"],
				"country": "UK",
				"cover_image": "https://img/wall.jpg"
			}],
			"pagination": {"page": 1, "pages": 1, "items": 1}
		}`))
	})

	releases, err := client.SearchRelease(context.Background(), "Pink.Floyd_The-Wall [1979]")
	if err != nil {
		t.Fatalf("SearchRelease failed: %v", err)
	}

	if gotAuth != "Discogs token=test-token" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotQuery != "Pink Floyd The Wall 1979" {
		t.Errorf("query not cleaned: %q", gotQuery)
	}
	if gotType != "release" {
		t.Errorf("expected type=release, got %q", gotType)
	}

	if len(releases) != 1 {
		t.Fatalf("expected 1 release, got %d", len(releases))
	}
	rel := releases[0]
	if rel.ID != 249504 || rel.Title != "Pink Floyd - The Wall" || rel.Year != "1979" {
		t.Errorf("unexpected release: %+v", rel)
	}
	if rel.Artist() != "Pink Floyd" || rel.Album() != "The Wall" {
		t.Errorf("title split wrong: artist %q album %q", rel.Artist(), rel.Album())
	}
}

func TestSearchReleaseWithoutToken(t *testing.T) {
	client := NewWithBaseURL("", provider.NewRateLimiterMap(), slog.Default(), "http://unused")

	_, err := client.SearchRelease(context.Background(), "anything")
	var authErr *provider.ErrAuthRequired
	if !errors.As(err, &authErr) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestSearchReleaseAuthRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SearchRelease(context.Background(), "anything")
	var authErr *provider.ErrAuthRequired
	if !errors.As(err, &authErr) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestSearchReleaseServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SearchRelease(context.Background(), "anything")
	var unavailErr *provider.ErrUnavailable
	if !errors.As(err, &unavailErr) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGetRelease(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/249504" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 249504,
			"notes": "Gatefold sleeve.",
			"tracklist": [
				{"position": "A1", "title": "In The Flesh?", "duration": "3:20"}
			],
			"images": [{"uri": "https://img/full.jpg"}]
		}`))
	})

	detail, err := client.GetRelease(context.Background(), 249504)
	if err != nil {
		t.Fatalf("GetRelease failed: %v", err)
	}
	if detail.Notes != "Gatefold sleeve." {
		t.Errorf("unexpected notes: %q", detail.Notes)
	}
	if len(detail.Tracklist) != 1 || detail.Tracklist[0].Position != "A1" {
		t.Errorf("unexpected tracklist: %+v", detail.Tracklist)
	}
	if len(detail.Images) != 1 || detail.Images[0] != "https://img/full.jpg" {
		t.Errorf("unexpected images: %+v", detail.Images)
	}
}

func TestGetReleaseNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetRelease(context.Background(), 1)
	var notFound *provider.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()
	client := NewWithBaseURL("test-token", provider.NewRateLimiterMap(), slog.Default(), srv.URL)

	data, err := client.DownloadImage(context.Background(), srv.URL+"/image.jpg")
	if err != nil {
		t.Fatalf("DownloadImage failed: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected image data: %q", data)
	}
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pink Floyd - The Wall", "Pink Floyd The Wall"},
		{"Pink.Floyd.The.Wall", "Pink Floyd The Wall"},
		{"Album_Name_[FLAC]", "Album Name FLAC"},
		{"Title (Deluxe Edition)", "Title Deluxe Edition"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanQuery(tt.in); got != tt.want {
			t.Errorf("CleanQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
