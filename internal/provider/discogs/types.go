package discogs

// Discogs API wire types.

// SearchResponse is the top-level response from the database search endpoint.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	Pagination Pagination     `json:"pagination"`
}

// SearchResult represents a single release search hit.
type SearchResult struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year"`
	Label      []string `json:"label"`
	CatNo      string   `json:"catno"`
	Genre      []string `json:"genre"`
	Style      []string `json:"style"`
	Country    string   `json:"country"`
	Format     []string `json:"format"`
	Thumb      string   `json:"thumb"`
	CoverImage string   `json:"cover_image"`
	Type       string   `json:"type"`
}

// Pagination holds pagination info.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// ReleaseDetail is the full release response from Discogs.
type ReleaseDetail struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Notes     string  `json:"notes"`
	Tracklist []Track `json:"tracklist"`
	Images    []Image `json:"images"`
}

// Track is one tracklist row.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// Image represents a Discogs image.
type Image struct {
	Type   string `json:"type"` // "primary" or "secondary"
	URI    string `json:"uri"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
