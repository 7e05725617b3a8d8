package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"discmatch/internal/provider"
)

const (
	providerName   = "discogs"
	defaultBaseURL = "https://api.discogs.com"
)

// Client talks to the Discogs database API.
type Client struct {
	http    *http.Client
	limiter *provider.RateLimiterMap
	logger  *slog.Logger
	baseURL string
	token   string
}

// New creates a Discogs client with the default base URL.
func New(token string, limiter *provider.RateLimiterMap, logger *slog.Logger) *Client {
	return NewWithBaseURL(token, limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Discogs client with a custom base URL (for testing).
func NewWithBaseURL(token string, limiter *provider.RateLimiterMap, logger *slog.Logger, baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("provider", providerName)),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// HasToken reports whether an access token is configured.
func (c *Client) HasToken() bool { return c.token != "" }

// SearchRelease searches Discogs for releases matching the given folder name.
// The query is cleaned before submission: brackets are stripped and dots,
// underscores and hyphens become spaces, which matches how ripped album
// folders tend to be named.
func (c *Client) SearchRelease(ctx context.Context, query string) ([]provider.Release, error) {
	if c.token == "" {
		return nil, &provider.ErrAuthRequired{Provider: providerName}
	}

	if err := c.limiter.Wait(ctx, providerName); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: providerName,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	params := url.Values{
		"q":    {CleanQuery(query)},
		"type": {"release"},
	}
	reqURL := c.baseURL + "/database/search?" + params.Encode()

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	releases := make([]provider.Release, 0, len(resp.Results))
	for _, r := range resp.Results {
		releases = append(releases, provider.Release{
			ID:         r.ID,
			Title:      r.Title,
			Year:       r.Year,
			Labels:     r.Label,
			CatNo:      r.CatNo,
			Genres:     r.Genre,
			Styles:     r.Style,
			Country:    r.Country,
			Formats:    r.Format,
			CoverImage: r.CoverImage,
			Thumb:      r.Thumb,
		})
	}
	return releases, nil
}

// GetRelease fetches extended information for a single release.
func (c *Client) GetRelease(ctx context.Context, id int) (*provider.ReleaseDetail, error) {
	if c.token == "" {
		return nil, &provider.ErrAuthRequired{Provider: providerName}
	}

	if err := c.limiter.Wait(ctx, providerName); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: providerName,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	reqURL := fmt.Sprintf("%s/releases/%d", c.baseURL, id)
	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var detail ReleaseDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parsing release response: %w", err)
	}

	return mapDetail(&detail), nil
}

// DownloadImage fetches an image by URL and returns its raw bytes.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, providerName); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: providerName,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}
	return c.doRequest(ctx, imageURL)
}

// TestConnection verifies the personal access token is valid.
func (c *Client) TestConnection(ctx context.Context) error {
	if c.token == "" {
		return &provider.ErrAuthRequired{Provider: providerName}
	}
	_, err := c.SearchRelease(ctx, "test")
	return err
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", "discmatch/1.0")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &provider.ErrUnavailable{Provider: providerName, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &provider.ErrNotFound{Provider: providerName, ID: reqURL}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &provider.ErrAuthRequired{Provider: providerName}
	case resp.StatusCode != http.StatusOK:
		return nil, &provider.ErrUnavailable{
			Provider: providerName,
			Cause:    fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	return io.ReadAll(resp.Body)
}

// CleanQuery normalizes a folder name into a search query.
func CleanQuery(query string) string {
	replacer := strings.NewReplacer(
		"[", "", "]", "",
		"(", "", ")", "",
		".", " ", "_", " ", "-", " ",
	)
	return strings.Join(strings.Fields(replacer.Replace(query)), " ")
}

func mapDetail(d *ReleaseDetail) *provider.ReleaseDetail {
	detail := &provider.ReleaseDetail{
		ID:    d.ID,
		Notes: d.Notes,
	}
	for _, t := range d.Tracklist {
		detail.Tracklist = append(detail.Tracklist, provider.Track{
			Position: t.Position,
			Title:    t.Title,
			Duration: t.Duration,
		})
	}
	for _, img := range d.Images {
		if img.URI != "" {
			detail.Images = append(detail.Images, img.URI)
		}
	}
	return detail
}

// ReleaseURL returns the public page for a release ID, used in log output.
func ReleaseURL(id int) string {
	return "https://www.discogs.com/release/" + strconv.Itoa(id)
}
