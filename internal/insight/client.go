// Package insight generates a short free-text annotation for a matched
// release via an OpenAI-compatible chat completions endpoint. Annotation is
// strictly best effort: callers treat any failure as "no annotation".
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

const systemPrompt = "You are a music archivist. Given an album folder name and the " +
	"catalog facts for the release it was matched to, write a short note (2-3 " +
	"sentences) about the release: who made it, when and where it came out, and " +
	"what is notable about it. Respond with plain text only."

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the chat completions API.
type Client struct {
	cfg  Config
	http *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient constructs an insight client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
		},
		http: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether annotation is configured at all.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// ReleaseFacts is the subset of release metadata fed into the prompt.
type ReleaseFacts struct {
	Title   string
	Year    string
	Labels  []string
	Genres  []string
	Styles  []string
	Country string
}

// Annotate asks the model for a note about the matched release. It returns
// an error rather than guessing when the client is not configured.
func (c *Client) Annotate(ctx context.Context, folderName string, facts ReleaseFacts) (string, error) {
	if !c.Enabled() {
		return "", errors.New("insight: api key required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Folder name: %s\nMatched release: %s\n", folderName, facts.Title)
	if facts.Year != "" {
		fmt.Fprintf(&b, "Year: %s\n", facts.Year)
	}
	if len(facts.Labels) > 0 {
		fmt.Fprintf(&b, "Label: %s\n", strings.Join(facts.Labels, ", "))
	}
	if len(facts.Genres) > 0 {
		fmt.Fprintf(&b, "Genre: %s\n", strings.Join(facts.Genres, ", "))
	}
	if len(facts.Styles) > 0 {
		fmt.Fprintf(&b, "Style: %s\n", strings.Join(facts.Styles, ", "))
	}
	if facts.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", facts.Country)
	}

	return c.complete(ctx, b.String())
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.4,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("insight: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("insight: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("insight: http error: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("insight: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("insight: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("insight: decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("insight: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", errors.New("insight: empty completion")
}
