// Package websearch provides the web search capability offered to the
// discovery model. The HTTP client targets a Jina-style search API; a no-op
// variant lives with the discovery driver for deployments without a search
// backend.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// Client performs a web search and returns a plain-text digest of results
// suitable for feeding back into a model conversation.
type Client interface {
	Search(ctx context.Context, query string) (string, error)
}

// Option configures the search client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithMaxResults caps how many results are folded into the digest.
func WithMaxResults(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	http       *http.Client
}

// NewClient creates a search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    "https://s.jina.ai",
		maxResults: 5,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse is the parsed search API response.
type searchResponse struct {
	Code int `json:"code"`
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"data"`
}

func (c *httpClient) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", eris.Wrap(err, "websearch: build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "websearch: search %q", query)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", eris.Wrap(err, "websearch: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("websearch: search %q: status %d", query, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", eris.Wrap(err, "websearch: decode response")
	}

	return c.digest(parsed), nil
}

// digest flattens results into a compact text block for the model.
func (c *httpClient) digest(resp searchResponse) string {
	out := ""
	count := 0
	for _, r := range resp.Data {
		if count >= c.maxResults {
			break
		}
		snippet := r.Description
		if snippet == "" {
			snippet = r.Content
		}
		snippet = truncate(snippet, 500)
		out += fmt.Sprintf("- %s (%s)\n  %s\n", r.Title, r.URL, snippet)
		count++
	}
	if out == "" {
		return "No search results found."
	}
	return out
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
