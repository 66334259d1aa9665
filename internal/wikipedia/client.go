package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "roller/1.0 (trend article pipeline)"

	// summaryLimit caps the extract passed downstream; the filter and the
	// categorizer only need the intro.
	summaryLimit = 500
)

// Client fetches article summaries through the MediaWiki query API.
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client against the live API.
func NewClient(logger *slog.Logger) *Client {
	return NewClientWithBase(BaseURL, logger)
}

// NewClientWithBase builds a client against an alternate base URL, used by
// tests to point at a local server.
func NewClientWithBase(base string, logger *slog.Logger) *Client {
	return &Client{
		apiURL: base + "/w/api.php",
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Summary fetches the plain-text intro extract for an article title. An
// empty string with nil error means the article does not exist; absence of a
// summary is the caller's hard failure to handle.
func (c *Client) Summary(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("titles", title)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build summary request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summary request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read summary response: %w", err)
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse summary response: %w", err)
	}

	for pageID, page := range parsed.Query.Pages {
		if pageID == "-1" {
			continue
		}
		if page.Extract != "" {
			extract := page.Extract
			if len(extract) > summaryLimit {
				extract = extract[:summaryLimit]
			}
			return extract, nil
		}
	}

	c.logger.Debug("no article found", "title", title)
	return "", nil
}
