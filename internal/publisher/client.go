// Package publisher submits resolved articles to the roll.wiki
// summarization endpoint and interprets its three meaningful outcomes:
// submitted, already-exists (a success, with the assigned article ID dug out
// of the conflict message), and reference-not-found.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// DefaultEndpoint is the production summarization endpoint.
const DefaultEndpoint = "https://roll.wiki/api/v1/summarize"

// Status classifies a submission outcome.
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusAlreadyExists Status = "already_exists"
	StatusNotFound      Status = "not_found"
)

// Result is the interpreted outcome of a submission. ArticleID is zero when
// the endpoint did not reveal one.
type Result struct {
	Status    Status
	ArticleID int
}

// Succeeded reports whether the submission counts as a success: a fresh
// submission and an already-existing article both do.
func (r Result) Succeeded() bool {
	return r.Status == StatusSubmitted || r.Status == StatusAlreadyExists
}

// Client talks to the summarization endpoint.
type Client struct {
	endpoint   string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a publisher client. secret is the shared submission key.
func NewClient(endpoint, secret string, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type submitResponse struct {
	ID      int    `json:"id"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// conflictID pulls an article identifier out of the conflict error's
// free-text message; the API's error schema has no dedicated field for it.
var conflictID = regexp.MustCompile(`(?i)id[:#\s]*(\d+)`)

// Submit sends {reference URL, category} to the endpoint with the persist
// flag set. HTTP 200 and 409 are successes, 404 is reference-not-found, and
// everything else is a hard failure for this topic.
func (c *Client) Submit(ctx context.Context, referenceURL, category string) (Result, error) {
	params := url.Values{}
	params.Set("url", referenceURL)
	params.Set("save", "true")
	params.Set("category", category)
	params.Set("secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build submit request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submit article: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read submit response: %w", err)
	}

	var parsed submitResponse
	// The body is not always JSON; parse failures leave the zero value.
	_ = json.Unmarshal(body, &parsed)

	switch resp.StatusCode {
	case http.StatusOK:
		c.logger.Info("article submitted", "url", referenceURL, "category", category, "article_id", parsed.ID)
		return Result{Status: StatusSubmitted, ArticleID: parsed.ID}, nil

	case http.StatusConflict:
		id := parsed.ID
		if id == 0 {
			id = extractConflictID(parsed.Error, parsed.Message, string(body))
		}
		c.logger.Info("article already exists", "url", referenceURL, "article_id", id)
		return Result{Status: StatusAlreadyExists, ArticleID: id}, nil

	case http.StatusNotFound:
		c.logger.Warn("reference article not found", "url", referenceURL)
		return Result{Status: StatusNotFound}, fmt.Errorf("reference not found: %s", referenceURL)

	default:
		return Result{}, fmt.Errorf("submit returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
}

func extractConflictID(candidates ...string) int {
	for _, text := range candidates {
		m := conflictID.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if id, err := strconv.Atoi(m[1]); err == nil {
			return id
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
