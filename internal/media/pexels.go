package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"log/slog"
)

const defaultPexelsBase = "https://api.pexels.com"

// Footage describes a stock video clip selected for a trend.
type Footage struct {
	ID       int
	URL      string
	Width    int
	Height   int
	Duration int
	Query    string
}

// FootageClient searches the Pexels video API for background footage.
type FootageClient struct {
	apiKey      string
	apiBase     string
	orientation string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewFootageClient creates a Pexels client. Portrait orientation suits the
// short vertical clips the renderer produces.
func NewFootageClient(apiKey string, logger *slog.Logger) *FootageClient {
	return NewFootageClientWithBase(apiKey, defaultPexelsBase, logger)
}

// NewFootageClientWithBase allows overriding the API base URL.
func NewFootageClientWithBase(apiKey, apiBase string, logger *slog.Logger) *FootageClient {
	return &FootageClient{
		apiKey:      apiKey,
		apiBase:     apiBase,
		orientation: "portrait",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Configured reports whether an API key is present.
func (c *FootageClient) Configured() bool {
	return c.apiKey != ""
}

type pexelsSearchResponse struct {
	Videos []struct {
		ID         int `json:"id"`
		Width      int `json:"width"`
		Height     int `json:"height"`
		Duration   int `json:"duration"`
		VideoFiles []struct {
			Link    string `json:"link"`
			Quality string `json:"quality"`
			Width   int    `json:"width"`
			Height  int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

// Search looks up a single clip for the query. It prefers HD renditions and
// falls back to whatever rendition the first hit offers. A nil result with a
// nil error means no footage matched.
func (c *FootageClient) Search(ctx context.Context, query string) (*Footage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("pexels API key not configured")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", c.orientation)
	params.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/videos/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pexels search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse pexels response: %w", err)
	}
	if len(parsed.Videos) == 0 {
		return nil, nil
	}

	video := parsed.Videos[0]
	footage := &Footage{
		ID:       video.ID,
		Width:    video.Width,
		Height:   video.Height,
		Duration: video.Duration,
		Query:    query,
	}
	for _, vf := range video.VideoFiles {
		if vf.Quality == "hd" {
			footage.URL = vf.Link
			footage.Width = vf.Width
			footage.Height = vf.Height
			break
		}
	}
	if footage.URL == "" && len(video.VideoFiles) > 0 {
		footage.URL = video.VideoFiles[0].Link
	}
	if footage.URL == "" {
		return nil, nil
	}
	return footage, nil
}

// FindFootage tries each suggested keyword in order and finally the topic
// itself, returning the first clip that matches.
func (c *FootageClient) FindFootage(ctx context.Context, keywords []string, topic string) (*Footage, error) {
	queries := make([]string, 0, len(keywords)+1)
	queries = append(queries, keywords...)
	queries = append(queries, topic)

	var lastErr error
	for _, query := range queries {
		if query == "" {
			continue
		}
		footage, err := c.Search(ctx, query)
		if err != nil {
			lastErr = err
			c.logger.Warn("footage search failed", "query", query, "error", err)
			continue
		}
		if footage != nil {
			c.logger.Info("footage selected",
				"query", query,
				"video_id", footage.ID,
				"duration_s", footage.Duration)
			return footage, nil
		}
		c.logger.Debug("no footage for query", "query", query)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("footage search exhausted: %w", lastErr)
	}
	return nil, fmt.Errorf("no footage found for %q", topic)
}

// Download fetches the clip to the given path.
func (c *FootageClient) Download(ctx context.Context, footage *Footage, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, footage.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("footage download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("footage download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	c.logger.Debug("footage downloaded", "path", path, "bytes", strconv.FormatInt(n, 10))
	return nil
}
