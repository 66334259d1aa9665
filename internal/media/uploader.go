package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"log/slog"
)

const defaultUploadBase = "https://www.googleapis.com/upload/youtube/v3"

// UploadRequest carries a rendered video plus its listing metadata.
type UploadRequest struct {
	VideoPath   string
	Title       string
	Description string
	Tags        []string
}

// Uploader publishes rendered videos to a hosting platform.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (string, error)
}

// YouTubeUploader uploads shorts through the YouTube Data API resumable
// upload flow using a bearer token.
type YouTubeUploader struct {
	token      string
	apiBase    string
	privacy    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewYouTubeUploader creates an uploader. Videos are published unlisted
// unless privacy says otherwise.
func NewYouTubeUploader(token, privacy string, logger *slog.Logger) *YouTubeUploader {
	return NewYouTubeUploaderWithBase(token, privacy, defaultUploadBase, logger)
}

// NewYouTubeUploaderWithBase allows overriding the API base URL.
func NewYouTubeUploaderWithBase(token, privacy, apiBase string, logger *slog.Logger) *YouTubeUploader {
	if privacy == "" {
		privacy = "unlisted"
	}
	return &YouTubeUploader{
		token:   token,
		apiBase: apiBase,
		privacy: privacy,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// Configured reports whether a token is present.
func (u *YouTubeUploader) Configured() bool {
	return u.token != ""
}

type uploadMetadata struct {
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags,omitempty"`
		CategoryID  string   `json:"categoryId"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

// Upload starts a resumable session with the video metadata, then streams the
// file to the returned session URL. It returns the hosted video ID.
func (u *YouTubeUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if u.token == "" {
		return "", fmt.Errorf("youtube token not configured")
	}

	meta := uploadMetadata{}
	meta.Snippet.Title = truncate(req.Title, 100)
	meta.Snippet.Description = req.Description
	meta.Snippet.Tags = req.Tags
	meta.Snippet.CategoryID = "22"
	meta.Status.PrivacyStatus = u.privacy

	metaBody, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	initURL := u.apiBase + "/videos?uploadType=resumable&part=snippet,status"
	initReq, err := http.NewRequestWithContext(ctx, http.MethodPost, initURL, bytes.NewReader(metaBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	initReq.Header.Set("Authorization", "Bearer "+u.token)
	initReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	initReq.Header.Set("X-Upload-Content-Type", "video/mp4")

	initResp, err := u.httpClient.Do(initReq)
	if err != nil {
		return "", fmt.Errorf("failed to start upload session: %w", err)
	}
	defer initResp.Body.Close()

	if initResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(initResp.Body, 512))
		return "", fmt.Errorf("upload session returned status %d: %s", initResp.StatusCode, string(body))
	}
	sessionURL := initResp.Header.Get("Location")
	if sessionURL == "" {
		return "", fmt.Errorf("upload session missing location header")
	}

	f, err := os.Open(req.VideoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", req.VideoPath, err)
	}
	defer f.Close()

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, f)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	putReq.Header.Set("Content-Type", "video/mp4")

	putResp, err := u.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("video upload failed: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(putResp.Body, 512))
		return "", fmt.Errorf("video upload returned status %d: %s", putResp.StatusCode, string(body))
	}

	var parsed uploadResponse
	if err := json.NewDecoder(putResp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}

	u.logger.Info("video uploaded", "video_id", parsed.ID, "title", meta.Snippet.Title)
	return parsed.ID, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
