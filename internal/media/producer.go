package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/provider"
)

// Producer runs the full video stage for a trend: narrate the summary, find
// and download background footage, render the clip, and optionally upload it.
type Producer struct {
	narrator *Narrator
	keywords *provider.Chain[string, []string]
	footage  *FootageClient
	renderer Renderer
	uploader Uploader
	workDir  string
	logger   *slog.Logger
}

// NewProducer wires the video stage. keywords backs the footage search when
// the caller has no suggestions; uploader may be nil, in which case the
// rendered file stays local.
func NewProducer(narrator *Narrator, keywords *provider.Chain[string, []string], footage *FootageClient, renderer Renderer, uploader Uploader, workDir string, logger *slog.Logger) *Producer {
	return &Producer{
		narrator: narrator,
		keywords: keywords,
		footage:  footage,
		renderer: renderer,
		uploader: uploader,
		workDir:  workDir,
		logger:   logger,
	}
}

// Produce creates a video for the trend and returns the rendered file path.
func (p *Producer) Produce(ctx context.Context, topic, category, summary string, keywords []string) (string, error) {
	name := models.TopicTitle(topic)
	if name == "" {
		name = "trend"
	}

	audioPath, err := p.narrator.Narrate(ctx, name, summary)
	if err != nil {
		return "", err
	}

	// Resolution usually supplies keywords; when it could not, ask the
	// suggestion chain. Its default is empty, leaving the topic itself as
	// the only search term.
	if len(keywords) == 0 && p.keywords != nil {
		keywords = p.keywords.InvokeDefault(ctx, topic, nil)
	}

	footage, err := p.footage.FindFootage(ctx, keywords, topic)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.workDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", p.workDir, err)
	}
	footagePath := filepath.Join(p.workDir, fmt.Sprintf("footage_%d.mp4", footage.ID))
	if err := p.footage.Download(ctx, footage, footagePath); err != nil {
		return "", err
	}
	defer os.Remove(footagePath)

	videoPath, err := p.renderer.Render(ctx, RenderRequest{
		Topic:       topic,
		FootagePath: footagePath,
		AudioPath:   audioPath,
		OverlayText: summary,
		OutputName:  name + "_shorts.mp4",
	})
	if err != nil {
		return "", err
	}

	if p.uploader != nil {
		videoID, err := p.uploader.Upload(ctx, UploadRequest{
			VideoPath:   videoPath,
			Title:       models.NormalizeTopic(topic) + " #Shorts",
			Description: summary,
			Tags:        append([]string{category}, keywords...),
		})
		if err != nil {
			p.logger.Warn("video upload failed", "topic", topic, "error", err)
		} else {
			p.logger.Info("video published", "topic", topic, "video_id", videoID)
		}
	}

	return videoPath, nil
}
