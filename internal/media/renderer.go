package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"
)

// RenderRequest carries the inputs for producing a short vertical clip.
type RenderRequest struct {
	Topic       string
	FootagePath string
	AudioPath   string
	OverlayText string
	OutputName  string
}

// Renderer produces a finished video from footage and narration. Encoding
// runs out of process, so implementations are expected to shell out or call
// a remote service.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// FFmpegRenderer drives a local ffmpeg binary. It loops the footage under the
// narration audio and scales it to a 1080x1920 portrait frame.
type FFmpegRenderer struct {
	binary string
	outDir string
	logger *slog.Logger
}

// NewFFmpegRenderer creates a renderer writing into outDir. An empty binary
// defaults to "ffmpeg" on PATH.
func NewFFmpegRenderer(binary, outDir string, logger *slog.Logger) *FFmpegRenderer {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegRenderer{binary: binary, outDir: outDir, logger: logger}
}

func (r *FFmpegRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", r.outDir, err)
	}
	outPath := filepath.Join(r.outDir, req.OutputName)

	args := []string{
		"-y",
		"-stream_loop", "-1",
		"-i", req.FootagePath,
		"-i", req.AudioPath,
		"-vf", "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"-c:v", "libx264",
		"-c:a", "aac",
		outPath,
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	r.logger.Debug("rendering video", "topic", req.Topic, "output", outPath)
	if err := cmd.Run(); err != nil {
		tail := stderr.String()
		if len(tail) > 512 {
			tail = tail[len(tail)-512:]
		}
		return "", fmt.Errorf("ffmpeg failed: %w: %s", err, tail)
	}

	r.logger.Info("video rendered", "topic", req.Topic, "path", outPath)
	return outPath, nil
}
