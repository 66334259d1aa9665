package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/niyoseris/roller/internal/provider"
)

// Narrator turns article summaries into narration audio through the speech
// synthesis chain and writes the result under its output directory.
type Narrator struct {
	chain  *provider.Chain[provider.SpeechInput, []byte]
	policy provider.RetryPolicy
	voice  string
	outDir string
	logger *slog.Logger
}

// NewNarrator creates a narrator writing mp3 files into outDir.
func NewNarrator(chain *provider.Chain[provider.SpeechInput, []byte], voice, outDir string, logger *slog.Logger) *Narrator {
	return &Narrator{
		chain:  chain,
		policy: provider.DefaultRetryPolicy(),
		voice:  voice,
		outDir: outDir,
		logger: logger,
	}
}

// Narrate synthesizes speech for the text and returns the audio file path.
// Quota exhaustion on the synthesis providers is waited out and retried by
// the chain before giving up.
func (n *Narrator) Narrate(ctx context.Context, name, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("nothing to narrate")
	}

	audio, err := n.chain.InvokeRetry(ctx, provider.SpeechInput{Text: text, Voice: n.voice}, n.policy)
	if err != nil {
		return "", fmt.Errorf("narration failed: %w", err)
	}

	if err := os.MkdirAll(n.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", n.outDir, err)
	}
	path := filepath.Join(n.outDir, name+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write narration: %w", err)
	}

	n.logger.Info("narration written", "path", path, "bytes", len(audio))
	return path, nil
}
