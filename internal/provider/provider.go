// Package provider implements the capability-provider abstraction used by
// the pipeline: an ordered chain of interchangeable backends per capability,
// with a capability-specific failure policy. Categorization and keyword
// suggestion fall through the chain and settle on a safe default; narration
// synthesis retries the whole chain with backoff when a provider signals a
// quota cool-down.
package provider

import "context"

// Provider is one backend for a capability. Available is a cheap liveness
// and configuration check consulted before Invoke; a provider that is not
// available is passed over without counting as a failure.
type Provider[In, Out any] interface {
	Name() string
	Available(ctx context.Context) bool
	Invoke(ctx context.Context, in In) (Out, error)
}

// TrendInsight is the one-shot resolution a trend analyzer produces:
// canonical reference URL, category, and stock-footage search keywords.
type TrendInsight struct {
	WikipediaURL  string   `json:"wikipedia_url"`
	Category      string   `json:"category"`
	VideoKeywords []string `json:"video_keywords"`
}

// CategorizeInput feeds the categorization capability.
type CategorizeInput struct {
	Topic   string
	Summary string
}

// SpeechInput feeds the narration capability.
type SpeechInput struct {
	Text  string
	Voice string
}

// TrendAnalyzer resolves a topic to a TrendInsight in one shot.
type TrendAnalyzer = Provider[string, TrendInsight]

// Categorizer assigns one taxonomy label to a topic.
type Categorizer = Provider[CategorizeInput, string]

// KeywordSuggester proposes stock-footage search keywords for a topic.
type KeywordSuggester = Provider[string, []string]

// SpeechSynthesizer renders narration audio for a text.
type SpeechSynthesizer = Provider[SpeechInput, []byte]

type funcProvider[In, Out any] struct {
	name      string
	available func(ctx context.Context) bool
	invoke    func(ctx context.Context, in In) (Out, error)
}

func (f funcProvider[In, Out]) Name() string { return f.name }

func (f funcProvider[In, Out]) Available(ctx context.Context) bool {
	if f.available == nil {
		return true
	}
	return f.available(ctx)
}

func (f funcProvider[In, Out]) Invoke(ctx context.Context, in In) (Out, error) {
	return f.invoke(ctx, in)
}

// Func adapts plain functions into a Provider. A nil availability check
// means always available.
func Func[In, Out any](name string, available func(ctx context.Context) bool, invoke func(ctx context.Context, in In) (Out, error)) Provider[In, Out] {
	return funcProvider[In, Out]{name: name, available: available, invoke: invoke}
}
