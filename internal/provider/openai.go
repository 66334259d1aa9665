package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/niyoseris/roller/internal/models"
)

// OpenAIConfig holds configuration for the OpenAI-backed providers.
// BaseURL overrides the API endpoint, mainly for tests.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	TTSVoice    string
}

// DefaultOpenAIConfig returns sensible defaults for trend analysis.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:       openai.GPT4oMini,
		Temperature: 0.3,
		MaxTokens:   1024,
		TTSVoice:    string(openai.VoiceAlloy),
	}
}

// OpenAIProvider implements trend resolution, categorization, keyword
// suggestion, and narration synthesis on top of the OpenAI API. One struct
// backs all four capabilities; the chains each see it through the interface
// for their capability.
type OpenAIProvider struct {
	client *openai.Client
	config OpenAIConfig
	logger *slog.Logger
}

// NewOpenAIProvider creates the provider. An empty API key yields a
// provider that reports itself unavailable instead of failing calls.
func NewOpenAIProvider(config OpenAIConfig, logger *slog.Logger) *OpenAIProvider {
	var client *openai.Client
	if config.APIKey != "" {
		clientConfig := openai.DefaultConfig(config.APIKey)
		if config.BaseURL != "" {
			clientConfig.BaseURL = config.BaseURL
		}
		client = openai.NewClientWithConfig(clientConfig)
	}
	return &OpenAIProvider{
		client: client,
		config: config,
		logger: logger,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Available reports whether an API key was configured.
func (p *OpenAIProvider) Available(ctx context.Context) bool {
	return p.client != nil
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// AnalyzeTrend resolves a topic to {wikipedia_url, category, video_keywords}
// in one shot.
func (p *OpenAIProvider) AnalyzeTrend(ctx context.Context, topic string) (TrendInsight, error) {
	prompt := fmt.Sprintf(`You are a Wikipedia and content expert. For this trend, provide:

Trend: %s

Respond with JSON only:
1. wikipedia_url: the MOST RELEVANT English Wikipedia page URL (full URL, e.g. "https://en.wikipedia.org/wiki/National_Basketball_Association", never a shorthand)
2. category: best category from this list: %s
3. video_keywords: 3-5 keywords for finding background stock videos (simple visual concepts like "basketball game", "city skyline")

Example:
{"wikipedia_url": "https://en.wikipedia.org/wiki/National_Basketball_Association", "category": "Sports", "video_keywords": ["basketball game", "NBA arena", "sports crowd"]}`,
		topic, strings.Join(models.Categories, ", "))

	text, err := p.complete(ctx, prompt)
	if err != nil {
		return TrendInsight{}, err
	}

	var insight TrendInsight
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &insight); err != nil {
		return TrendInsight{}, fmt.Errorf("parse trend analysis: %w", err)
	}
	if insight.WikipediaURL == "" {
		return TrendInsight{}, fmt.Errorf("trend analysis returned no URL")
	}
	// An unrecognized label stays empty so the classifier stage, which has
	// the article summary in hand, decides instead of a blind default.
	insight.Category = models.MatchCategory(insight.Category)
	return insight, nil
}

// Categorize assigns one taxonomy label to a topic given its article
// summary. Output not matching the closed set collapses to the default.
func (p *OpenAIProvider) Categorize(ctx context.Context, in CategorizeInput) (string, error) {
	prompt := fmt.Sprintf(`Classify this trending topic into exactly one category.

Topic: %s
Summary: %s

Categories: %s

Respond with the category name only, nothing else.`,
		in.Topic, in.Summary, strings.Join(models.Categories, ", "))

	text, err := p.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return models.NormalizeCategory(text), nil
}

// SuggestKeywords proposes stock-footage search keywords for a topic. The
// topic itself is always appended as the last-resort keyword.
func (p *OpenAIProvider) SuggestKeywords(ctx context.Context, topic string) ([]string, error) {
	prompt := fmt.Sprintf(`Topic: %s

Generate 4 stock video search keywords.

STRICT RULES:
- NO people, faces, or crowds
- ONLY objects, buildings, nature, technology, abstract concepts

Examples:
- Elon Musk -> rocket launch, circuit board, satellite dish, night cityscape
- Climate Change -> melting glacier, wind turbine, solar panel farm, factory smoke

Respond with a single comma-separated line of keywords.`, topic)

	text, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	keywords := parseKeywordLine(text)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords in response")
	}
	return append(keywords, topic), nil
}

// Synthesize renders narration audio for text via the speech endpoint.
func (p *OpenAIProvider) Synthesize(ctx context.Context, in SpeechInput) ([]byte, error) {
	voice := in.Voice
	if voice == "" {
		voice = p.config.TTSVoice
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          in.Text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}

// TrendAnalyzer exposes trend resolution as a chain provider.
func (p *OpenAIProvider) TrendAnalyzer() TrendAnalyzer {
	return Func("openai", p.Available, p.AnalyzeTrend)
}

// Categorizer exposes categorization as a chain provider.
func (p *OpenAIProvider) Categorizer() Categorizer {
	return Func("openai", p.Available, p.Categorize)
}

// KeywordSuggester exposes keyword suggestion as a chain provider.
func (p *OpenAIProvider) KeywordSuggester() KeywordSuggester {
	return Func("openai", p.Available, p.SuggestKeywords)
}

// SpeechSynthesizer exposes narration as a chain provider.
func (p *OpenAIProvider) SpeechSynthesizer() SpeechSynthesizer {
	return Func("openai-tts", p.Available, p.Synthesize)
}

// classifyOpenAIError converts a 429 into the tagged quota signal so the
// chain executor can apply the backoff policy; everything else passes
// through as a transient error.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return NewQuotaError(err, 5*time.Minute)
	}
	return err
}

// stripCodeFences removes a surrounding markdown code block, which models
// add despite instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// parseKeywordLine pulls keywords out of a comma-separated model response,
// taking the last line in case the model narrated first.
func parseKeywordLine(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	line := lines[len(lines)-1]

	var keywords []string
	for _, part := range strings.Split(line, ",") {
		kw := strings.Trim(strings.TrimSpace(part), `"'-*`)
		if kw != "" && len(kw) < 40 {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
