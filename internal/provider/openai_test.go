package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func analyzerFixture(t *testing.T, category string) *httptest.Server {
	t.Helper()
	content := fmt.Sprintf(
		`{"wikipedia_url": "https://en.wikipedia.org/wiki/NBA_Finals", "category": %q, "video_keywords": ["basketball game", "NBA arena"]}`,
		category)
	return chatCompletionServer(t, content)
}

func testOpenAIProvider(baseURL string) *OpenAIProvider {
	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	return NewOpenAIProvider(cfg, testLogger())
}

func TestAnalyzeTrendCanonicalizesCategoryCasing(t *testing.T) {
	srv := analyzerFixture(t, "sports")
	defer srv.Close()

	insight, err := testOpenAIProvider(srv.URL).AnalyzeTrend(context.Background(), "NBA Finals")
	if err != nil {
		t.Fatalf("AnalyzeTrend: %v", err)
	}
	if insight.Category != "Sports" {
		t.Errorf("expected Sports, got %q", insight.Category)
	}
	if insight.WikipediaURL != "https://en.wikipedia.org/wiki/NBA_Finals" {
		t.Errorf("unexpected url %q", insight.WikipediaURL)
	}
}

func TestAnalyzeTrendLeavesUnknownCategoryEmpty(t *testing.T) {
	srv := analyzerFixture(t, "Gaming News")
	defer srv.Close()

	insight, err := testOpenAIProvider(srv.URL).AnalyzeTrend(context.Background(), "Elden Ring")
	if err != nil {
		t.Fatalf("AnalyzeTrend: %v", err)
	}
	if insight.Category != "" {
		t.Errorf("expected an empty category for an unknown label, got %q", insight.Category)
	}
}

func TestAnalyzeTrendRequiresURL(t *testing.T) {
	srv := chatCompletionServer(t, `{"wikipedia_url": "", "category": "Sports"}`)
	defer srv.Close()

	if _, err := testOpenAIProvider(srv.URL).AnalyzeTrend(context.Background(), "???"); err == nil {
		t.Fatal("expected an error when the analyzer returns no URL")
	}
}

func TestUnconfiguredProviderUnavailable(t *testing.T) {
	p := NewOpenAIProvider(DefaultOpenAIConfig(), testLogger())
	if p.Available(context.Background()) {
		t.Error("provider without an API key must report unavailable")
	}
}
