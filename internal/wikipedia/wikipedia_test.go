package wikipedia

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSynthesizeURL(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"#ElectionNight2024", "https://en.wikipedia.org/wiki/ElectionNight"},
		{"NBA", "https://en.wikipedia.org/wiki/NBA"},
		{"Taylor Swift 176K", "https://en.wikipedia.org/wiki/Taylor_Swift"},
		{"Bitcoin 2M", "https://en.wikipedia.org/wiki/Bitcoin"},
		{"#WorldCup", "https://en.wikipedia.org/wiki/WorldCup"},
		{"12345", "https://en.wikipedia.org/wiki/"},
	}

	for _, tc := range cases {
		if got := SynthesizeURL(tc.topic); got != tc.want {
			t.Errorf("SynthesizeURL(%q) = %q, want %q", tc.topic, got, tc.want)
		}
	}
}

func TestTitleFromURL(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"https://en.wikipedia.org/wiki/National_Basketball_Association", "National Basketball Association"},
		{"https://en.wikipedia.org/wiki/NBA", "NBA"},
		{"not a wiki url", ""},
	}

	for _, tc := range cases {
		if got := TitleFromURL(tc.ref); got != tc.want {
			t.Errorf("TitleFromURL(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestFilterSummary(t *testing.T) {
	longEnough := strings.Repeat("Paris is the capital and largest city of France. ", 3)

	cases := []struct {
		name     string
		summary  string
		rejected bool
	}{
		{"good article", longEnough, false},
		{"surname stub", "John Smith (born 1990) is a surname used by many English-speaking families around the world, appearing frequently in records.", true},
		{"disambiguation", "Mercury may refer to: the planet, the element, or the Roman god. " + longEnough, true},
		{"list page", "List of National Basketball Association champions by season, including finals results. " + longEnough, true},
		{"too short", "Paris is a city.", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := FilterSummary(tc.summary)
			if tc.rejected && reason == "" {
				t.Errorf("expected rejection")
			}
			if !tc.rejected && reason != "" {
				t.Errorf("expected acceptance, got rejection: %s", reason)
			}
		})
	}
}

func TestClient_Summary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("titles")
		w.Header().Set("Content-Type", "application/json")
		switch title {
		case "NBA":
			fmt.Fprint(w, `{"query":{"pages":{"22093":{"extract":"The National Basketball Association (NBA) is a professional basketball league in North America composed of 30 teams."}}}}`)
		default:
			fmt.Fprint(w, `{"query":{"pages":{"-1":{"missing":""}}}}`)
		}
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL, testLogger())

	summary, err := client.Summary(context.Background(), "NBA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(summary, "National Basketball Association") {
		t.Errorf("unexpected summary: %q", summary)
	}

	missing, err := client.Summary(context.Background(), "No_Such_Page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != "" {
		t.Errorf("expected empty summary for missing page, got %q", missing)
	}

	empty, err := client.Summary(context.Background(), "")
	if err != nil || empty != "" {
		t.Errorf("empty title must short-circuit, got %q, %v", empty, err)
	}
}
