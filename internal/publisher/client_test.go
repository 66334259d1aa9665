package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "test-secret", testLogger()), srv
}

func TestSubmit_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("secret") != "test-secret" {
			t.Errorf("missing shared secret")
		}
		if q.Get("save") != "true" {
			t.Errorf("missing persist flag")
		}
		if q.Get("category") != "Sports" {
			t.Errorf("unexpected category %q", q.Get("category"))
		}
		fmt.Fprint(w, `{"id": 42, "message": "summarized"}`)
	})
	defer srv.Close()

	result, err := client.Submit(context.Background(), "https://en.wikipedia.org/wiki/NBA", "Sports")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusSubmitted || !result.Succeeded() {
		t.Errorf("expected submitted success, got %+v", result)
	}
	if result.ArticleID != 42 {
		t.Errorf("expected article ID 42, got %d", result.ArticleID)
	}
}

func TestSubmit_ConflictRecoversIDFromMessage(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error": "Article already exists (ID: 1337)"}`)
	})
	defer srv.Close()

	result, err := client.Submit(context.Background(), "https://en.wikipedia.org/wiki/NBA", "Sports")
	if err != nil {
		t.Fatalf("conflict must count as success, got error: %v", err)
	}
	if result.Status != StatusAlreadyExists || !result.Succeeded() {
		t.Errorf("expected already-exists success, got %+v", result)
	}
	if result.ArticleID != 1337 {
		t.Errorf("expected ID recovered from error text, got %d", result.ArticleID)
	}
}

func TestSubmit_ConflictWithoutID(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error": "duplicate"}`)
	})
	defer srv.Close()

	result, err := client.Submit(context.Background(), "https://en.wikipedia.org/wiki/NBA", "Sports")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ArticleID != 0 {
		t.Errorf("expected zero ID, got %d", result.ArticleID)
	}
}

func TestSubmit_NotFoundIsHardFailure(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "no such wikipedia article"}`)
	})
	defer srv.Close()

	result, err := client.Submit(context.Background(), "https://en.wikipedia.org/wiki/Nope", "Culture")
	if err == nil {
		t.Fatal("expected error for missing reference")
	}
	if result.Status != StatusNotFound || result.Succeeded() {
		t.Errorf("expected not-found failure, got %+v", result)
	}
}

func TestSubmit_ServerErrorIsHardFailure(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	if _, err := client.Submit(context.Background(), "https://en.wikipedia.org/wiki/NBA", "Sports"); err == nil {
		t.Fatal("expected error for server failure")
	}
}

func TestExtractConflictID(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"Article already exists (ID: 99)", 99},
		{"already exists with id 7", 7},
		{"Article already exists, ID#123", 123},
		{"no identifier here", 0},
	}

	for _, tc := range cases {
		if got := extractConflictID(tc.text); got != tc.want {
			t.Errorf("extractConflictID(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
