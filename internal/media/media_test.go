package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/niyoseris/roller/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pexelsHits(hits map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !hits[query] {
			fmt.Fprint(w, `{"videos":[]}`)
			return
		}
		fmt.Fprint(w, `{"videos":[{"id":77,"width":1080,"height":1920,"duration":12,
			"video_files":[
				{"link":"http://cdn/sd.mp4","quality":"sd","width":540,"height":960},
				{"link":"http://cdn/hd.mp4","quality":"hd","width":1080,"height":1920}
			]}]}`)
	}
}

func TestFindFootageTriesKeywordsInOrder(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("query"))
		pexelsHits(map[string]bool{"sports crowd": true})(w, r)
	}))
	defer srv.Close()

	client := NewFootageClientWithBase("key", srv.URL, testLogger())

	footage, err := client.FindFootage(context.Background(), []string{"basketball game", "sports crowd"}, "NBA Finals")
	if err != nil {
		t.Fatalf("FindFootage: %v", err)
	}
	if footage.ID != 77 {
		t.Errorf("expected video 77, got %d", footage.ID)
	}
	want := []string{"basketball game", "sports crowd"}
	if len(queries) != len(want) {
		t.Fatalf("expected %d queries, got %v", len(want), queries)
	}
	for i, q := range want {
		if queries[i] != q {
			t.Errorf("query %d: expected %q, got %q", i, q, queries[i])
		}
	}
}

func TestFindFootageFallsBackToTopic(t *testing.T) {
	srv := httptest.NewServer(pexelsHits(map[string]bool{"NBA Finals": true}))
	defer srv.Close()

	client := NewFootageClientWithBase("key", srv.URL, testLogger())

	footage, err := client.FindFootage(context.Background(), []string{"basketball game"}, "NBA Finals")
	if err != nil {
		t.Fatalf("FindFootage: %v", err)
	}
	if footage.Query != "NBA Finals" {
		t.Errorf("expected the topic itself to match, got query %q", footage.Query)
	}
}

func TestFindFootageNothingMatches(t *testing.T) {
	srv := httptest.NewServer(pexelsHits(nil))
	defer srv.Close()

	client := NewFootageClientWithBase("key", srv.URL, testLogger())

	if _, err := client.FindFootage(context.Background(), []string{"x"}, "y"); err == nil {
		t.Fatal("expected an error when no query matches")
	}
}

func TestSearchPrefersHD(t *testing.T) {
	srv := httptest.NewServer(pexelsHits(map[string]bool{"city": true}))
	defer srv.Close()

	client := NewFootageClientWithBase("key", srv.URL, testLogger())

	footage, err := client.Search(context.Background(), "city")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if footage.URL != "http://cdn/hd.mp4" {
		t.Errorf("expected the hd rendition, got %q", footage.URL)
	}
	if footage.Width != 1080 || footage.Height != 1920 {
		t.Errorf("unexpected dimensions %dx%d", footage.Width, footage.Height)
	}
}

func TestSearchWithoutKey(t *testing.T) {
	client := NewFootageClientWithBase("", "http://unused", testLogger())
	if _, err := client.Search(context.Background(), "city"); err == nil {
		t.Fatal("expected an error without an API key")
	}
	if client.Configured() {
		t.Error("client without key must not report configured")
	}
}

func TestNarratorWritesAudio(t *testing.T) {
	dir := t.TempDir()
	synth := provider.Func[provider.SpeechInput, []byte]("fake-tts", nil,
		func(_ context.Context, in provider.SpeechInput) ([]byte, error) {
			return []byte("audio:" + in.Text), nil
		})
	chain := provider.NewChain("speech", testLogger(), synth)

	n := NewNarrator(chain, "alloy", dir, testLogger())
	path, err := n.Narrate(context.Background(), "NBA_Finals", "The finals concluded.")
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if filepath.Base(path) != "NBA_Finals.mp3" {
		t.Errorf("unexpected file name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read narration: %v", err)
	}
	if string(data) != "audio:The finals concluded." {
		t.Errorf("unexpected audio payload %q", data)
	}
}

func TestNarratorRejectsEmptyText(t *testing.T) {
	chain := provider.NewChain[provider.SpeechInput, []byte]("speech", testLogger())
	n := NewNarrator(chain, "alloy", t.TempDir(), testLogger())
	if _, err := n.Narrate(context.Background(), "x", ""); err == nil {
		t.Fatal("expected an error for empty text")
	}
}

type captureRenderer struct {
	req RenderRequest
}

func (r *captureRenderer) Render(_ context.Context, req RenderRequest) (string, error) {
	r.req = req
	return filepath.Join("rendered", req.OutputName), nil
}

func newTestProducer(t *testing.T, srvURL string, suggestions []string) (*Producer, *captureRenderer) {
	t.Helper()
	synth := provider.Func[provider.SpeechInput, []byte]("fake-tts", nil,
		func(_ context.Context, in provider.SpeechInput) ([]byte, error) {
			return []byte("audio"), nil
		})
	narrator := NewNarrator(provider.NewChain("speech", testLogger(), synth), "alloy", t.TempDir(), testLogger())

	suggester := provider.Func[string, []string]("fake-keywords", nil,
		func(_ context.Context, topic string) ([]string, error) {
			return append(append([]string{}, suggestions...), topic), nil
		})
	keywords := provider.NewChain[string, []string]("video-keywords", testLogger(), suggester)

	renderer := &captureRenderer{}
	footage := NewFootageClientWithBase("key", srvURL, testLogger())
	return NewProducer(narrator, keywords, footage, renderer, nil, t.TempDir(), testLogger()), renderer
}

func TestProduceAsksKeywordChainWhenNoneSupplied(t *testing.T) {
	var queries []string
	var fileURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/clip.mp4" {
			fmt.Fprint(w, "clipdata")
			return
		}
		query := r.URL.Query().Get("query")
		queries = append(queries, query)
		if query != "stadium crowd" {
			fmt.Fprint(w, `{"videos":[]}`)
			return
		}
		fmt.Fprintf(w, `{"videos":[{"id":5,"width":1080,"height":1920,"duration":10,
			"video_files":[{"link":%q,"quality":"hd","width":1080,"height":1920}]}]}`, fileURL)
	}))
	defer srv.Close()
	fileURL = srv.URL + "/clip.mp4"

	producer, renderer := newTestProducer(t, srv.URL, []string{"stadium crowd"})

	path, err := producer.Produce(context.Background(), "Euro 2024 176K", "Sports", "The final concluded.", nil)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(queries) == 0 || queries[0] != "stadium crowd" {
		t.Errorf("expected the suggested keyword to be searched first, got %v", queries)
	}
	if path != filepath.Join("rendered", "Euro_2024_shorts.mp4") {
		t.Errorf("unexpected rendered path %q", path)
	}
	if renderer.req.OutputName != "Euro_2024_shorts.mp4" {
		t.Errorf("expected output name Euro_2024_shorts.mp4, got %q", renderer.req.OutputName)
	}
}

func TestYouTubeUploader(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(videoPath, []byte("mp4data"), 0o644); err != nil {
		t.Fatal(err)
	}

	var sessionURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("missing bearer token")
			}
			w.Header().Set("Location", sessionURL)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			if string(body) != "mp4data" {
				t.Errorf("unexpected upload body %q", body)
			}
			fmt.Fprint(w, `{"id":"vid123"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()
	sessionURL = srv.URL + "/session"

	up := NewYouTubeUploaderWithBase("tok", "unlisted", srv.URL, testLogger())
	id, err := up.Upload(context.Background(), UploadRequest{
		VideoPath: videoPath,
		Title:     "NBA Finals #Shorts",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "vid123" {
		t.Errorf("expected video id vid123, got %q", id)
	}
}
