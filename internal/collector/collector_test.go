package collector

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"
)

type fakeCollector struct {
	name   string
	topics []string
	err    error
}

func (f *fakeCollector) Name() string { return f.name }
func (f *fakeCollector) Collect(ctx context.Context) ([]string, error) {
	return f.topics, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCollectAll_MergesAndNormalizes(t *testing.T) {
	set := NewSet(testLogger(), 0,
		&fakeCollector{name: "a", topics: []string{"#NBA 176K", "Taylor Swift"}},
		&fakeCollector{name: "b", topics: []string{"NBA", "  ", "Bitcoin 2M"}},
	)

	got := set.CollectAll(context.Background())
	want := []string{"NBA", "Taylor Swift", "Bitcoin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectAll = %v, want %v", got, want)
	}
}

func TestCollectAll_FailingSourceSkipped(t *testing.T) {
	set := NewSet(testLogger(), 0,
		&fakeCollector{name: "down", err: errors.New("network")},
		&fakeCollector{name: "up", topics: []string{"WorldCup"}},
	)

	got := set.CollectAll(context.Background())
	if !reflect.DeepEqual(got, []string{"WorldCup"}) {
		t.Errorf("CollectAll = %v", got)
	}
}

func TestCollectAll_PerSourceCap(t *testing.T) {
	set := NewSet(testLogger(), 2,
		&fakeCollector{name: "a", topics: []string{"One", "Two", "Three"}},
	)

	got := set.CollectAll(context.Background())
	if len(got) != 2 {
		t.Errorf("expected cap of 2, got %v", got)
	}
}
