package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/provider"
	"github.com/niyoseris/roller/internal/publisher"
	"github.com/niyoseris/roller/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const goodSummary = "The National Basketball Association is a professional basketball league " +
	"in North America composed of thirty teams and widely considered the premier competition in the sport."

type fakeSummaries struct {
	byTitle map[string]string
	err     error
}

func (f *fakeSummaries) Summary(_ context.Context, title string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byTitle[title], nil
}

type fakeSubmitter struct {
	calls  int
	result publisher.Result
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, _, _ string) (publisher.Result, error) {
	f.calls++
	if f.err != nil {
		return publisher.Result{}, f.err
	}
	return f.result, nil
}

func analyzerFor(url, category string) *provider.Chain[string, provider.TrendInsight] {
	p := provider.Func[string, provider.TrendInsight]("fixed", nil,
		func(_ context.Context, _ string) (provider.TrendInsight, error) {
			return provider.TrendInsight{WikipediaURL: url, Category: category}, nil
		})
	return provider.NewChain("analysis", testLogger(), p)
}

func failingAnalyzer() *provider.Chain[string, provider.TrendInsight] {
	p := provider.Func[string, provider.TrendInsight]("down", nil,
		func(_ context.Context, _ string) (provider.TrendInsight, error) {
			return provider.TrendInsight{}, fmt.Errorf("unreachable")
		})
	return provider.NewChain("analysis", testLogger(), p)
}

func fixedCategorizer(category string) *provider.Chain[provider.CategorizeInput, string] {
	p := provider.Func[provider.CategorizeInput, string]("fixed", nil,
		func(_ context.Context, _ provider.CategorizeInput) (string, error) {
			return category, nil
		})
	return provider.NewChain("categorization", testLogger(), p)
}

func newTestProcessor(t *testing.T, analyzers *provider.Chain[string, provider.TrendInsight], summaries SummaryFetcher, submitter Submitter) (*Processor, *storage.Ledger) {
	t.Helper()
	ledger := storage.NewLedger(filepath.Join(t.TempDir(), "urls.json"), testLogger())
	proc := NewProcessor(ledger, analyzers, fixedCategorizer("Sports"), summaries, submitter, nil, nil, nil, testLogger())
	return proc, ledger
}

func TestProcessSuccess(t *testing.T) {
	summaries := &fakeSummaries{byTitle: map[string]string{"NBA": goodSummary}}
	submitter := &fakeSubmitter{result: publisher.Result{Status: publisher.StatusSubmitted, ArticleID: 42}}
	proc, ledger := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/NBA", "Sports"), summaries, submitter)

	res := proc.Process(context.Background(), "NBA", models.TrendData{})
	if res.Outcome != models.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Outcome, res.FailureReason)
	}
	if res.ArticleID != 42 {
		t.Errorf("expected article id 42, got %d", res.ArticleID)
	}
	if res.Category != "Sports" {
		t.Errorf("expected Sports, got %q", res.Category)
	}
	if !ledger.IsProcessed("https://en.wikipedia.org/wiki/NBA") {
		t.Error("successful submission must mark the ledger")
	}
}

func TestProcessSkipsLedgerDuplicate(t *testing.T) {
	summaries := &fakeSummaries{byTitle: map[string]string{"NBA": goodSummary}}
	submitter := &fakeSubmitter{result: publisher.Result{Status: publisher.StatusSubmitted, ArticleID: 1}}
	proc, ledger := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/NBA", "Sports"), summaries, submitter)

	ledger.MarkProcessed("https://en.wikipedia.org/wiki/NBA")

	res := proc.Process(context.Background(), "NBA", models.TrendData{})
	if res.Outcome != models.OutcomeSkipped {
		t.Fatalf("expected skip, got %s", res.Outcome)
	}
	if submitter.calls != 0 {
		t.Errorf("skipped topic must not be submitted, got %d calls", submitter.calls)
	}
}

func TestProcessSynthesizesURLWhenAnalyzersFail(t *testing.T) {
	summaries := &fakeSummaries{byTitle: map[string]string{"NBA Finals": goodSummary}}
	submitter := &fakeSubmitter{result: publisher.Result{Status: publisher.StatusSubmitted}}
	proc, _ := newTestProcessor(t, failingAnalyzer(), summaries, submitter)

	res := proc.Process(context.Background(), "#NBA Finals 176K", models.TrendData{})
	if res.Outcome != models.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Outcome, res.FailureReason)
	}
	if res.WikipediaURL != "https://en.wikipedia.org/wiki/NBA_Finals" {
		t.Errorf("unexpected synthesized url %q", res.WikipediaURL)
	}
	// Analyzer failure leaves the category to the categorization chain.
	if res.Category != "Sports" {
		t.Errorf("expected the categorizer fallback, got %q", res.Category)
	}
}

func TestProcessFailsWithoutSummary(t *testing.T) {
	summaries := &fakeSummaries{byTitle: map[string]string{}}
	submitter := &fakeSubmitter{}
	proc, ledger := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/Nothing", ""), summaries, submitter)

	res := proc.Process(context.Background(), "Nothing", models.TrendData{})
	if res.Outcome != models.OutcomeFailure {
		t.Fatalf("expected failure, got %s", res.Outcome)
	}
	if submitter.calls != 0 {
		t.Error("missing summary must short-circuit before submission")
	}
	if ledger.IsProcessed("https://en.wikipedia.org/wiki/Nothing") {
		t.Error("failed topic must not be marked in the ledger")
	}
}

func TestProcessRejectsFilteredSummary(t *testing.T) {
	stub := "John Smith (born 1990) is a surname used by many notable people in various countries around the world."
	summaries := &fakeSummaries{byTitle: map[string]string{"John Smith": stub}}
	submitter := &fakeSubmitter{}
	proc, _ := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/John_Smith", ""), summaries, submitter)

	res := proc.Process(context.Background(), "John Smith", models.TrendData{})
	if res.Outcome != models.OutcomeFailure {
		t.Fatalf("expected failure, got %s", res.Outcome)
	}
	if res.FailureReason == "" {
		t.Error("filter rejection must record a reason")
	}
	if submitter.calls != 0 {
		t.Error("rejected summaries must not be submitted")
	}
}

func TestProcessConflictCountsAsSuccess(t *testing.T) {
	summaries := &fakeSummaries{byTitle: map[string]string{"NBA": goodSummary}}
	submitter := &fakeSubmitter{result: publisher.Result{Status: publisher.StatusAlreadyExists, ArticleID: 1337}}
	proc, _ := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/NBA", "Sports"), summaries, submitter)

	res := proc.Process(context.Background(), "NBA", models.TrendData{})
	if res.Outcome != models.OutcomeSuccess {
		t.Fatalf("conflict should count as success, got %s", res.Outcome)
	}
	if res.ArticleID != 1337 {
		t.Errorf("expected the recovered article id, got %d", res.ArticleID)
	}
}

func TestProcessHintBypassesAnalyzers(t *testing.T) {
	summaries := &fakeSummaries{byTitle: map[string]string{"Custom Page": goodSummary}}
	submitter := &fakeSubmitter{result: publisher.Result{Status: publisher.StatusSubmitted}}
	proc, _ := newTestProcessor(t, failingAnalyzer(), summaries, submitter)

	hint := models.TrendData{URL: "https://en.wikipedia.org/wiki/Custom_Page", Category: "Science"}
	res := proc.Process(context.Background(), "custom", hint)
	if res.Outcome != models.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Outcome, res.FailureReason)
	}
	if res.Category != "Science" {
		t.Errorf("expected the hinted category, got %q", res.Category)
	}
}

func newTestStore(t *testing.T) *storage.SessionStore {
	t.Helper()
	dir := t.TempDir()
	return storage.NewSessionStore(
		filepath.Join(dir, "scan_session.json"),
		filepath.Join(dir, "scan_reports.json"),
		testLogger(),
	)
}

func waitForState(t *testing.T, store *storage.SessionStore, state models.SessionState) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.State() == state {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached state %s, stuck at %s", state, store.State())
}

// Duplicate topics in one session resolve to the same reference, so the
// second dequeue hits the ledger and is skipped. The cursor still advances
// past both.
func TestRunnerDuplicateTopicsEndToEnd(t *testing.T) {
	store := newTestStore(t)
	summaries := &fakeSummaries{byTitle: map[string]string{"NBA": goodSummary}}
	submitter := &fakeSubmitter{result: publisher.Result{Status: publisher.StatusSubmitted, ArticleID: 7}}
	proc, _ := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/NBA", "Sports"), summaries, submitter)

	if !store.StartNewSession([]string{"NBA", "NBA"}, nil, true) {
		t.Fatal("session failed to start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := NewRunner(store, proc, time.Millisecond, testLogger())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	waitForState(t, store, models.StateCompleted)
	cancel()
	<-done

	status := store.Status()
	if status.CurrentIndex != 2 {
		t.Errorf("expected cursor 2, got %d", status.CurrentIndex)
	}
	if status.Successful != 1 || status.Failed != 0 {
		t.Errorf("expected 1 success and 0 failures, got %d/%d", status.Successful, status.Failed)
	}
	if submitter.calls != 1 {
		t.Errorf("duplicate must not be resubmitted, got %d calls", submitter.calls)
	}

	reports := store.Reports()
	if len(reports) != 1 {
		t.Fatalf("expected exactly one report, got %d", len(reports))
	}
	report, ok := store.Report("NBA")
	if !ok || !report.Success {
		t.Errorf("expected a success report for NBA, got %+v", report)
	}
	if report.ArticleID != 7 {
		t.Errorf("expected article id 7 in the report, got %d", report.ArticleID)
	}
}

func TestRunnerRecordsFailureReport(t *testing.T) {
	store := newTestStore(t)
	summaries := &fakeSummaries{err: fmt.Errorf("wikipedia unreachable")}
	submitter := &fakeSubmitter{}
	proc, _ := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/Whatever", ""), summaries, submitter)

	store.StartNewSession([]string{"Whatever"}, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := NewRunner(store, proc, time.Millisecond, testLogger())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	waitForState(t, store, models.StateCompleted)
	cancel()
	<-done

	status := store.Status()
	if status.Failed != 1 || status.Successful != 0 {
		t.Errorf("expected 1 failure, got %d/%d", status.Successful, status.Failed)
	}
	report, ok := store.Report("Whatever")
	if !ok {
		t.Fatal("expected a failure report")
	}
	if report.Success || !strings.Contains(report.FailureReason, "unreachable") {
		t.Errorf("unexpected report %+v", report)
	}
}

type panickingSummaries struct{}

func (panickingSummaries) Summary(context.Context, string) (string, error) {
	panic("boom")
}

func TestRunnerSurvivesPanic(t *testing.T) {
	store := newTestStore(t)
	submitter := &fakeSubmitter{}
	proc, _ := newTestProcessor(t, analyzerFor("https://en.wikipedia.org/wiki/X", ""), panickingSummaries{}, submitter)

	store.StartNewSession([]string{"X", "Y"}, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := NewRunner(store, proc, time.Millisecond, testLogger())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	waitForState(t, store, models.StateCompleted)
	cancel()
	<-done

	status := store.Status()
	if status.CurrentIndex != 2 {
		t.Errorf("panics must still advance the cursor, got %d", status.CurrentIndex)
	}
	if status.Failed != 2 {
		t.Errorf("expected both topics to fail, got %d", status.Failed)
	}
	report, ok := store.Report("X")
	if !ok || !strings.Contains(report.FailureReason, "internal error") {
		t.Errorf("expected an internal error report, got %+v", report)
	}
}
