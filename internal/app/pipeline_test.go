package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/neowatch/internal/approach"
	"github.com/samvad-hq/neowatch/internal/config"
	"github.com/samvad-hq/neowatch/internal/domain"
	"github.com/samvad-hq/neowatch/internal/storage"
	"github.com/samvad-hq/neowatch/pkg/neows"
	"github.com/samvad-hq/neowatch/pkg/publishers"
)

const cycleFeed = `{
  "element_count": 5,
  "near_earth_objects": {
    "2024-01-10": [
      {"id": "1", "name": "Far", "close_approach_data": [{"close_approach_date_full": "2024-Jan-10 01:00",
        "relative_velocity": {"kilometers_per_second": "10"}, "miss_distance": {"astronomical": "0.10"}}]},
      {"id": "2", "name": "Late", "close_approach_data": [{"close_approach_date_full": "2024-Jan-10 23:00",
        "relative_velocity": {"kilometers_per_second": "5.5"}, "miss_distance": {"astronomical": "0.03"}}]},
      {"id": "3", "name": "Boundary", "close_approach_data": [{"close_approach_date_full": "2024-Jan-10 12:00",
        "relative_velocity": {"kilometers_per_second": "7"}, "miss_distance": {"astronomical": "0.05"}}]}
    ],
    "2024-01-09": [
      {"id": "4", "name": "Early", "close_approach_data": [{"close_approach_date_full": "2024-Jan-09 08:30",
        "relative_velocity": {"kilometers_per_second": "12.3456"}, "miss_distance": {"astronomical": "0.02"}}]},
      {"id": "5", "name": "Skipped"}
    ]
  }
}`

type fakeFeed struct {
	payload *neows.FeedPayload
	err     error
	calls   int
}

func (f *fakeFeed) Fetch(context.Context) (*neows.FeedPayload, neows.Window, error) {
	f.calls++
	if f.err != nil {
		return nil, neows.Window{}, f.err
	}
	return f.payload, neows.WindowAround(clock, 2), nil
}

type recordingSink struct {
	events []publishers.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, evt publishers.Event) (int, error) {
	s.events = append(s.events, evt)
	if s.err != nil {
		return 0, s.err
	}
	return 1, nil
}

func (s *recordingSink) Size() int { return 1 }

type countingStore struct {
	storage.Store
	reads int
}

func (c *countingStore) GetFloat(key string) (float64, bool, error) {
	c.reads++
	return c.Store.GetFloat(key)
}

func decodePayload(t *testing.T) *neows.FeedPayload {
	t.Helper()
	var p neows.FeedPayload
	if err := json.Unmarshal([]byte(cycleFeed), &p); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	return &p
}

func newTestPipeline(t *testing.T, feed Feed, store storage.Store, sink ReportSink) *Pipeline {
	t.Helper()
	presenter, err := approach.NewPresenter("en-US")
	if err != nil {
		t.Fatalf("NewPresenter: %v", err)
	}
	p, err := NewPipeline(Deps{
		Feed:      feed,
		Store:     store,
		Presenter: presenter,
		Sink:      sink,
		Now:       func() time.Time { return clock },
		NewID:     func() string { return "rep-1" },
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func designations(records []domain.ApproachRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Designation
	}
	return out
}

func TestCycleFiltersSortsAndPresents(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore()}
	sink := &recordingSink{}
	p := newTestPipeline(t, &fakeFeed{payload: decodePayload(t)}, store, sink)

	report, err := p.Cycle(context.Background(), Refresh)
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	got := designations(report.Records)
	want := []string{"Early", "Boundary", "Late"}
	if len(got) != len(want) {
		t.Fatalf("records = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("records = %v, want %v", got, want)
		}
	}
	if report.Rows[0].DistanceKm != "2,991,957" || report.Rows[0].RelativeSpeedKmS != "12.35" {
		t.Fatalf("first row = %+v", report.Rows[0])
	}
	if report.ID != "rep-1" || report.Trigger != "refresh" || report.ThresholdAU != domain.DefaultThresholdAU {
		t.Fatalf("report header = %+v", report)
	}
	if report.WindowStart != "2024-01-08" || report.WindowEnd != "2024-01-12" {
		t.Fatalf("window = %s..%s", report.WindowStart, report.WindowEnd)
	}
	if store.reads != 1 {
		t.Fatalf("threshold should be read exactly once per cycle, got %d", store.reads)
	}
	if len(sink.events) != 1 || sink.events[0].Report.ID != "rep-1" {
		t.Fatalf("sink did not receive the report: %#v", sink.events)
	}
}

func TestCycleUsesPersistedThreshold(t *testing.T) {
	store := storage.NewMemoryStore()
	p := newTestPipeline(t, &fakeFeed{payload: decodePayload(t)}, store, nil)
	if _, err := p.SetThreshold(0.025); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}

	report, err := p.Cycle(context.Background(), Diagnostic)
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if got := designations(report.Records); len(got) != 1 || got[0] != "Early" {
		t.Fatalf("records = %v", got)
	}
	if report.ThresholdAU != 0.025 {
		t.Fatalf("ThresholdAU = %v", report.ThresholdAU)
	}
}

func TestCycleReturnsFeedErrorUnchanged(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, &fakeFeed{err: neows.ErrRateLimited}, storage.NewMemoryStore(), sink)

	report, err := p.Cycle(context.Background(), Refresh)
	if err != neows.ErrRateLimited {
		t.Fatalf("expected ErrRateLimited unchanged, got %v", err)
	}
	if len(report.Rows) != 0 || report.ID != "" {
		t.Fatalf("failed cycle must not carry a partial report: %+v", report)
	}
	if len(sink.events) != 0 {
		t.Fatalf("sink must not be called on failure")
	}
}

func TestCycleIgnoresSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("queue down")}
	p := newTestPipeline(t, &fakeFeed{payload: decodePayload(t)}, storage.NewMemoryStore(), sink)

	if _, err := p.Cycle(context.Background(), Refresh); err != nil {
		t.Fatalf("sink failure leaked into the cycle: %v", err)
	}
}

type blockingSink struct {
	deadline bool
}

func (s *blockingSink) Publish(ctx context.Context, _ publishers.Event) (int, error) {
	_, s.deadline = ctx.Deadline()
	<-ctx.Done()
	return 0, ctx.Err()
}

func (s *blockingSink) Size() int { return 1 }

func TestCycleBoundsStalledSink(t *testing.T) {
	presenter, err := approach.NewPresenter("en-US")
	if err != nil {
		t.Fatalf("NewPresenter: %v", err)
	}
	sink := &blockingSink{}
	p, err := NewPipeline(Deps{
		Feed:           &fakeFeed{payload: decodePayload(t)},
		Store:          storage.NewMemoryStore(),
		Presenter:      presenter,
		Sink:           sink,
		PublishTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := p.Cycle(context.Background(), Refresh)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stalled sink leaked into the cycle: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cycle still waiting on the report sink")
	}
	if !sink.deadline {
		t.Fatalf("sink should be called with a deadline")
	}
}

func TestRunSettlesState(t *testing.T) {
	feed := &fakeFeed{payload: decodePayload(t)}
	p := newTestPipeline(t, feed, storage.NewMemoryStore(), nil)

	_, out := p.Run(context.Background(), TriggerState{}, Refresh)
	if out.Err != nil || out.State.Busy || out.State.Status != "OK: 3 items, max 0.05 AU (14:05:09)" {
		t.Fatalf("Run outcome = %+v", out)
	}

	_, out = p.Run(context.Background(), TriggerState{Busy: true}, Diagnostic)
	if !errors.Is(out.Err, ErrBusy) || feed.calls != 1 {
		t.Fatalf("busy Run should not fetch, err=%v calls=%d", out.Err, feed.calls)
	}

	feed.err = neows.ErrRateLimited
	_, out = p.Run(context.Background(), TriggerState{}, Diagnostic)
	if out.State.Status != "Diagnostic failed (14:05:09)" || out.Notice == "" {
		t.Fatalf("failed Run outcome = %+v", out)
	}
}

func TestSetThresholdTextCoercesInvalidInput(t *testing.T) {
	p := newTestPipeline(t, &fakeFeed{}, storage.NewMemoryStore(), nil)
	cases := map[string]domain.Threshold{
		"0.02":  0.02,
		" 0.1 ": 0.1,
		"abc":   domain.DefaultThresholdAU,
		"-1":    domain.DefaultThresholdAU,
		"0":     domain.DefaultThresholdAU,
		"NaN":   domain.DefaultThresholdAU,
		"":      domain.DefaultThresholdAU,
	}
	for in, want := range cases {
		got, err := p.SetThresholdText(in)
		if err != nil || got != want {
			t.Fatalf("SetThresholdText(%q) = %v, %v; want %v", in, got, err, want)
		}
		if stored, _ := p.Threshold(); stored != want {
			t.Fatalf("stored threshold after %q = %v", in, stored)
		}
	}
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	if _, err := NewPipeline(Deps{}); err == nil {
		t.Fatalf("expected missing feed to fail")
	}
	if _, err := NewPipeline(Deps{Feed: &fakeFeed{}}); err == nil {
		t.Fatalf("expected missing store to fail")
	}
}

func TestNewFromConfigAgainstFeedServer(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/feed" || r.URL.Query().Get("api_key") != "k" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cycleFeed))
	}))
	defer srv.Close()

	cfg := &config.Config{
		AppName:       "neowatch",
		NeoBaseURL:    srv.URL,
		NeoAPIKey:     "k",
		NeoUserAgent:  "neowatch-test",
		FetchTimeout:  2 * time.Second,
		WindowDays:    1,
		MaxRows:       2,
		DisplayLocale: "pt-BR",
		PrefsType:     "memory",
	}
	p, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	report, err := p.Cycle(context.Background(), Refresh)
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one request, got %d", hits)
	}
	if got := designations(report.Records); len(got) != 2 || got[0] != "Early" || got[1] != "Boundary" {
		t.Fatalf("max_rows not applied: %v", got)
	}
	if report.Rows[0].DistanceKm != "2.991.957" {
		t.Fatalf("locale not applied: %q", report.Rows[0].DistanceKm)
	}
}

func TestNewRejectsBadStore(t *testing.T) {
	cfg := &config.Config{NeoBaseURL: "http://localhost", NeoAPIKey: "k", DisplayLocale: "en-US", PrefsType: "redis"}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected unsupported store type to fail")
	}
}
