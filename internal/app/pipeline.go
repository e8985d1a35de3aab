package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/neowatch/internal/approach"
	"github.com/samvad-hq/neowatch/internal/domain"
	"github.com/samvad-hq/neowatch/internal/logger"
	"github.com/samvad-hq/neowatch/internal/storage"
	"github.com/samvad-hq/neowatch/pkg/neows"
	"github.com/samvad-hq/neowatch/pkg/publishers"
)

// DefaultPublishTimeout bounds how long a cycle waits on its report sinks.
const DefaultPublishTimeout = 5 * time.Second

// Feed retrieves one window of the close-approach feed.
type Feed interface {
	Fetch(ctx context.Context) (*neows.FeedPayload, neows.Window, error)
}

// ReportSink receives every successful report.
type ReportSink interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Deps are the collaborators of a Pipeline. Feed, Store and Presenter are required.
type Deps struct {
	Feed      Feed
	Store     storage.Store
	Presenter *approach.Presenter
	Sink      ReportSink
	MaxRows   int
	Source    string
	Log       logger.Logger
	Now       func() time.Time
	NewID     func() string

	// PublishTimeout bounds sink delivery; zero means DefaultPublishTimeout.
	PublishTimeout time.Duration
}

// Pipeline runs fetch, projection, selection and presentation for one trigger.
type Pipeline struct {
	feed           Feed
	store          storage.Store
	presenter      *approach.Presenter
	sink           ReportSink
	maxRows        int
	publishTimeout time.Duration
	source         string
	log            logger.Logger
	now            func() time.Time
	newID          func() string
	closers        []func() error
}

// NewPipeline validates deps and fills defaults.
func NewPipeline(d Deps) (*Pipeline, error) {
	if d.Feed == nil {
		return nil, fmt.Errorf("pipeline requires a feed")
	}
	if d.Store == nil {
		return nil, fmt.Errorf("pipeline requires a preference store")
	}
	if d.Presenter == nil {
		return nil, fmt.Errorf("pipeline requires a presenter")
	}
	p := &Pipeline{
		feed:           d.Feed,
		store:          d.Store,
		presenter:      d.Presenter,
		sink:           d.Sink,
		maxRows:        d.MaxRows,
		publishTimeout: d.PublishTimeout,
		source:         d.Source,
		log:            logger.Ensure(d.Log),
		now:            d.Now,
		newID:          d.NewID,
	}
	if p.maxRows <= 0 || p.maxRows > approach.MaxRows {
		p.maxRows = approach.MaxRows
	}
	if p.publishTimeout <= 0 {
		p.publishTimeout = DefaultPublishTimeout
	}
	if p.source == "" {
		p.source = "neowatch"
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p, nil
}

// Cycle performs one fetch-to-rows pass. Feed errors are returned unchanged and
// leave no partial report. The threshold is read once, after the fetch.
func (p *Pipeline) Cycle(ctx context.Context, trigger Trigger) (domain.Report, error) {
	started := p.now()

	payload, window, err := p.feed.Fetch(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	records, stats := neows.ProjectWithStats(payload)
	p.log.DebugObj("feed projected", "projection_stats", stats)

	threshold, err := storage.LoadThreshold(p.store)
	if err != nil {
		p.log.WarnObj("threshold unreadable, using default", "prefs_error", err.Error())
	}

	selected := approach.Select(records, threshold, p.maxRows)
	report := domain.Report{
		ID:          p.newID(),
		Trigger:     string(trigger),
		WindowStart: window.StartDate(),
		WindowEnd:   window.EndDate(),
		ThresholdAU: float64(threshold),
		Records:     selected,
		Rows:        p.presenter.Rows(selected),
		GeneratedAt: p.now().UTC(),
	}

	p.log.InfoObj("cycle completed", "cycle_meta", map[string]any{
		"report_id":  report.ID,
		"trigger":    report.Trigger,
		"window":     window.String(),
		"projected":  stats.Projected,
		"selected":   len(selected),
		"max_au":     report.ThresholdAU,
		"elapsed_ms": p.now().Sub(started).Milliseconds(),
	})

	p.publish(ctx, report)
	return report, nil
}

// Run is Start, Cycle and Settle in sequence for synchronous callers.
func (p *Pipeline) Run(ctx context.Context, state TriggerState, trigger Trigger) (domain.Report, Outcome) {
	busy, ok := Start(state, trigger, p.now())
	if !ok {
		return domain.Report{}, Outcome{State: state, Err: ErrBusy}
	}
	report, err := p.Cycle(ctx, trigger)
	return report, Settle(busy, trigger, report, err, p.now())
}

func (p *Pipeline) publish(ctx context.Context, report domain.Report) {
	if p.sink == nil || p.sink.Size() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	delivered, err := p.sink.Publish(ctx, publishers.NewEvent(p.source, report))
	if err != nil {
		p.log.ErrorObj("report delivery failed", "publish_error", map[string]any{
			"report_id": report.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	p.log.DebugObj("report delivered", "publish_meta", map[string]any{
		"report_id": report.ID,
		"delivered": delivered,
	})
}

// Threshold returns the persisted display threshold.
func (p *Pipeline) Threshold() (domain.Threshold, error) {
	return storage.LoadThreshold(p.store)
}

// SetThreshold persists v, coercing invalid values to the default.
func (p *Pipeline) SetThreshold(v float64) (domain.Threshold, error) {
	t, err := storage.SaveThreshold(p.store, v)
	if err != nil {
		return t, err
	}
	p.log.InfoObj("threshold updated", "threshold_au", float64(t))
	return t, nil
}

// SetThresholdText parses user input the way the edit field does: anything
// that is not a positive finite number is saved as the default.
func (p *Pipeline) SetThresholdText(s string) (domain.Threshold, error) {
	return p.SetThreshold(ParseThreshold(s))
}

// ParseThreshold converts free text to a float, returning 0 when it does not parse.
func ParseThreshold(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Close releases the store and any sink connections owned by the pipeline.
func (p *Pipeline) Close() error {
	if p == nil {
		return nil
	}
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}
