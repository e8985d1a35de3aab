package publishers

import (
	"time"

	"github.com/samvad-hq/neowatch/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Source      string        `json:"source"`
	Report      domain.Report `json:"report"`
	PublishedAt time.Time     `json:"published_at"`
}

// NewEvent wraps a cycle report for delivery.
func NewEvent(source string, report domain.Report) Event {
	return Event{
		Source:      source,
		Report:      report,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the routing hints attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"report_id": e.Report.ID,
		"trigger":   e.Report.Trigger,
		"source":    e.Source,
	}
}
