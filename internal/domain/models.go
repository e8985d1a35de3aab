package domain

import (
	"math"
	"time"
)

// Domain contains core models shared by the feed client, selection, and presentation.

// ApproachRecord is one object's first recorded close approach, as extracted from the feed.
type ApproachRecord struct {
	Designation       string  `json:"designation"`
	ApproachTimestamp string  `json:"approach_timestamp"`
	DistanceAU        float64 `json:"distance_au"`
	RelativeSpeedKmS  float64 `json:"relative_speed_km_s"`

	ObjectID  string `json:"object_id,omitempty"`
	Hazardous bool   `json:"hazardous"`
	JPLURL    string `json:"jpl_url,omitempty"`
}

// DisplayRow is the formatted form of an ApproachRecord.
type DisplayRow struct {
	Designation       string `json:"designation"`
	ApproachTimestamp string `json:"approach_timestamp"`
	DistanceKm        string `json:"distance_km"`
	RelativeSpeedKmS  string `json:"relative_speed_km_s"`
}

// DefaultThresholdAU applies whenever a threshold is absent or invalid.
const DefaultThresholdAU = 0.05

// Threshold is the maximum miss distance, in astronomical units, a record may have to be displayed.
type Threshold float64

// Normalize returns t when it is finite and positive, DefaultThresholdAU otherwise.
func (t Threshold) Normalize() Threshold {
	v := float64(t)
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return DefaultThresholdAU
	}
	return t
}

// Valid reports whether t is usable without normalization.
func (t Threshold) Valid() bool {
	return t.Normalize() == t
}

// Report is the outcome of one successful cycle, as handed to downstream sinks.
type Report struct {
	ID          string           `json:"id"`
	Trigger     string           `json:"trigger"`
	WindowStart string           `json:"window_start"`
	WindowEnd   string           `json:"window_end"`
	ThresholdAU float64          `json:"threshold_au"`
	Records     []ApproachRecord `json:"records"`
	Rows        []DisplayRow     `json:"rows"`
	GeneratedAt time.Time        `json:"generated_at"`
}
