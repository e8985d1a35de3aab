package approach

import (
	"fmt"
	"math"
	"strconv"

	"github.com/samvad-hq/neowatch/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AUToKm is the kilometer length of one astronomical unit used for display.
const AUToKm = 149_597_870

// DefaultLocale groups digits the way most English readers expect.
const DefaultLocale = "en-US"

// Presenter formats records for display using a locale's digit grouping.
type Presenter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewPresenter builds a Presenter for a BCP 47 locale such as "en-US" or "pt-BR".
// An empty locale selects DefaultLocale.
func NewPresenter(locale string) (*Presenter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Presenter{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Locale returns the presenter's language tag.
func (p *Presenter) Locale() language.Tag { return p.tag }

// Row converts one record. Designation and timestamp pass through unchanged.
func (p *Presenter) Row(r domain.ApproachRecord) domain.DisplayRow {
	return domain.DisplayRow{
		Designation:       r.Designation,
		ApproachTimestamp: r.ApproachTimestamp,
		DistanceKm:        p.Kilometers(r.DistanceAU),
		RelativeSpeedKmS:  Speed(r.RelativeSpeedKmS),
	}
}

// Rows converts records in order.
func (p *Presenter) Rows(records []domain.ApproachRecord) []domain.DisplayRow {
	out := make([]domain.DisplayRow, len(records))
	for i, r := range records {
		out[i] = p.Row(r)
	}
	return out
}

// Kilometers converts au to a rounded, grouped kilometer count.
func (p *Presenter) Kilometers(au float64) string {
	km := math.Round(au * AUToKm)
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return strconv.FormatFloat(km, 'f', 0, 64)
	}
	if math.Abs(km) >= 1<<62 {
		return p.printer.Sprintf("%.0f", km)
	}
	return p.printer.Sprintf("%d", int64(km))
}

// Speed formats km/s with exactly two decimals.
func Speed(kms float64) string {
	return strconv.FormatFloat(kms, 'f', 2, 64)
}
