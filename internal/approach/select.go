package approach

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/samvad-hq/neowatch/internal/domain"
)

// MaxRows caps how many records a single render shows.
const MaxRows = 50

// timestampLayouts are tried in order; the feed uses the first and the second-to-last.
var timestampLayouts = []string{
	"2006-Jan-02 15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// Select keeps records at or under threshold, orders them by approach time then
// distance, and truncates to limit. A limit outside 1..MaxRows means MaxRows.
// The input slice is not modified.
func Select(records []domain.ApproachRecord, threshold domain.Threshold, limit int) []domain.ApproachRecord {
	if limit <= 0 || limit > MaxRows {
		limit = MaxRows
	}
	maxAU := float64(threshold.Normalize())

	kept := make([]keyed, 0, len(records))
	for _, r := range records {
		if r.DistanceAU <= maxAU {
			at, ok := ParseTimestamp(r.ApproachTimestamp)
			kept = append(kept, keyed{rec: r, at: at, ok: ok})
		}
	}

	slices.SortStableFunc(kept, compareKeyed)

	if len(kept) > limit {
		kept = kept[:limit]
	}
	out := make([]domain.ApproachRecord, len(kept))
	for i, k := range kept {
		out[i] = k.rec
	}
	return out
}

type keyed struct {
	rec domain.ApproachRecord
	at  time.Time
	ok  bool
}

// compareKeyed orders parseable timestamps first, ascending, then by distance.
func compareKeyed(a, b keyed) int {
	switch {
	case a.ok && !b.ok:
		return -1
	case !a.ok && b.ok:
		return 1
	case a.ok && b.ok:
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.rec.DistanceAU, b.rec.DistanceAU)
}

// ParseTimestamp reads a feed approach timestamp as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
