package neows

import (
	"sort"
	"strings"

	"github.com/samvad-hq/neowatch/internal/domain"
)

// ProjectStats counts entries left out of a projection.
type ProjectStats struct {
	Objects           int `json:"objects"`
	Projected         int `json:"projected"`
	Malformed         int `json:"malformed"`
	MissingApproach   int `json:"missing_approach"`
	NonFiniteDistance int `json:"non_finite_distance"`
	NonFiniteSpeed    int `json:"non_finite_speed"`
}

// Project extracts one record per object from its first close approach.
// Entries that are not objects are left out, as are objects with no close
// approach or whose distance or speed is not a finite number. Output order follows sorted date keys, then feed order.
func Project(payload *FeedPayload) []domain.ApproachRecord {
	records, _ := ProjectWithStats(payload)
	return records
}

// ProjectWithStats is Project plus counts of what was left out.
func ProjectWithStats(payload *FeedPayload) ([]domain.ApproachRecord, ProjectStats) {
	var stats ProjectStats
	if payload == nil || len(payload.NearEarthObjects) == 0 {
		return nil, stats
	}

	dates := make([]string, 0, len(payload.NearEarthObjects))
	for date := range payload.NearEarthObjects {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]domain.ApproachRecord, 0, payload.ElementCount)
	for _, date := range dates {
		for _, neo := range payload.NearEarthObjects[date] {
			stats.Objects++
			if neo.Malformed {
				stats.Malformed++
				continue
			}
			if len(neo.CloseApproachData) == 0 {
				stats.MissingApproach++
				continue
			}
			ca := neo.CloseApproachData[0]

			if !ca.MissDistance.Astronomical.Finite() {
				stats.NonFiniteDistance++
				continue
			}
			if !ca.RelativeVelocity.KilometersPerSecond.Finite() {
				stats.NonFiniteSpeed++
				continue
			}

			out = append(out, domain.ApproachRecord{
				Designation:       neo.Name,
				ApproachTimestamp: firstNonEmpty(ca.DateFull, ca.Date, date),
				DistanceAU:        ca.MissDistance.Astronomical.Float(),
				RelativeSpeedKmS:  ca.RelativeVelocity.KilometersPerSecond.Float(),
				ObjectID:          neo.ID,
				Hazardous:         neo.Hazardous,
				JPLURL:            neo.NASAJPLURL,
			})
		}
	}
	stats.Projected = len(out)
	return out, stats
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
