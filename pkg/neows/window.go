package neows

import "time"

// DateLayout is the calendar date format the feed expects.
const DateLayout = "2006-01-02"

// DefaultWindowDays is the day radius used around the reference date.
const DefaultWindowDays = 2

// Window is an inclusive calendar date range centered on a reference instant.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowAround returns the range ref-days .. ref+days in ref's location.
// A negative radius is treated as zero.
func WindowAround(ref time.Time, days int) Window {
	if days < 0 {
		days = 0
	}
	return Window{
		Start: ref.AddDate(0, 0, -days),
		End:   ref.AddDate(0, 0, days),
	}
}

// StartDate formats the start as YYYY-MM-DD.
func (w Window) StartDate() string { return w.Start.Format(DateLayout) }

// EndDate formats the end as YYYY-MM-DD.
func (w Window) EndDate() string { return w.End.Format(DateLayout) }

func (w Window) String() string {
	return w.StartDate() + ".." + w.EndDate()
}
