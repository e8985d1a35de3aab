package app

import (
	"strconv"
	"time"

	"github.com/samvad-hq/neowatch/internal/domain"
)

// Trigger names the user action that started a cycle.
type Trigger string

const (
	Refresh    Trigger = "refresh"
	Diagnostic Trigger = "diagnostic"
)

const clockLayout = "15:04:05"

// TriggerState is the trigger control's disabled flag plus the status line.
type TriggerState struct {
	Busy   bool
	Status string
}

// Outcome is what a settled cycle hands back to the caller.
// Notice is empty on success and carries the blocking message on failure.
type Outcome struct {
	State  TriggerState
	Notice string
	Err    error
}

// Start marks state busy for trigger. It refuses (ok=false) while a cycle is in flight.
func Start(state TriggerState, trigger Trigger, now time.Time) (TriggerState, bool) {
	if state.Busy {
		return state, false
	}
	label := "Updating…"
	if trigger == Diagnostic {
		label = "Diagnostic…"
	}
	return TriggerState{Busy: true, Status: label + " (" + now.Format(clockLayout) + ")"}, true
}

// Settle releases the trigger and derives the status line and notice for a finished cycle.
func Settle(state TriggerState, trigger Trigger, report domain.Report, err error, now time.Time) Outcome {
	stamp := " (" + now.Format(clockLayout) + ")"
	state.Busy = false

	if err != nil {
		out := Outcome{Err: err}
		if trigger == Diagnostic {
			state.Status = "Diagnostic failed" + stamp
			out.Notice = "Diagnostic: " + err.Error()
		} else {
			state.Status = "Refresh failed" + stamp
			out.Notice = "Could not load from NASA.\n\n" + err.Error()
		}
		out.State = state
		return out
	}

	n := strconv.Itoa(len(report.Records))
	if trigger == Diagnostic {
		state.Status = "Diagnostic OK: " + n + " items" + stamp
	} else {
		limit := strconv.FormatFloat(report.ThresholdAU, 'g', -1, 64)
		state.Status = "OK: " + n + " items, max " + limit + " AU" + stamp
	}
	return Outcome{State: state}
}
