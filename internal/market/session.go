// Package market holds the pure wall-clock calculations behind the polling
// loop: session classification, tick alignment and next-open planning. Every
// function takes an explicit time.Time already localized to the exchange
// timezone, so all of them are deterministic and directly testable.
package market

import "time"

// Phase is the trading-session phase for a given instant
type Phase int

const (
	PhaseWeekend Phase = iota
	PhaseBeforeOpen
	PhaseOpen
	PhaseAfterClose
)

// Regular session bounds (local exchange time)
const (
	openHour    = 9
	openMinute  = 30
	closeHour   = 16
	closeMinute = 0
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseWeekend:
		return "weekend"
	case PhaseBeforeOpen:
		return "before_open"
	case PhaseOpen:
		return "open"
	case PhaseAfterClose:
		return "after_close"
	default:
		return "unknown"
	}
}

// Classify returns the session phase for t. The open window is inclusive on
// both ends: 09:30:00.000000 <= t <= 16:00:00.000000. This only checks the
// clock; holidays and unscheduled halts are caught by the live status probe.
func Classify(t time.Time) Phase {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return PhaseWeekend
	}

	open := time.Date(t.Year(), t.Month(), t.Day(), openHour, openMinute, 0, 0, t.Location())
	close := time.Date(t.Year(), t.Month(), t.Day(), closeHour, closeMinute, 0, 0, t.Location())

	switch {
	case t.Before(open):
		return PhaseBeforeOpen
	case t.After(close):
		return PhaseAfterClose
	default:
		return PhaseOpen
	}
}
