package market

import "time"

// The loop wakes shortly before the bell so the first open tick is not missed
const (
	preOpenHour   = 9
	preOpenMinute = 25
)

// NextWake returns the absolute instant the loop should sleep until when it
// is idle outside trading hours, and whether a long sleep applies at all.
//
// Weekend days are skipped, so a Friday evening plans Monday 09:25 rather
// than Saturday. When ok is false the caller stays on the short tick cadence;
// that covers the instant the clock crosses 09:25 between the phase check and
// this computation, and any phase with work still pending.
//
// The caller must re-classify on wake rather than assume the target phase:
// clock drift and probe outages are tolerated by re-evaluating from the top.
func NextWake(now time.Time) (time.Time, bool) {
	switch Classify(now) {
	case PhaseWeekend:
		return preOpenOn(nextTradingDay(now, false)), true

	case PhaseAfterClose:
		return preOpenOn(nextTradingDay(now, true)), true

	case PhaseBeforeOpen:
		target := preOpenOn(now)
		if target.After(now) {
			return target, true
		}
		// Already past 09:25; the open tick window is minutes away
		return time.Time{}, false

	default:
		return time.Time{}, false
	}
}

// nextTradingDay returns the next weekday strictly after now when advance is
// true, or the upcoming Monday when now falls on a weekend.
func nextTradingDay(now time.Time, advance bool) time.Time {
	d := now
	if advance {
		d = d.AddDate(0, 0, 1)
	}
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func preOpenOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), preOpenHour, preOpenMinute, 0, 0, day.Location())
}
