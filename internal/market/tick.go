package market

import "time"

// NextTickDelay returns the duration from now until the next instant whose
// integer-seconds component is an exact multiple of tick, compensating for
// the sub-second fraction already elapsed. The result is always in
// (0, tick], so an instant exactly on a boundary waits one full tick.
func NextTickDelay(now time.Time, tick time.Duration) time.Duration {
	if tick <= 0 {
		return 0
	}

	rem := time.Duration(now.UnixNano()) % tick
	return tick - rem
}
