package market

import (
	"testing"
	"time"
)

func TestNextWakeWeekend(t *testing.T) {
	loc := nyc(t)

	// 2025-01-04 is a Saturday, 2025-01-06 the following Monday
	wantMonday := time.Date(2025, 1, 6, 9, 25, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
	}{
		{"saturday morning", time.Date(2025, 1, 4, 8, 0, 0, 0, loc)},
		{"saturday night", time.Date(2025, 1, 4, 23, 59, 59, 0, loc)},
		{"sunday afternoon", time.Date(2025, 1, 5, 14, 30, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := NextWake(tt.now)
			if !ok {
				t.Fatal("expected a long sleep on the weekend")
			}
			if !target.Equal(wantMonday) {
				t.Errorf("NextWake(%s) = %s, want %s", tt.now, target, wantMonday)
			}
			if target.Sub(tt.now) <= 0 {
				t.Errorf("expected positive sleep duration, got %s", target.Sub(tt.now))
			}
		})
	}
}

func TestNextWakeFridayEveningSkipsWeekend(t *testing.T) {
	loc := nyc(t)

	// Friday 2025-01-10 17:00 must land on Monday 2025-01-13 09:25
	now := time.Date(2025, 1, 10, 17, 0, 0, 0, loc)
	want := time.Date(2025, 1, 13, 9, 25, 0, 0, loc)

	target, ok := NextWake(now)
	if !ok {
		t.Fatal("expected a long sleep on Friday evening")
	}
	if !target.Equal(want) {
		t.Errorf("NextWake(%s) = %s, want %s", now, target, want)
	}
}

func TestNextWakeAfterCloseMidweek(t *testing.T) {
	loc := nyc(t)

	// Monday 16:30 wakes Tuesday 09:25
	now := time.Date(2025, 1, 6, 16, 30, 0, 0, loc)
	want := time.Date(2025, 1, 7, 9, 25, 0, 0, loc)

	target, ok := NextWake(now)
	if !ok {
		t.Fatal("expected a long sleep after close")
	}
	if !target.Equal(want) {
		t.Errorf("NextWake(%s) = %s, want %s", now, target, want)
	}
}

func TestNextWakeBeforeOpen(t *testing.T) {
	loc := nyc(t)

	// Well before 09:25 the loop sleeps until 09:25 the same day
	now := time.Date(2025, 1, 6, 6, 0, 0, 0, loc)
	want := time.Date(2025, 1, 6, 9, 25, 0, 0, loc)

	target, ok := NextWake(now)
	if !ok {
		t.Fatal("expected a long sleep before open")
	}
	if !target.Equal(want) {
		t.Errorf("NextWake(%s) = %s, want %s", now, target, want)
	}
}

func TestNextWakeBetweenPreOpenAndBell(t *testing.T) {
	loc := nyc(t)

	// 09:25 already passed; fall back to the short tick
	tests := []time.Time{
		time.Date(2025, 1, 6, 9, 25, 0, 0, loc),
		time.Date(2025, 1, 6, 9, 26, 30, 0, loc),
		time.Date(2025, 1, 6, 9, 29, 59, 0, loc),
	}

	for _, now := range tests {
		if _, ok := NextWake(now); ok {
			t.Errorf("NextWake(%s): expected short-tick fallback", now)
		}
	}
}

func TestNextWakeDuringOpenIsShortTick(t *testing.T) {
	loc := nyc(t)

	now := time.Date(2025, 1, 6, 11, 0, 0, 0, loc)
	if _, ok := NextWake(now); ok {
		t.Error("expected no long sleep during the open session")
	}
}
