package util

import (
	"math"
	"time"
)

// RoundMinutes rounds a duration to whole minutes, halves rounding up towards positive infinity
func RoundMinutes(duration time.Duration) int {
	return int(math.Floor(duration.Minutes() + 0.5))
}

// MinutesUntil is the rounded number of minutes from now until t, never negative
func MinutesUntil(now time.Time, t time.Time) int {
	return max(RoundMinutes(t.Sub(now)), 0)
}
