package timethis

import "time"

// Clock is the time source a Timer reads before and after the work.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// SystemClock reads the platform clock. time.Now carries a monotonic reading,
// so Since is immune to wall-clock adjustments.
type SystemClock struct{}

var _ Clock = SystemClock{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
