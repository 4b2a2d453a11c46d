package timethis

import "time"

// Stopwatch brackets a measured window with exactly two clock reads.
type Stopwatch struct {
	clock     Clock
	startedAt time.Time
	elapsed   time.Duration
	stopped   bool
}

// StartStopwatch takes the opening clock read.
func StartStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{
		clock:     clock,
		startedAt: clock.Now(),
	}
}

// Stop takes the closing clock read and freezes the elapsed time.
// Calling Stop again returns the frozen value without reading the clock.
func (s *Stopwatch) Stop() time.Duration {
	if !s.stopped {
		s.elapsed = s.clock.Since(s.startedAt)
		s.stopped = true
	}
	return s.elapsed
}

// StartedAt returns the opening clock read.
func (s *Stopwatch) StartedAt() time.Time {
	return s.startedAt
}
