package timethis

import "time"

// Timer runs units of work against a Clock. A Timer has no mutable state,
// so one value can be shared by any number of goroutines.
type Timer struct {
	clock Clock
}

// New returns a Timer reading the given clock, or the system clock when nil.
func New(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{clock: clock}
}

var defaultTimer = New(nil)

// Once runs work exactly once and returns how long it took.
func (t *Timer) Once(work func()) time.Duration {
	sw := StartStopwatch(t.clock)
	work()
	return sw.Stop()
}

// Loops runs work n times in sequence and returns the total time for all
// iterations. The total is not divided by n. With n == 0 work is never called
// and the result is the gap between the two clock reads.
func (t *Timer) Loops(n uint, work func()) time.Duration {
	sw := StartStopwatch(t.clock)
	for i := uint(0); i < n; i++ {
		work()
	}
	return sw.Stop()
}

// Span is one measured window: the opening clock read and the time that
// passed until the closing read.
type Span struct {
	Start   time.Time
	Elapsed time.Duration
}

// End is the closing read of the window.
func (s Span) End() time.Time {
	return s.Start.Add(s.Elapsed)
}

// OnceSpan runs fallible work once and returns the window it ran in. When work
// fails its error is returned as is and the span only carries Start.
func (t *Timer) OnceSpan(work func() error) (Span, error) {
	sw := StartStopwatch(t.clock)
	if err := work(); err != nil {
		return Span{Start: sw.StartedAt()}, err
	}
	return Span{Start: sw.StartedAt(), Elapsed: sw.Stop()}, nil
}

// LoopsSpan runs fallible work n times and returns the window covering all
// iterations. The first failing iteration stops the loop; its error is
// returned as is and the span only carries Start.
func (t *Timer) LoopsSpan(n uint, work func() error) (Span, error) {
	sw := StartStopwatch(t.clock)
	for i := uint(0); i < n; i++ {
		if err := work(); err != nil {
			return Span{Start: sw.StartedAt()}, err
		}
	}
	return Span{Start: sw.StartedAt(), Elapsed: sw.Stop()}, nil
}

// OnceE is Once for work that can fail. A non-nil error from work is returned
// as is, together with a zero duration.
func (t *Timer) OnceE(work func() error) (time.Duration, error) {
	span, err := t.OnceSpan(work)
	if err != nil {
		return 0, err
	}
	return span.Elapsed, nil
}

// LoopsE is Loops for work that can fail. The first failing iteration stops
// the loop and its error is returned as is, together with a zero duration.
func (t *Timer) LoopsE(n uint, work func() error) (time.Duration, error) {
	span, err := t.LoopsSpan(n, work)
	if err != nil {
		return 0, err
	}
	return span.Elapsed, nil
}

// Once runs work exactly once on the system clock.
func Once(work func()) time.Duration {
	return defaultTimer.Once(work)
}

// Loops runs work n times on the system clock.
func Loops(n uint, work func()) time.Duration {
	return defaultTimer.Loops(n, work)
}

// OnceE runs fallible work exactly once on the system clock.
func OnceE(work func() error) (time.Duration, error) {
	return defaultTimer.OnceE(work)
}

// LoopsE runs fallible work n times on the system clock.
func LoopsE(n uint, work func() error) (time.Duration, error) {
	return defaultTimer.LoopsE(n, work)
}
