package testutil

import (
	"sync"
	"time"

	"github.com/psantana5/timethis/pkg/timethis"
)

// FakeClock is a manually driven Clock. Every call to Now advances the clock
// by Step after reporting the current time.
type FakeClock struct {
	mtx   sync.Mutex
	now   time.Time
	Step  time.Duration
	reads int
}

// NewFakeClock returns a FakeClock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (f *FakeClock) Now() time.Time {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.reads++
	t := f.now
	f.now = f.now.Add(f.Step)
	return t
}

func (f *FakeClock) Since(t time.Time) time.Duration {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.reads++
	return f.now.Sub(t)
}

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.now = f.now.Add(d)
}

// Reads returns how many times Now or Since has been called.
func (f *FakeClock) Reads() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return f.reads
}

var _ timethis.Clock = new(FakeClock)
