package report

import "sync"

// FailureSample is what we keep about a failed measurement
type FailureSample struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Error    string `json:"error"`
	ExitCode int    `json:"exit_code"`
	Loops    uint   `json:"loops"`
}

// FailureLog is a ring buffer of the most recent failed measurements
type FailureLog struct {
	samples []FailureSample
	maxSize int
	mu      sync.RWMutex
}

// NewFailureLog creates a failure log holding at most maxSize samples
func NewFailureLog(maxSize int) *FailureLog {
	if maxSize < 1 {
		maxSize = 1
	}
	return &FailureLog{
		samples: make([]FailureSample, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record keeps r if it failed. Successful results are ignored.
func (f *FailureLog) Record(r *Result) {
	if !r.Failed() {
		return
	}

	sample := FailureSample{
		ID:       r.ID,
		Label:    r.Label,
		Error:    r.Error,
		ExitCode: r.ExitCode,
		Loops:    r.Loops,
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.samples) >= f.maxSize {
		f.samples = f.samples[1:]
	}
	f.samples = append(f.samples, sample)
}

// Recent returns up to n failures, newest first. n <= 0 returns all of them.
func (f *FailureLog) Recent(n int) []FailureSample {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n <= 0 || n > len(f.samples) {
		n = len(f.samples)
	}

	out := make([]FailureSample, n)
	for i := 0; i < n; i++ {
		out[i] = f.samples[len(f.samples)-1-i]
	}
	return out
}

// Count returns how many failures are held
func (f *FailureLog) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.samples)
}
