package report

import "sync"

// RecentResults keeps the last N results in memory for the watch server
type RecentResults struct {
	results []*Result
	maxSize int
	mu      sync.RWMutex
}

// NewRecentResults creates a buffer holding at most maxSize results
func NewRecentResults(maxSize int) *RecentResults {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RecentResults{
		results: make([]*Result, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends r, dropping the oldest result when full
func (b *RecentResults) Add(r *Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.results) >= b.maxSize {
		b.results = b.results[1:]
	}
	b.results = append(b.results, r)
}

// Latest returns up to n results, newest first. n <= 0 returns all of them.
func (b *RecentResults) Latest(n int) []*Result {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.results) {
		n = len(b.results)
	}

	out := make([]*Result, n)
	for i := 0; i < n; i++ {
		out[i] = b.results[len(b.results)-1-i]
	}
	return out
}
