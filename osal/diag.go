package osal

import "sync"

// resourceKind indexes the per-kind counters tracked by the diagnostics
// subsystem (spec.md §4.3.9).
type resourceKind int

const (
	kindMutex resourceKind = iota
	kindSemaphore
	kindQueue
	kindEvent
	kindTimer
	kindCount
)

var diag struct {
	mu         sync.Mutex
	counts     [kindCount]int64
	highWaters [kindCount]int64
}

// diagReset zeroes every counter and watermark. Called once from Init.
func diagReset() {
	diag.mu.Lock()
	defer diag.mu.Unlock()
	for i := range diag.counts {
		diag.counts[i] = 0
		diag.highWaters[i] = 0
	}
}

// diagCreated records a successful create of the given kind: it
// increments the live count and raises the high-water mark if the new
// count is a new maximum.
func diagCreated(kind resourceKind) {
	diag.mu.Lock()
	defer diag.mu.Unlock()
	diag.counts[kind]++
	if diag.counts[kind] > diag.highWaters[kind] {
		diag.highWaters[kind] = diag.counts[kind]
	}
}

// diagDeleted records a successful delete: it decrements the live count
// only, per spec.md §4.3.9 ("every successful delete decrements the
// count only").
func diagDeleted(kind resourceKind) {
	diag.mu.Lock()
	defer diag.mu.Unlock()
	if diag.counts[kind] > 0 {
		diag.counts[kind]--
	}
}

// Stats is a snapshot of OSAL resource diagnostics.
type Stats struct {
	MutexCount     int64
	SemCount       int64
	QueueCount     int64
	EventCount     int64
	TimerCount     int64
	MutexHighWater int64
	SemHighWater   int64
	QueueHighWater int64
	EventHighWater int64
	TimerHighWater int64
}

// GetStats returns the current resource counts and high-water marks.
func GetStats() Stats {
	diag.mu.Lock()
	defer diag.mu.Unlock()
	return Stats{
		MutexCount:     diag.counts[kindMutex],
		SemCount:       diag.counts[kindSemaphore],
		QueueCount:     diag.counts[kindQueue],
		EventCount:     diag.counts[kindEvent],
		TimerCount:     diag.counts[kindTimer],
		MutexHighWater: diag.highWaters[kindMutex],
		SemHighWater:   diag.highWaters[kindSemaphore],
		QueueHighWater: diag.highWaters[kindQueue],
		EventHighWater: diag.highWaters[kindEvent],
		TimerHighWater: diag.highWaters[kindTimer],
	}
}

// ResetStats pulls every high-water mark down to its current live count,
// without touching the counts themselves (spec.md §4.3.9).
func ResetStats() {
	diag.mu.Lock()
	defer diag.mu.Unlock()
	for i := range diag.counts {
		diag.highWaters[i] = diag.counts[i]
	}
}
