package sched

import (
	"runtime"
	"time"
)

// preemptiveBackend models the RTOS backend: the host's goroutine
// scheduler already preempts ready goroutines, so Delay can park the
// calling goroutine with a real timer instead of busy-waiting.
type preemptiveBackend struct{}

func newPreemptive() Backend { return preemptiveBackend{} }

func (preemptiveBackend) Kind() Kind         { return Preemptive }
func (preemptiveBackend) Cooperative() bool  { return false }
func (preemptiveBackend) Now() time.Time     { return monotonicNow() }
func (preemptiveBackend) Yield()             { runtime.Gosched() }
func (preemptiveBackend) Delay(d time.Duration) {
	if d <= 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(d)
}
