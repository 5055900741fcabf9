package sched

import (
	"time"

	"golang.org/x/sys/unix"
)

// monotonicNow reads CLOCK_MONOTONIC directly via the syscall layer,
// grounded on the teacher's own use of golang.org/x/sys/unix for timing
// primitives in internal/uring/minimal.go, rather than relying solely on
// time.Now's runtime-internal monotonic reading. Both backends share
// this so their notion of "now" for deadline arithmetic is identical.
func monotonicNow() time.Time {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Now()
	}
	return time.Unix(int64(ts.Sec), int64(ts.Nsec))
}
