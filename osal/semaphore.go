package osal

import (
	"sync"

	"github.com/gosmicro/hal/status"
)

// Semaphore is a counting semaphore bounded at [0, max] (spec.md §4.3.1).
// A binary semaphore is simply one created with max == 1.
type Semaphore struct {
	mu    sync.Mutex
	n     *notifier
	count int
	max   int
}

// SemaphoreCreate allocates a counting semaphore with the given initial
// count and maximum count. It returns nil, InvalidParam when
// initial > max or either is negative.
func SemaphoreCreate(initial, max int) (*Semaphore, status.Code) {
	if max <= 0 || initial < 0 || initial > max {
		return nil, status.InvalidParam
	}
	diagCreated(kindSemaphore)
	return &Semaphore{n: newNotifier(), count: initial, max: max}, status.Ok
}

// Delete releases s's diagnostic accounting.
func (s *Semaphore) Delete() status.Code {
	if s == nil {
		return status.NullPointer
	}
	diagDeleted(kindSemaphore)
	return status.Ok
}

// SemaphoreCreateBinary allocates a binary semaphore (max count 1),
// initially unavailable unless signaled is true.
func SemaphoreCreateBinary(signaled bool) *Semaphore {
	initial := 0
	if signaled {
		initial = 1
	}
	s, _ := SemaphoreCreate(initial, 1)
	return s
}

// SemaphoreCreateCounting allocates a counting semaphore.
func SemaphoreCreateCounting(initial, max int) (*Semaphore, status.Code) {
	return SemaphoreCreate(initial, max)
}

// Take decrements s, blocking up to timeoutMs milliseconds if the count
// is currently zero.
func (s *Semaphore) Take(timeoutMs int64) status.Code {
	if s == nil {
		return status.NullPointer
	}
	return waitUntil(&s.mu, s.n, timeoutMs, func() bool {
		if s.count == 0 {
			return false
		}
		s.count--
		return true
	})
}

// Give increments s, saturating at max (spec.md §4.3.1: "give on a full
// counting semaphore is a no-op that still returns Ok, not an error").
func (s *Semaphore) Give() status.Code {
	if s == nil {
		return status.NullPointer
	}
	s.mu.Lock()
	if s.count < s.max {
		s.count++
	}
	s.mu.Unlock()
	s.n.broadcast()
	return status.Ok
}

// GiveFromISR has the same effect as Give; it exists as a distinct entry
// point so call sites document that they run in interrupt context, the
// way spec.md's ISR-variant APIs do.
func (s *Semaphore) GiveFromISR() status.Code { return s.Give() }

// TakeFromISR attempts a single non-blocking take, equivalent to
// Take(NoWait).
func (s *Semaphore) TakeFromISR() status.Code { return s.Take(NoWait) }

// Count returns the current count.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
