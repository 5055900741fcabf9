package osal

import (
	"sync"

	"github.com/gosmicro/hal/status"
)

// Mutex is a recursive mutex with at most one owner task at a time
// (spec.md §4.3.1). The owning task may re-lock it any number of times;
// it is released only once Unlock has been called a matching number of
// times.
type Mutex struct {
	mu sync.Mutex
	n  *notifier

	owner TaskID
	depth int
}

// MutexCreate allocates an unlocked recursive mutex.
func MutexCreate() *Mutex {
	diagCreated(kindMutex)
	return &Mutex{n: newNotifier()}
}

// Delete releases m's diagnostic accounting. A mutex held at delete time
// leaves any blocked waiter to time out normally; it does not force an
// unlock.
func (m *Mutex) Delete() status.Code {
	if m == nil {
		return status.NullPointer
	}
	diagDeleted(kindMutex)
	return status.Ok
}

// Lock acquires m, blocking the calling task up to timeoutMs
// milliseconds (NoWait / WaitForever per spec.md §4.3.1). A task that
// already owns m always succeeds immediately and increments the
// recursion depth, regardless of timeoutMs.
func (m *Mutex) Lock(timeoutMs int64) status.Code {
	if m == nil {
		return status.NullPointer
	}
	caller := currentTaskID()

	return waitUntil(&m.mu, m.n, timeoutMs, func() bool {
		if m.depth != 0 && m.owner != caller {
			return false
		}
		m.owner = caller
		m.depth++
		return true
	})
}

// Unlock releases one level of recursion. It returns InvalidState if the
// calling task does not currently own m.
func (m *Mutex) Unlock() status.Code {
	if m == nil {
		return status.NullPointer
	}
	caller := currentTaskID()

	m.mu.Lock()
	if m.depth == 0 || m.owner != caller {
		m.mu.Unlock()
		return status.InvalidState
	}
	m.depth--
	releasedFully := m.depth == 0
	m.mu.Unlock()

	if releasedFully {
		m.n.broadcast()
	}
	return status.Ok
}

// IsLocked reports whether m is currently held by any task.
func (m *Mutex) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth > 0
}

// GetOwner returns the id of the task currently holding m, or 0 if it is
// unlocked.
func (m *Mutex) GetOwner() TaskID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 {
		return 0
	}
	return m.owner
}
