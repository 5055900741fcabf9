package osal

import (
	"sync"

	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/status"
)

// QueueMode selects what Send does when the queue is full.
type QueueMode int

const (
	// QueueNormal blocks Send (up to its timeout) when the queue is full.
	QueueNormal QueueMode = iota
	// QueueOverwrite never blocks: Send on a full queue discards the
	// oldest item to make room.
	QueueOverwrite
)

// Queue is a bounded FIFO of fixed-size items (spec.md §4.3.1). Every
// item copied in or out must be exactly itemSize bytes.
type Queue struct {
	mu   sync.Mutex
	full *notifier // broadcast when an item is added or the queue is reset
	free *notifier // broadcast when an item is removed or the queue is reset

	itemSize int
	capacity int
	mode     QueueMode

	buf   [][]byte
	head  int
	count int
}

// QueueCreate allocates a queue. itemSize must be in (0,
// config.Get().QueueMaxItemSize].
func QueueCreate(capacity, itemSize int, mode QueueMode) (*Queue, status.Code) {
	if capacity <= 0 || itemSize <= 0 {
		return nil, status.InvalidParam
	}
	if itemSize > config.Get().QueueMaxItemSize {
		return nil, status.InvalidSize
	}
	diagCreated(kindQueue)
	return &Queue{
		full:     newNotifier(),
		free:     newNotifier(),
		itemSize: itemSize,
		capacity: capacity,
		mode:     mode,
		buf:      make([][]byte, capacity),
	}, status.Ok
}

// Delete empties q through Reset, which wakes blocked callers as Reset
// describes, and releases q's diagnostic accounting.
func (q *Queue) Delete() status.Code {
	if q == nil {
		return status.NullPointer
	}
	q.Reset()
	diagDeleted(kindQueue)
	return status.Ok
}

func (q *Queue) slot(i int) int { return (q.head + i) % q.capacity }

// Send enqueues item at the tail. Under QueueNormal it blocks (per
// timeoutMs) while the queue is full; under QueueOverwrite it never
// blocks, discarding the oldest item instead.
func (q *Queue) Send(item []byte, timeoutMs int64) status.Code {
	return q.send(item, timeoutMs, false)
}

// SendFront enqueues item at the head, so it is the next item Receive
// observes, ahead of anything already queued.
func (q *Queue) SendFront(item []byte, timeoutMs int64) status.Code {
	return q.send(item, timeoutMs, true)
}

func (q *Queue) send(item []byte, timeoutMs int64, front bool) status.Code {
	if q == nil {
		return status.NullPointer
	}
	if len(item) != q.itemSize {
		return status.InvalidSize
	}
	cp := append([]byte(nil), item...)

	if q.mode == QueueOverwrite {
		q.mu.Lock()
		if q.count == q.capacity {
			// discard oldest to make room
			q.head = q.slot(1)
			q.count--
		}
		q.insertLocked(cp, front)
		q.mu.Unlock()
		q.full.broadcast()
		return status.Ok
	}

	if timeoutMs == NoWait {
		q.mu.Lock()
		if q.count == q.capacity {
			q.mu.Unlock()
			return status.Full
		}
		q.insertLocked(cp, front)
		q.mu.Unlock()
		q.full.broadcast()
		return status.Ok
	}

	// full on NO_WAIT or after timeout (spec.md §4.3.7), unlike Receive's
	// timeout below: waitUntil only ever reports status.Timeout, so remap.
	code := waitUntil(&q.mu, q.free, timeoutMs, func() bool {
		if q.count == q.capacity {
			return false
		}
		q.insertLocked(cp, front)
		return true
	})
	if code != status.Ok {
		return status.Full
	}
	q.full.broadcast()
	return status.Ok
}

// insertLocked requires q.mu held and q.count < q.capacity.
func (q *Queue) insertLocked(item []byte, front bool) {
	if front {
		q.head = (q.head - 1 + q.capacity) % q.capacity
		q.buf[q.head] = item
	} else {
		q.buf[q.slot(q.count)] = item
	}
	q.count++
}

// Receive dequeues the item at the head, blocking per timeoutMs while
// the queue is empty. dst must be exactly itemSize bytes.
func (q *Queue) Receive(dst []byte, timeoutMs int64) status.Code {
	if q == nil {
		return status.NullPointer
	}
	if len(dst) != q.itemSize {
		return status.InvalidSize
	}
	if timeoutMs == NoWait {
		q.mu.Lock()
		if q.count == 0 {
			q.mu.Unlock()
			return status.Empty
		}
		copy(dst, q.buf[q.head])
		q.buf[q.head] = nil
		q.head = q.slot(1)
		q.count--
		q.mu.Unlock()
		q.free.broadcast()
		return status.Ok
	}

	// empty on NO_WAIT (above); a positive timeout that expires reports
	// timeout, per spec.md §4.3.7, so waitUntil's result is used as-is.
	code := waitUntil(&q.mu, q.full, timeoutMs, func() bool {
		if q.count == 0 {
			return false
		}
		copy(dst, q.buf[q.head])
		q.buf[q.head] = nil
		q.head = q.slot(1)
		q.count--
		return true
	})
	if code != status.Ok {
		return code
	}
	q.free.broadcast()
	return status.Ok
}

// Peek copies the head item into dst without removing it.
func (q *Queue) Peek(dst []byte, timeoutMs int64) status.Code {
	if q == nil {
		return status.NullPointer
	}
	if len(dst) != q.itemSize {
		return status.InvalidSize
	}
	if timeoutMs == NoWait {
		q.mu.Lock()
		if q.count == 0 {
			q.mu.Unlock()
			return status.Empty
		}
		copy(dst, q.buf[q.head])
		q.mu.Unlock()
		return status.Ok
	}
	return waitUntil(&q.mu, q.full, timeoutMs, func() bool {
		if q.count == 0 {
			return false
		}
		copy(dst, q.buf[q.head])
		return true
	})
}

// SendFromISR and ReceiveFromISR are non-blocking (NoWait) equivalents
// of Send/Receive for use from interrupt-context callers.
func (q *Queue) SendFromISR(item []byte) status.Code    { return q.Send(item, NoWait) }
func (q *Queue) ReceiveFromISR(dst []byte) status.Code  { return q.Receive(dst, NoWait) }

// Reset empties the queue and wakes every blocked caller to re-check its
// condition: a blocked Send then finds room and completes with Ok, while
// a blocked Receive or Peek keeps waiting until an item arrives or its
// own timeout expires.
func (q *Queue) Reset() status.Code {
	if q == nil {
		return status.NullPointer
	}
	q.mu.Lock()
	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head = 0
	q.count = 0
	q.mu.Unlock()
	q.free.broadcast()
	q.full.broadcast()
	return status.Ok
}

// Len returns the number of items currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the configured item capacity.
func (q *Queue) Capacity() int { return q.capacity }
