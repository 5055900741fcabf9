// Package adapter implements the four sync/async transport adapters of
// spec.md §4.6, each backed by a fixed-size slot pool sized from
// internal/config.AdapterPoolSize.
package adapter

import (
	"sync"

	"github.com/gosmicro/hal/status"
)

// Pool is a fixed-capacity, zero-value-reusing slot pool. Acquire scans
// for the first free slot; Release clears and frees it. An exhausted
// pool returns NoResource rather than growing, matching the statically
// allocated C original this was ported from.
type Pool[T any] struct {
	mu    sync.Mutex
	slots []T
	used  []bool
}

// NewPool allocates a pool with size slots.
func NewPool[T any](size int) *Pool[T] {
	return &Pool[T]{slots: make([]T, size), used: make([]bool, size)}
}

// Acquire returns a pointer to the lowest-index free slot.
func (p *Pool[T]) Acquire() (*T, status.Code) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.used {
		if !p.used[i] {
			p.used[i] = true
			return &p.slots[i], status.Ok
		}
	}
	return nil, status.NoResource
}

// Release clears item's slot and marks it free. An item not owned by
// this pool returns InvalidParam.
func (p *Pool[T]) Release(item *T) status.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.slots {
		if &p.slots[i] == item {
			var zero T
			p.slots[i] = zero
			p.used[i] = false
			return status.Ok
		}
	}
	return status.InvalidParam
}
