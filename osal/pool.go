package osal

import (
	"sync"

	"github.com/gosmicro/hal/status"
)

// Pool is a fixed-block memory pool: a pre-allocated arena of
// block_count blocks of block_size bytes each, tracked by a used bitmap
// (spec.md §3 "Memory pool", §4.2). Pool allocation never touches the
// global allocator and cannot fail with NoMemory once created — it can
// only run out of blocks.
type Pool struct {
	mu         sync.Mutex
	blockSize  int
	blockCount int
	storage    [][]byte
	used       []bool
	allocated  int
	peak       int
}

// PoolStats is a snapshot of a Pool's usage.
type PoolStats struct {
	BlockSize  int
	BlockCount int
	Allocated  int
	Peak       int
}

// PoolCreate allocates the backing arena for a fixed-block pool.
func PoolCreate(blockSize, blockCount int) (*Pool, status.Code) {
	if blockSize <= 0 || blockCount <= 0 {
		return nil, status.InvalidParam
	}
	p := &Pool{
		blockSize:  blockSize,
		blockCount: blockCount,
		storage:    make([][]byte, blockCount),
		used:       make([]bool, blockCount),
	}
	for i := range p.storage {
		p.storage[i] = make([]byte, blockSize)
	}
	return p, status.Ok
}

// AllocFromPool returns the lowest-index free block, or Empty if every
// block is in use.
func (p *Pool) AllocFromPool() ([]byte, status.Code) {
	if p == nil {
		return nil, status.NullPointer
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, inUse := range p.used {
		if !inUse {
			p.used[i] = true
			p.allocated++
			if p.allocated > p.peak {
				p.peak = p.allocated
			}
			return p.storage[i], status.Ok
		}
	}
	return nil, status.Empty
}

// FreeToPool returns buf to the pool. It rejects pointers that are not
// exactly one of the pool's own blocks.
func (p *Pool) FreeToPool(buf []byte) status.Code {
	if p == nil {
		return status.NullPointer
	}
	if len(buf) == 0 {
		return status.InvalidParam
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, block := range p.storage {
		if &block[0] == &buf[0] {
			if !p.used[i] {
				return status.InvalidParam
			}
			p.used[i] = false
			p.allocated--
			return status.Ok
		}
	}
	return status.InvalidParam
}

// Stats returns the pool's current usage.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{BlockSize: p.blockSize, BlockCount: p.blockCount, Allocated: p.allocated, Peak: p.peak}
}
