package osal

import (
	"sync"
	"unsafe"

	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/status"
)

// CustomAllocator is the backing implementation a custom-mode allocator
// delegates to (spec.md §4.2: "custom requires a user-provided
// {alloc, free, user_data} record"). AllocFn returning nil signals
// allocation failure.
type CustomAllocator struct {
	AllocFn  func(size int) []byte
	FreeFn   func(buf []byte)
	UserData any
}

// MemStats is a snapshot of the global allocator's bookkeeping.
type MemStats struct {
	AllocatedBytes int64
	AllocCount     int64
	PeakBytes      int64
}

var mem struct {
	mu       sync.Mutex
	mode     config.MemMode
	custom   *CustomAllocator
	capacity int64

	allocated int64
	count     int64
	peak      int64
	minFree   int64

	outstanding map[uintptr]int64
}

// MemInit selects the global allocator's mode. It is safe to call again
// to switch modes; doing so discards all outstanding bookkeeping (it
// does not free anything previously allocated — that memory is simply no
// longer tracked).
func MemInit(mode config.MemMode, custom *CustomAllocator) status.Code {
	if mode == config.MemCustom && (custom == nil || custom.AllocFn == nil || custom.FreeFn == nil) {
		return status.InvalidParam
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.mode = mode
	mem.custom = custom
	mem.capacity = int64(config.Get().HeapSize)
	mem.allocated = 0
	mem.count = 0
	mem.peak = 0
	mem.minFree = mem.capacity
	mem.outstanding = make(map[uintptr]int64)
	return status.Ok
}

func bufAddr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}

// Alloc returns a byte slice of the requested size, or nil when size is
// zero, the allocator is out of budget, or (in static mode) the global
// allocator is disabled by configuration. In dynamic mode the slice is
// zero-valued; in custom mode it holds whatever AllocFn returned.
func Alloc(size int) ([]byte, status.Code) {
	if size == 0 {
		return nil, status.Ok
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return allocLocked(size)
}

func allocLocked(size int) ([]byte, status.Code) {
	switch mem.mode {
	case config.MemStatic:
		return nil, status.NoMemory
	case config.MemCustom:
		buf := mem.custom.AllocFn(size)
		if buf == nil {
			return nil, status.NoMemory
		}
		trackAllocLocked(bufAddr(buf), int64(size))
		return buf, status.Ok
	default:
		if mem.allocated+int64(size) > mem.capacity {
			return nil, status.NoMemory
		}
		buf := make([]byte, size)
		trackAllocLocked(bufAddr(buf), int64(size))
		return buf, status.Ok
	}
}

func trackAllocLocked(addr uintptr, size int64) {
	mem.outstanding[addr] = size
	mem.allocated += size
	mem.count++
	if mem.allocated > mem.peak {
		mem.peak = mem.allocated
	}
	free := mem.capacity - mem.allocated
	if free < mem.minFree {
		mem.minFree = free
	}
}

// Calloc allocates count*size bytes, already zero-filled. Either
// argument being zero returns nil, Ok.
func Calloc(count, size int) ([]byte, status.Code) {
	if count == 0 || size == 0 {
		return nil, status.Ok
	}
	buf, code := Alloc(count * size)
	for i := range buf {
		buf[i] = 0
	}
	return buf, code
}

// Realloc resizes buf to newSize, preserving min(len(buf), newSize)
// bytes. A nil buf behaves like Alloc; newSize == 0 behaves like Free.
func Realloc(buf []byte, newSize int) ([]byte, status.Code) {
	if buf == nil {
		return Alloc(newSize)
	}
	if newSize == 0 {
		Free(buf)
		return nil, status.Ok
	}
	newBuf, code := Alloc(newSize)
	if code != status.Ok {
		return nil, code
	}
	n := len(buf)
	if newSize < n {
		n = newSize
	}
	copy(newBuf, buf[:n])
	Free(buf)
	return newBuf, status.Ok
}

// AllocAligned returns a size-byte slice whose first byte's address is a
// multiple of alignment, which must be a nonzero power of two.
func AllocAligned(alignment, size int) ([]byte, status.Code) {
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return nil, status.InvalidParam
	}
	if size == 0 {
		return nil, status.Ok
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()

	raw, code := allocLocked(size + alignment - 1)
	if code != status.Ok {
		return nil, code
	}
	// The raw allocation is already tracked against the requested
	// padded size; re-key it under the aligned sub-slice's address so
	// Free(aligned) looks up the same accounting entry.
	rawAddr := bufAddr(raw)
	rawSize := mem.outstanding[rawAddr]
	delete(mem.outstanding, rawAddr)

	addr := rawAddr
	pad := uintptr(0)
	if rem := addr % uintptr(alignment); rem != 0 {
		pad = uintptr(alignment) - rem
	}
	aligned := raw[pad : pad+uintptr(size)]
	mem.outstanding[bufAddr(aligned)] = rawSize
	return aligned, status.Ok
}

// Free releases a slice returned by Alloc/Calloc/Realloc/AllocAligned.
// Freeing nil is a no-op; freeing an unrecognized slice returns
// InvalidParam.
func Free(buf []byte) status.Code {
	if buf == nil {
		return status.Ok
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	addr := bufAddr(buf)
	size, ok := mem.outstanding[addr]
	if !ok {
		return status.InvalidParam
	}
	delete(mem.outstanding, addr)
	mem.allocated -= size
	if mem.count > 0 {
		mem.count--
	}
	if mem.mode == config.MemCustom && mem.custom != nil {
		mem.custom.FreeFn(buf)
	}
	return status.Ok
}

// FreeAligned releases a slice returned by AllocAligned. It is an alias
// of Free: the two exist as distinct entry points because the embedded
// source this was ported from pairs every aligned allocator with its own
// free function.
func FreeAligned(buf []byte) status.Code { return Free(buf) }

// GetMemStats returns the current allocation counters.
func GetMemStats() MemStats {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return MemStats{AllocatedBytes: mem.allocated, AllocCount: mem.count, PeakBytes: mem.peak}
}

// GetFreeSize returns the bytes currently available to the allocator.
func GetFreeSize() int64 {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return mem.capacity - mem.allocated
}

// GetMinFreeSize returns the lowest free-size watermark observed since
// init or the last MemResetStats.
func GetMinFreeSize() int64 {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return mem.minFree
}

// GetAllocationCount returns the number of allocations currently
// outstanding.
func GetAllocationCount() int64 {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return mem.count
}

// MemResetStats pulls the min-free-size watermark up to the current free
// size, mirroring osal.ResetStats for the memory subsystem.
func MemResetStats() {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.minFree = mem.capacity - mem.allocated
}

// CheckIntegrity verifies the outstanding-allocation ledger still sums
// to allocated_bytes. A mismatch indicates the accounting was corrupted
// by use-after-free or a double free that slipped past Free's lookup.
func CheckIntegrity() status.Code {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	var sum int64
	for _, size := range mem.outstanding {
		sum += size
	}
	if sum != mem.allocated {
		return status.Checksum
	}
	return status.Ok
}
