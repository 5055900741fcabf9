// Package flash is a reference flash memory driver: a byte slice
// standing in for the physical array, erased to a configurable pattern
// the way a real NOR part erases to 0xFF, grounded on the teacher's
// in-memory mock backend pattern.
package flash

import (
	"sync"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/hal/drivers/internal/devstate"
	"github.com/gosmicro/hal/status"
)

// Geometry describes the erase granularity of the simulated part.
type Geometry struct {
	TotalSize  int
	PageSize   int
	SectorSize int
	// ErasedByte is the value erased cells read back as. New treats
	// zero as "use the default" and substitutes 0xFF, so 0x00 cannot be
	// selected as the erased value.
	ErasedByte byte
}

// Driver is a byte-addressable flash array with page/sector erase.
type Driver struct {
	devstate.State
	Lifecycle  capability.LifecycleBlock
	Power      capability.PowerBlock
	Diagnostic capability.DiagnosticBlock

	mu             sync.Mutex
	name           string
	geometry       Geometry
	storage        []byte
	enabled        bool
	erases         uint64
	writes         uint64
	optionBytes    uint32
	pendingOptions uint32
	optionsPending bool
}

// New constructs a flash driver over geometry, uninitialized. Storage
// is allocated (and erased) on Init.
func New(name string, geometry Geometry) *Driver {
	if geometry.ErasedByte == 0 {
		geometry.ErasedByte = 0xFF
	}
	d := &Driver{name: name, geometry: geometry}
	d.Lifecycle = capability.LifecycleBlock{
		Init:     d.initFn,
		Deinit:   d.deinitFn,
		Suspend:  d.Suspend,
		Resume:   d.Resume,
		GetState: d.Get,
	}
	d.Power = capability.PowerBlock{
		Enable:    d.enable,
		Disable:   d.disable,
		IsEnabled: d.isEnabled,
	}
	d.Diagnostic = capability.DiagnosticBlock{
		GetStatus:       d.getStatus,
		GetStatistics:   d.getStatistics,
		ClearStatistics: d.clearStatistics,
	}
	return d
}

func (d *Driver) initFn() status.Code {
	if d.geometry.TotalSize <= 0 || d.geometry.PageSize <= 0 || d.geometry.SectorSize <= 0 {
		return status.InvalidParam
	}
	d.mu.Lock()
	d.storage = make([]byte, d.geometry.TotalSize)
	for i := range d.storage {
		d.storage[i] = d.geometry.ErasedByte
	}
	d.mu.Unlock()
	d.MarkRunning()
	return status.Ok
}

func (d *Driver) deinitFn() status.Code {
	d.mu.Lock()
	d.storage = nil
	d.mu.Unlock()
	d.MarkUninitialized()
	return status.Ok
}

func (d *Driver) enable() status.Code {
	d.mu.Lock()
	d.enabled = true
	d.mu.Unlock()
	return status.Ok
}

func (d *Driver) disable() status.Code {
	d.mu.Lock()
	d.enabled = false
	d.mu.Unlock()
	return status.Ok
}

func (d *Driver) isEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

func (d *Driver) getStatus(buf []byte) (int, status.Code) {
	if len(buf) < 1 {
		return 0, status.InvalidSize
	}
	if d.isEnabled() {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	return 1, status.Ok
}

func (d *Driver) getStatistics(buf []byte) (int, status.Code) {
	if len(buf) < 16 {
		return 0, status.InvalidSize
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	putU64(buf[0:8], d.erases)
	putU64(buf[8:16], d.writes)
	return 16, status.Ok
}

func (d *Driver) clearStatistics() status.Code {
	d.mu.Lock()
	d.erases, d.writes = 0, 0
	d.mu.Unlock()
	return status.Ok
}

func putU64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

func (d *Driver) eraseRange(offset, size int) status.Code {
	if offset < 0 || size <= 0 || offset+size > len(d.storage) {
		return status.InvalidParam
	}
	for i := offset; i < offset+size; i++ {
		d.storage[i] = d.geometry.ErasedByte
	}
	d.erases++
	return status.Ok
}

// ErasePage erases the page containing offset.
func (d *Driver) ErasePage(offset int) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	pageStart := (offset / d.geometry.PageSize) * d.geometry.PageSize
	return d.eraseRange(pageStart, d.geometry.PageSize)
}

// EraseSector erases the sector containing offset.
func (d *Driver) EraseSector(offset int) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	sectorStart := (offset / d.geometry.SectorSize) * d.geometry.SectorSize
	return d.eraseRange(sectorStart, d.geometry.SectorSize)
}

// Write programs data at offset. Programming only clears bits (mirrors
// NOR flash: it ANDs the new bytes against existing content rather than
// overwriting), so a prior Erase is required to set a region back to
// all-ones before Writing unrelated data.
func (d *Driver) Write(offset int, data []byte) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if offset < 0 || offset+len(data) > len(d.storage) {
		return status.InvalidParam
	}
	for i, b := range data {
		d.storage[offset+i] &= b
	}
	d.writes++
	return status.Ok
}

// ReadOptionBytes returns the currently committed option-byte word.
func (d *Driver) ReadOptionBytes() (uint32, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return 0, code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.optionBytes, status.Ok
}

// ProgramOptionBytes stages value for commit; it does not take effect
// until Verify, mirroring a real part that latches option bytes only
// across a reset/verify cycle.
func (d *Driver) ProgramOptionBytes(value uint32) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.pendingOptions = value
	d.optionsPending = true
	d.mu.Unlock()
	return status.Ok
}

// VerifyOptionBytes commits a staged ProgramOptionBytes write and
// reports whether a change was pending. If nothing was pending it
// returns false, status.Ok: verifying is always safe to call.
func (d *Driver) VerifyOptionBytes() (bool, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return false, code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.optionsPending {
		return false, status.Ok
	}
	d.optionBytes = d.pendingOptions
	d.optionsPending = false
	return true, status.Ok
}

// HasPendingOptionBytes reports whether a ProgramOptionBytes write is
// staged but not yet committed by Verify.
func (d *Driver) HasPendingOptionBytes() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.optionsPending
}

// Read copies len(buf) bytes starting at offset into buf.
func (d *Driver) Read(offset int, buf []byte) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if offset < 0 || offset+len(buf) > len(d.storage) {
		return status.InvalidParam
	}
	copy(buf, d.storage[offset:offset+len(buf)])
	return status.Ok
}
