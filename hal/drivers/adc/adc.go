// Package adc is a reference ADC driver. Conversion is simulated by a
// caller-settable input function standing in for the sampled voltage;
// ToMillivolts implements the fixed-point linear conversion a real
// successive-approximation ADC's datasheet specifies.
package adc

import (
	"sync"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/hal/drivers/internal/devstate"
	"github.com/gosmicro/hal/status"
)

// Resolution is the ADC's bit width; raw codes range over
// [0, 2^Resolution - 1].
type Resolution int

const (
	Res6  Resolution = 6
	Res8  Resolution = 8
	Res10 Resolution = 10
	Res12 Resolution = 12
)

func (r Resolution) valid() bool {
	switch r {
	case Res6, Res8, Res10, Res12:
		return true
	default:
		return false
	}
}

func (r Resolution) max() uint32 { return (1 << uint(r)) - 1 }

// Source produces the raw code a channel would read back; ReadRaw
// returns NotFound for a channel with no Source attached.
type Source func() uint32

// Driver is a multi-channel ADC.
type Driver struct {
	devstate.State
	Lifecycle  capability.LifecycleBlock
	Power      capability.PowerBlock
	Diagnostic capability.DiagnosticBlock

	mu         sync.Mutex
	name       string
	resolution Resolution
	enabled    bool
	samples    uint64
	sources    map[int]Source
}

// New constructs an ADC at the given resolution, uninitialized.
func New(name string, resolution Resolution) *Driver {
	d := &Driver{name: name, resolution: resolution, sources: make(map[int]Source)}
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
	if !d.resolution.valid() {
		return status.InvalidParam
	}
	d.MarkRunning()
	return status.Ok
}

func (d *Driver) deinitFn() status.Code { d.MarkUninitialized(); return status.Ok }

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
	if len(buf) < 8 {
		return 0, status.InvalidSize
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.samples
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return 8, status.Ok
}

func (d *Driver) clearStatistics() status.Code {
	d.mu.Lock()
	d.samples = 0
	d.mu.Unlock()
	return status.Ok
}

// AttachSource installs the simulated input for channel; it exists
// because this driver has no real sample-and-hold circuit to read.
func (d *Driver) AttachSource(channel int, src Source) {
	d.mu.Lock()
	d.sources[channel] = src
	d.mu.Unlock()
}

// ReadRaw samples channel and returns its code, clamped to
// [0, 2^resolution - 1].
func (d *Driver) ReadRaw(channel int) (uint32, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return 0, code
	}
	d.mu.Lock()
	src, ok := d.sources[channel]
	max := d.resolution.max()
	d.mu.Unlock()
	if !ok {
		return 0, status.NotFound
	}
	raw := src()
	if raw > max {
		raw = max
	}
	d.mu.Lock()
	d.samples++
	d.mu.Unlock()
	return raw, status.Ok
}

// ToMillivolts converts a raw code to millivolts against vrefMv using
// raw * vrefMv / (2^resolution - 1), truncated toward zero.
func (d *Driver) ToMillivolts(raw uint32, vrefMv uint32) (uint32, status.Code) {
	if !d.resolution.valid() {
		return 0, status.InvalidState
	}
	max := d.resolution.max()
	if raw > max {
		return 0, status.InvalidParam
	}
	return uint32((uint64(raw) * uint64(vrefMv)) / uint64(max)), status.Ok
}
