// Package gpio is a reference GPIO driver: an in-memory pin array with
// software-simulated edge events, grounded on the teacher's in-memory
// mock backend pattern (no real hardware access, but the same read-back
// semantics a register-backed implementation would present).
package gpio

import (
	"sync"
	"unsafe"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/hal/drivers/internal/devstate"
	"github.com/gosmicro/hal/status"
)

// Trigger selects which pin transitions an event listener observes.
type Trigger int

const (
	TriggerRising Trigger = iota
	TriggerFalling
	TriggerBoth
)

// EventCallback is invoked (synchronously, by Write, Toggle or
// SimulateEdge) when a pin transitions in a direction matching a
// registered Trigger.
type EventCallback func(pin int, level bool, ctx any)

type listener struct {
	trigger Trigger
	cb      EventCallback
	ctx     any
}

// Driver is a fixed-width bank of software GPIO pins.
type Driver struct {
	devstate.State
	Lifecycle  capability.LifecycleBlock
	Power      capability.PowerBlock
	Diagnostic capability.DiagnosticBlock

	mu        sync.Mutex
	name      string
	levels    []bool
	listeners map[int][]listener
	enabled   bool
	reads     uint64
	writes    uint64
}

var probe Driver
var diagnosticOffset = capability.OffsetOf(unsafe.Pointer(&probe), unsafe.Pointer(&probe.Diagnostic))

// OwnerOf recovers the Driver that owns a capability.DiagnosticBlock
// pointer, e.g. one pulled out of a heterogeneous diagnostics sweep that
// only has []*capability.DiagnosticBlock to work with.
func OwnerOf(d *capability.DiagnosticBlock) *Driver {
	return capability.RecoverOwner[Driver](unsafe.Pointer(d), diagnosticOffset)
}

// New constructs a pinCount-wide GPIO driver, uninitialized.
func New(name string, pinCount int) *Driver {
	d := &Driver{
		name:      name,
		levels:    make([]bool, pinCount),
		listeners: make(map[int][]listener),
	}
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
	d.MarkRunning()
	return status.Ok
}

func (d *Driver) deinitFn() status.Code {
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
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.enabled {
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
	putU64(buf[0:8], d.reads)
	putU64(buf[8:16], d.writes)
	return 16, status.Ok
}

func (d *Driver) clearStatistics() status.Code {
	d.mu.Lock()
	d.reads, d.writes = 0, 0
	d.mu.Unlock()
	return status.Ok
}

func putU64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

func (d *Driver) pinValid(pin int) bool { return pin >= 0 && pin < len(d.levels) }

// Read returns pin's current logic level.
func (d *Driver) Read(pin int) (bool, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return false, code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pinValid(pin) {
		return false, status.InvalidParam
	}
	d.reads++
	return d.levels[pin], status.Ok
}

// Write sets pin's logic level.
func (d *Driver) Write(pin int, level bool) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	if !d.pinValid(pin) {
		d.mu.Unlock()
		return status.InvalidParam
	}
	changed := d.levels[pin] != level
	d.levels[pin] = level
	d.writes++
	d.mu.Unlock()
	if changed {
		d.fireEvents(pin, level)
	}
	return status.Ok
}

// Toggle inverts pin's logic level.
func (d *Driver) Toggle(pin int) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	if !d.pinValid(pin) {
		d.mu.Unlock()
		return status.InvalidParam
	}
	d.levels[pin] = !d.levels[pin]
	newLevel := d.levels[pin]
	d.writes++
	d.mu.Unlock()
	d.fireEvents(pin, newLevel)
	return status.Ok
}

// RegisterEvent arms cb to fire on every transition of pin matching
// trigger, whether it comes from Write, Toggle or SimulateEdge.
func (d *Driver) RegisterEvent(pin int, trigger Trigger, cb EventCallback, ctx any) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	if cb == nil {
		return status.NullPointer
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pinValid(pin) {
		return status.InvalidParam
	}
	d.listeners[pin] = append(d.listeners[pin], listener{trigger: trigger, cb: cb, ctx: ctx})
	return status.Ok
}

// SimulateEdge drives pin to level and fires any matching listeners;
// it exists because this driver has no real interrupt controller to
// source edges from.
func (d *Driver) SimulateEdge(pin int, level bool) status.Code {
	return d.Write(pin, level)
}

func (d *Driver) fireEvents(pin int, level bool) {
	d.mu.Lock()
	ls := append([]listener(nil), d.listeners[pin]...)
	d.mu.Unlock()
	for _, l := range ls {
		matches := l.trigger == TriggerBoth ||
			(l.trigger == TriggerRising && level) ||
			(l.trigger == TriggerFalling && !level)
		if matches {
			l.cb(pin, level, l.ctx)
		}
	}
}
