// Package spi is a reference SPI master driver: chip-select state and
// clock/mode configuration are tracked in software, and a Transfer
// loops the transmitted bytes back into the receive buffer unless a
// Responder is installed, grounded on the teacher's in-memory mock
// backend style of standing in for a real bus.
package spi

import (
	"sync"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/hal/drivers/internal/devstate"
	"github.com/gosmicro/hal/osal"
	"github.com/gosmicro/hal/status"
)

// Mode selects clock polarity/phase, 0 through 3.
type Mode int

const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

// Responder computes the bytes a slave would clock out in response to
// tx. A nil Responder loops tx back unchanged.
type Responder func(tx []byte) []byte

// Driver is a single-chip-select SPI master.
type Driver struct {
	devstate.State
	Lifecycle  capability.LifecycleBlock
	Power      capability.PowerBlock
	Diagnostic capability.DiagnosticBlock

	bus *osal.Mutex

	mu         sync.Mutex
	name       string
	clockHz    uint32
	mode       Mode
	csAsserted bool
	enabled    bool
	transfers  uint64
	Responder  Responder
}

// New constructs an SPI master at the given default clock, uninitialized.
func New(name string, clockHz uint32) *Driver {
	d := &Driver{name: name, clockHz: clockHz, bus: osal.MutexCreate()}
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

func (d *Driver) initFn() status.Code   { d.MarkRunning(); return status.Ok }
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
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.csAsserted {
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
	v := d.transfers
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return 8, status.Ok
}

func (d *Driver) clearStatistics() status.Code {
	d.mu.Lock()
	d.transfers = 0
	d.mu.Unlock()
	return status.Ok
}

// SetClock reprograms the bus clock.
func (d *Driver) SetClock(hz uint32) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.clockHz = hz
	d.mu.Unlock()
	return status.Ok
}

// SetMode reprograms clock polarity/phase.
func (d *Driver) SetMode(mode Mode) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	if mode < Mode0 || mode > Mode3 {
		return status.InvalidParam
	}
	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()
	return status.Ok
}

// Lock acquires exclusive use of the bus for a multi-transfer sequence.
func (d *Driver) Lock(timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	return d.bus.Lock(timeoutMs)
}

// Unlock releases the bus.
func (d *Driver) Unlock() status.Code {
	return d.bus.Unlock()
}

// CSSelect asserts chip select.
func (d *Driver) CSSelect() status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.csAsserted = true
	d.mu.Unlock()
	return status.Ok
}

// CSDeselect deasserts chip select.
func (d *Driver) CSDeselect() status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.csAsserted = false
	d.mu.Unlock()
	return status.Ok
}

// Transfer clocks out tx while clocking in rx, full duplex. len(tx) and
// len(rx) must match; timeoutMs is accepted for interface symmetry with
// a real bus driver's busy-wait but this implementation never blocks.
func (d *Driver) Transfer(tx, rx []byte, timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	if len(tx) != len(rx) {
		return status.InvalidSize
	}
	d.mu.Lock()
	asserted := d.csAsserted
	responder := d.Responder
	d.mu.Unlock()
	if !asserted {
		return status.InvalidState
	}
	var reply []byte
	if responder != nil {
		reply = responder(tx)
	} else {
		reply = tx
	}
	n := copy(rx, reply)
	for ; n < len(rx); n++ {
		rx[n] = 0
	}
	d.mu.Lock()
	d.transfers++
	d.mu.Unlock()
	return status.Ok
}

// Transmit is a half-duplex, receive-discarding Transfer.
func (d *Driver) Transmit(tx []byte, timeoutMs int64) status.Code {
	return d.Transfer(tx, make([]byte, len(tx)), timeoutMs)
}

// Receive is a half-duplex, transmit-as-zero Transfer.
func (d *Driver) Receive(rx []byte, timeoutMs int64) status.Code {
	return d.Transfer(make([]byte, len(rx)), rx, timeoutMs)
}
