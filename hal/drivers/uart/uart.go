// Package uart is a reference UART driver: a software byte FIFO standing
// in for the hardware shift register, grounded on osal.Queue for the
// blocking receive semantics a real UART's RX interrupt would provide.
// Driver implements transport.TxSync/RxSync directly; async Send/Receive
// are obtained by wrapping a Driver in hal/adapter's TxSyncToAsync and
// RxSyncToAsync rather than duplicating the state machine here.
package uart

import (
	"sync"
	"time"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/hal/drivers/internal/devstate"
	"github.com/gosmicro/hal/osal"
	"github.com/gosmicro/hal/status"
)

func msDuration(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }

const rxQueueCapacity = 256

// Driver is a byte-oriented UART implementing transport.TxSync and
// transport.RxSync over an internal RX FIFO. Sent bytes are delivered
// to Loopback (by default the driver's own RX queue) so tests and
// composed drivers can observe traffic without real wiring.
type Driver struct {
	devstate.State
	Lifecycle  capability.LifecycleBlock
	Power      capability.PowerBlock
	Diagnostic capability.DiagnosticBlock

	mu        sync.Mutex
	name      string
	baud      uint32
	rx        *osal.Queue
	enabled   bool
	txBytes   uint64
	rxBytes   uint64
	// Loopback receives every byte passed to Send, one osal.Queue.Send
	// call per byte; the zero value loops a driver back to its own rx
	// queue, matching a UART with TX/RX shorted together.
	Loopback *osal.Queue
}

// New constructs a UART at the given default baud rate, uninitialized.
func New(name string, baud uint32) *Driver {
	d := &Driver{name: name, baud: baud}
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
	rx, code := osal.QueueCreate(rxQueueCapacity, 1, osal.QueueNormal)
	if code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.rx = rx
	if d.Loopback == nil {
		d.Loopback = rx
	}
	d.mu.Unlock()
	d.MarkRunning()
	return status.Ok
}

func (d *Driver) deinitFn() status.Code {
	d.mu.Lock()
	if d.rx != nil {
		if d.Loopback == d.rx {
			d.Loopback = nil
		}
		d.rx.Delete()
		d.rx = nil
	}
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
	putU64(buf[0:8], d.txBytes)
	putU64(buf[8:16], d.rxBytes)
	return 16, status.Ok
}

func (d *Driver) clearStatistics() status.Code {
	d.mu.Lock()
	d.txBytes, d.rxBytes = 0, 0
	d.mu.Unlock()
	return status.Ok
}

func putU64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// SetBaud reconfigures the baud rate; takes effect immediately since
// this driver has no real clock divider to reprogram.
func (d *Driver) SetBaud(baud uint32) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.baud = baud
	d.mu.Unlock()
	return status.Ok
}

// Send implements transport.TxSync, pushing each byte of data onto
// Loopback in order. timeoutMs bounds the whole call, not each byte.
func (d *Driver) Send(data []byte, timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	loop := d.Loopback
	d.mu.Unlock()
	if loop == nil {
		return status.NotInitialized
	}
	hasDeadline := timeoutMs != osal.WaitForever
	deadline := osal.Now().Add(msDuration(timeoutMs))
	for _, b := range data {
		remaining := osal.WaitForever
		if hasDeadline {
			remaining = deadline.Sub(osal.Now()).Milliseconds()
			if remaining < 0 {
				remaining = 0
			}
		}
		if code := loop.Send([]byte{b}, remaining); code != status.Ok {
			return code
		}
	}
	d.mu.Lock()
	d.txBytes += uint64(len(data))
	d.mu.Unlock()
	return status.Ok
}

// Receive implements transport.RxSync, reading up to len(buf) bytes
// from the RX FIFO, returning as soon as at least one byte is read.
func (d *Driver) Receive(buf []byte, timeoutMs int64) (int, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return 0, code
	}
	d.mu.Lock()
	rx := d.rx
	d.mu.Unlock()
	if rx == nil {
		return 0, status.NotInitialized
	}
	n := 0
	for n < len(buf) {
		one := make([]byte, 1)
		code := rx.Receive(one, osal.NoWait)
		if code != status.Ok {
			break
		}
		buf[n] = one[0]
		n++
	}
	if n > 0 {
		d.mu.Lock()
		d.rxBytes += uint64(n)
		d.mu.Unlock()
		return n, status.Ok
	}
	one := make([]byte, 1)
	if code := rx.Receive(one, timeoutMs); code != status.Ok {
		// transport.RxSync reports an empty NoWait read as Timeout, not
		// the rx queue's own Empty, so callers see one contract
		// regardless of what backs the driver.
		if code == status.Empty {
			return 0, status.Timeout
		}
		return 0, code
	}
	buf[0] = one[0]
	d.mu.Lock()
	d.rxBytes++
	d.mu.Unlock()
	return 1, status.Ok
}

// ReceiveAll implements transport.RxSync, blocking until buf is
// completely filled or timeoutMs elapses.
func (d *Driver) ReceiveAll(buf []byte, timeoutMs int64) (int, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return 0, code
	}
	d.mu.Lock()
	rx := d.rx
	d.mu.Unlock()
	if rx == nil {
		return 0, status.NotInitialized
	}
	deadline := osal.Now()
	hasDeadline := timeoutMs != osal.WaitForever
	if hasDeadline {
		deadline = osal.Now().Add(msDuration(timeoutMs))
	}
	total := 0
	for total < len(buf) {
		remaining := osal.WaitForever
		if hasDeadline {
			remaining = deadline.Sub(osal.Now()).Milliseconds()
			if remaining < 0 {
				remaining = 0
			}
		}
		one := buf[total : total+1]
		if code := rx.Receive(one, remaining); code != status.Ok {
			d.mu.Lock()
			d.rxBytes += uint64(total)
			d.mu.Unlock()
			return total, status.Timeout
		}
		total++
	}
	d.mu.Lock()
	d.rxBytes += uint64(total)
	d.mu.Unlock()
	return total, status.Ok
}
