// Package i2c is a reference I2C master driver backed by an in-memory
// map of simulated slave devices, grounded on the teacher's in-memory
// mock backend style: each address owns a byte-addressable memory of
// its own, giving MemWrite/MemRead something real to exercise.
package i2c

import (
	"sync"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/hal/drivers/internal/devstate"
	"github.com/gosmicro/hal/status"
)

// Slave is a simulated I2C slave device: a flat byte-addressable memory
// plus an optional Transmit/Receive pair for non-memory protocols.
type Slave struct {
	Memory   []byte
	Transmit func(data []byte) status.Code
	Receive  func(buf []byte) (int, status.Code)
}

// Driver is an I2C master bus.
type Driver struct {
	devstate.State
	Lifecycle  capability.LifecycleBlock
	Power      capability.PowerBlock
	Diagnostic capability.DiagnosticBlock

	mu          sync.Mutex
	name        string
	speedHz     uint32
	enabled     bool
	transfers   uint64
	slaves      map[uint8]*Slave
}

// New constructs an I2C master bus at the given default speed,
// uninitialized.
func New(name string, speedHz uint32) *Driver {
	d := &Driver{name: name, speedHz: speedHz, slaves: make(map[uint8]*Slave)}
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

// SetSpeed reprograms the bus clock.
func (d *Driver) SetSpeed(hz uint32) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	d.mu.Lock()
	d.speedHz = hz
	d.mu.Unlock()
	return status.Ok
}

// AttachSlave installs a simulated slave at addr, replacing any
// previous occupant. It exists because this driver has no real bus to
// discover slaves on.
func (d *Driver) AttachSlave(addr uint8, s *Slave) {
	d.mu.Lock()
	d.slaves[addr] = s
	d.mu.Unlock()
}

func (d *Driver) slaveAt(addr uint8) (*Slave, status.Code) {
	d.mu.Lock()
	s, ok := d.slaves[addr]
	d.mu.Unlock()
	if !ok {
		return nil, status.NotFound
	}
	return s, status.Ok
}

// Probe reports Ok if a slave answers at addr, NotFound otherwise.
func (d *Driver) Probe(addr uint8, timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	_, code := d.slaveAt(addr)
	return code
}

// Scan probes every address in [0, 0x7F] and writes the responding ones
// into found, up to max entries, returning the count found.
func (d *Driver) Scan(found []uint8, max int) (int, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return 0, code
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for addr := uint8(0); addr < 0x80 && n < max; addr++ {
		if _, ok := d.slaves[addr]; ok {
			found[n] = addr
			n++
		}
	}
	return n, status.Ok
}

// MasterTransmit writes data to the slave at addr.
func (d *Driver) MasterTransmit(addr uint8, data []byte, timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	s, code := d.slaveAt(addr)
	if code != status.Ok {
		return code
	}
	if s.Transmit != nil {
		code = s.Transmit(data)
	} else {
		code = d.memWrite(s, 0, 1, data)
	}
	if code == status.Ok {
		d.mu.Lock()
		d.transfers++
		d.mu.Unlock()
	}
	return code
}

// MasterReceive reads len(buf) bytes from the slave at addr.
func (d *Driver) MasterReceive(addr uint8, buf []byte, timeoutMs int64) (int, status.Code) {
	if code := d.Guard(); code != status.Ok {
		return 0, code
	}
	s, code := d.slaveAt(addr)
	if code != status.Ok {
		return 0, code
	}
	var n int
	if s.Receive != nil {
		n, code = s.Receive(buf)
	} else {
		n, code = d.memRead(s, 0, 1, buf)
	}
	if code == status.Ok {
		d.mu.Lock()
		d.transfers++
		d.mu.Unlock()
	}
	return n, code
}

// MemWrite writes data into the slave's simulated memory starting at
// memAddr, memAddrSize bytes wide (1 or 2).
func (d *Driver) MemWrite(addr uint8, memAddr uint16, memAddrSize int, data []byte, timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	s, code := d.slaveAt(addr)
	if code != status.Ok {
		return code
	}
	code = d.memWrite(s, memAddr, memAddrSize, data)
	if code == status.Ok {
		d.mu.Lock()
		d.transfers++
		d.mu.Unlock()
	}
	return code
}

// MemRead reads len(buf) bytes from the slave's simulated memory
// starting at memAddr.
func (d *Driver) MemRead(addr uint8, memAddr uint16, memAddrSize int, buf []byte, timeoutMs int64) status.Code {
	if code := d.Guard(); code != status.Ok {
		return code
	}
	s, code := d.slaveAt(addr)
	if code != status.Ok {
		return code
	}
	_, code = d.memRead(s, memAddr, memAddrSize, buf)
	if code == status.Ok {
		d.mu.Lock()
		d.transfers++
		d.mu.Unlock()
	}
	return code
}

func (d *Driver) memWrite(s *Slave, memAddr uint16, memAddrSize int, data []byte) status.Code {
	if memAddrSize != 1 && memAddrSize != 2 {
		return status.InvalidParam
	}
	end := int(memAddr) + len(data)
	if end > len(s.Memory) {
		return status.InvalidParam
	}
	copy(s.Memory[memAddr:end], data)
	return status.Ok
}

func (d *Driver) memRead(s *Slave, memAddr uint16, memAddrSize int, buf []byte) (int, status.Code) {
	if memAddrSize != 1 && memAddrSize != 2 {
		return 0, status.InvalidParam
	}
	end := int(memAddr) + len(buf)
	if end > len(s.Memory) {
		return 0, status.InvalidParam
	}
	n := copy(buf, s.Memory[memAddr:end])
	return n, status.Ok
}
