// Package hal implements the device registry and reference-counted
// lifecycle engine described in spec.md §4.4: devices are declared
// statically, looked up by name, and brought up on demand under
// reference counting.
package hal

import (
	"sync"

	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/internal/logging"
	"github.com/gosmicro/hal/status"
)

var log = logging.Default().With("hal")

// DeviceState is a descriptor's lifecycle state.
type DeviceState int

const (
	Uninitialized DeviceState = iota
	Running
	Suspended
)

// Interface is the capability interface pointer a driver's InitFn
// returns. Concrete capability types live in hal/capability; the
// registry only needs identity (for the interface→descriptor map), not
// the concrete shape.
type Interface any

// InitFunc brings a device up and returns its capability interface.
type InitFunc func(d *Descriptor) (Interface, status.Code)

// DeinitFunc, SuspendFunc and ResumeFunc drive the remaining lifecycle
// transitions.
type DeinitFunc func(d *Descriptor) status.Code
type SuspendFunc func(d *Descriptor) status.Code
type ResumeFunc func(d *Descriptor) status.Code

// Descriptor is a statically declared device (spec.md §3). Its identity
// fields (Name, hooks, configs) never change after Register; its
// mutable state block does.
type Descriptor struct {
	Name          string
	DefaultConfig any
	RuntimeConfig *any
	ConfigSize    int

	InitFn    InitFunc
	DeinitFn  DeinitFunc
	SuspendFn SuspendFunc
	ResumeFn  ResumeFunc

	mu          sync.Mutex
	initialized bool
	state       DeviceState
	refCount    uint8
	initResult  status.Code
	iface       Interface
}

// State returns the descriptor's current lifecycle state.
func (d *Descriptor) State() DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// RefCount returns the descriptor's current reference count.
func (d *Descriptor) RefCount() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refCount
}

// InitResult returns the status code from the descriptor's most recent
// device_init attempt.
func (d *Descriptor) InitResult() status.Code {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initResult
}

// Registry is a name-keyed, capacity-bounded set of device descriptors
// with ordered enumeration matching declaration order.
type Registry struct {
	mu       sync.Mutex
	capacity int
	byName   map[string]*Descriptor
	order    []*Descriptor
	byIface  map[Interface]*Descriptor
}

// NewRegistry allocates a registry with room for capacity devices.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		byName:   make(map[string]*Descriptor, capacity),
		byIface:  make(map[Interface]*Descriptor),
	}
}

// DefaultRegistry is the process-wide registry sized from
// internal/config, the one hal.Register/Get/Put use unless a driver
// constructs its own for testing.
var DefaultRegistry = NewRegistry(config.Get().MaxDevices)

// Register adds d to the registry. Duplicate names return AlreadyInit; a
// full registry returns NoResource; a nil name returns NullPointer.
func (r *Registry) Register(d *Descriptor) status.Code {
	if d == nil || d.Name == "" {
		return status.NullPointer
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; exists {
		return status.AlreadyInit
	}
	if len(r.order) >= r.capacity {
		return status.NoResource
	}
	d.state = Uninitialized
	d.initialized = false
	d.refCount = 0
	d.initResult = status.Ok
	r.byName[d.Name] = d
	r.order = append(r.order, d)
	log.Debug("device registered", "name", d.Name)
	return status.Ok
}

// Lookup resolves a descriptor by name.
func (r *Registry) Lookup(name string) (*Descriptor, status.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[name]
	if !ok {
		return nil, status.NotFound
	}
	return d, status.Ok
}

// InitAll walks the registry in declaration order, calling Get on every
// descriptor not yet initialized. Per-device failures are recorded but
// do not abort the sweep. It returns the first error encountered (the
// earliest failure in declaration order is the most actionable one to
// report, since later failures are often downstream of it), or Ok if
// every device came up.
func (r *Registry) InitAll() status.Code {
	r.mu.Lock()
	devices := append([]*Descriptor(nil), r.order...)
	r.mu.Unlock()

	worst := status.Ok
	for _, d := range devices {
		d.mu.Lock()
		initialized := d.initialized
		d.mu.Unlock()
		if initialized {
			continue
		}
		if _, code := r.Get(d.Name); code != status.Ok {
			log.Warn("device init failed during InitAll", "name", d.Name, "code", code.String())
			if worst == status.Ok {
				worst = code
			}
		}
	}
	return worst
}

// DeinitAll walks the registry in reverse declaration order, releasing
// every descriptor still initialized down to a zero ref count. Per-device
// failures are recorded but do not abort the sweep.
func (r *Registry) DeinitAll() status.Code {
	r.mu.Lock()
	devices := append([]*Descriptor(nil), r.order...)
	r.mu.Unlock()

	worst := status.Ok
	for i := len(devices) - 1; i >= 0; i-- {
		d := devices[i]
		d.mu.Lock()
		iface := d.iface
		initialized := d.initialized
		d.mu.Unlock()
		if !initialized {
			continue
		}
		for d.RefCount() > 0 {
			if code := r.Put(iface); code != status.Ok {
				log.Warn("device deinit failed during DeinitAll", "name", d.Name, "code", code.String())
				if worst == status.Ok {
					worst = code
				}
				break
			}
		}
	}
	return worst
}

// SuspendAll walks the registry in declaration order, suspending every
// initialized, running descriptor via its SuspendFn. Per-device failures
// are recorded but do not abort the sweep.
func (r *Registry) SuspendAll() status.Code {
	r.mu.Lock()
	devices := append([]*Descriptor(nil), r.order...)
	r.mu.Unlock()

	worst := status.Ok
	for _, d := range devices {
		d.mu.Lock()
		eligible := d.initialized && d.state == Running && d.SuspendFn != nil
		d.mu.Unlock()
		if !eligible {
			continue
		}
		if code := d.SuspendFn(d); code != status.Ok {
			log.Warn("device suspend failed during SuspendAll", "name", d.Name, "code", code.String())
			if worst == status.Ok {
				worst = code
			}
			continue
		}
		d.mu.Lock()
		d.state = Suspended
		d.mu.Unlock()
	}
	return worst
}

// ResumeAll walks the registry in declaration order, resuming every
// suspended descriptor via its ResumeFn. Per-device failures are
// recorded but do not abort the sweep.
func (r *Registry) ResumeAll() status.Code {
	r.mu.Lock()
	devices := append([]*Descriptor(nil), r.order...)
	r.mu.Unlock()

	worst := status.Ok
	for _, d := range devices {
		d.mu.Lock()
		eligible := d.initialized && d.state == Suspended && d.ResumeFn != nil
		d.mu.Unlock()
		if !eligible {
			continue
		}
		if code := d.ResumeFn(d); code != status.Ok {
			log.Warn("device resume failed during ResumeAll", "name", d.Name, "code", code.String())
			if worst == status.Ok {
				worst = code
			}
			continue
		}
		d.mu.Lock()
		d.state = Running
		d.mu.Unlock()
	}
	return worst
}

// Register, Lookup, InitAll, DeinitAll, SuspendAll and ResumeAll against
// the process-wide DefaultRegistry.
func Register(d *Descriptor) status.Code            { return DefaultRegistry.Register(d) }
func Lookup(name string) (*Descriptor, status.Code) { return DefaultRegistry.Lookup(name) }
func InitAll() status.Code                          { return DefaultRegistry.InitAll() }
func DeinitAll() status.Code                         { return DefaultRegistry.DeinitAll() }
func SuspendAll() status.Code                        { return DefaultRegistry.SuspendAll() }
func ResumeAll() status.Code                         { return DefaultRegistry.ResumeAll() }
