package hal

import (
	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/status"
)

// Get, Put and Reinit against the process-wide DefaultRegistry.
func Get(name string) (Interface, status.Code)          { return DefaultRegistry.Get(name) }
func Put(iface Interface) status.Code                   { return DefaultRegistry.Put(iface) }
func Reinit(d *Descriptor, newConfig any) status.Code   { return DefaultRegistry.Reinit(d, newConfig) }

// Get resolves name, initializing the device on first acquire, and
// returns its capability interface with the reference count
// incremented (spec.md §4.4.2).
func (r *Registry) Get(name string) (Interface, status.Code) {
	d, code := r.Lookup(name)
	if code != status.Ok {
		status.ReportError(status.NotFound, "hal", "device not found: "+name)
		return nil, status.NotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	maxRef := config.Get().MaxRefCount
	if d.refCount >= maxRef {
		return nil, status.NoResource
	}

	if !d.initialized {
		if d.InitFn == nil {
			return nil, status.NotSupported
		}
		if d.DefaultConfig != nil && d.RuntimeConfig != nil && d.ConfigSize > 0 {
			*d.RuntimeConfig = d.DefaultConfig
		}
		iface, initCode := d.InitFn(d)
		d.initResult = initCode
		if iface == nil {
			status.ReportError(status.InvalidState, "hal", "device_init returned null: "+d.Name)
			return nil, initCode
		}

		r.mu.Lock()
		overflow := len(r.byIface) >= r.capacity
		if !overflow {
			r.byIface[iface] = d
		}
		r.mu.Unlock()

		if overflow {
			if d.DeinitFn != nil {
				d.DeinitFn(d)
			}
			return nil, status.NoResource
		}

		d.initialized = true
		d.state = Running
		d.iface = iface
	}

	d.refCount++
	return d.iface, status.Ok
}

// Put releases one reference to the device backing iface, deinitializing
// it once the count reaches zero (spec.md §4.4.3).
func (r *Registry) Put(iface Interface) status.Code {
	r.mu.Lock()
	d, ok := r.byIface[iface]
	r.mu.Unlock()
	if !ok {
		return status.NotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.refCount == 0 {
		return status.InvalidState
	}
	d.refCount--
	if d.refCount > 0 || !d.initialized {
		return status.Ok
	}

	if d.DeinitFn != nil {
		if code := d.DeinitFn(d); code != status.Ok {
			d.refCount++
			return code
		}
	}

	r.mu.Lock()
	delete(r.byIface, iface)
	r.mu.Unlock()

	d.initialized = false
	d.state = Uninitialized
	d.iface = nil
	return status.Ok
}

// Reinit tears a device down and brings it back up with newConfig (or
// the descriptor's default, if newConfig is nil), preserving its
// reference count across the cycle. If device_init fails after the
// teardown, the descriptor is left uninitialized with a zero reference
// count and the error is returned (spec.md §4.4.4).
func (r *Registry) Reinit(d *Descriptor, newConfig any) status.Code {
	if d == nil {
		return status.NullPointer
	}

	d.mu.Lock()
	savedRefCount := d.refCount
	wasInitialized := d.initialized
	iface := d.iface
	d.mu.Unlock()

	if wasInitialized {
		if d.DeinitFn != nil {
			if code := d.DeinitFn(d); code != status.Ok {
				return code
			}
		}
		r.mu.Lock()
		delete(r.byIface, iface)
		r.mu.Unlock()

		d.mu.Lock()
		d.initialized = false
		d.state = Uninitialized
		d.iface = nil
		d.refCount = 0
		d.mu.Unlock()
	}

	d.mu.Lock()
	if newConfig != nil && d.RuntimeConfig != nil {
		*d.RuntimeConfig = newConfig
	} else if d.DefaultConfig != nil && d.RuntimeConfig != nil {
		*d.RuntimeConfig = d.DefaultConfig
	}
	d.mu.Unlock()

	if d.InitFn == nil {
		return status.NotSupported
	}
	newIface, code := d.InitFn(d)
	d.mu.Lock()
	d.initResult = code
	d.mu.Unlock()
	if newIface == nil {
		return code
	}

	r.mu.Lock()
	r.byIface[newIface] = d
	r.mu.Unlock()

	d.mu.Lock()
	d.initialized = true
	d.state = Running
	d.iface = newIface
	d.refCount = savedRefCount
	d.mu.Unlock()
	return status.Ok
}
