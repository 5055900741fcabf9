package i2c

import (
	"github.com/gosmicro/hal/hal"
	"github.com/gosmicro/hal/status"
)

// NewDescriptor builds an I2C master driver and the hal.Descriptor that
// brings it up under the registry's reference-counted lifecycle.
func NewDescriptor(name string, speedHz uint32) (*Driver, *hal.Descriptor) {
	d := New(name, speedHz)
	desc := &hal.Descriptor{
		Name: name,
		InitFn: func(*hal.Descriptor) (hal.Interface, status.Code) {
			if code := d.Lifecycle.Init(); code != status.Ok {
				return nil, code
			}
			return d, status.Ok
		},
		DeinitFn:  func(*hal.Descriptor) status.Code { return d.Lifecycle.Deinit() },
		SuspendFn: func(*hal.Descriptor) status.Code { return d.Lifecycle.Suspend() },
		ResumeFn:  func(*hal.Descriptor) status.Code { return d.Lifecycle.Resume() },
	}
	return d, desc
}
