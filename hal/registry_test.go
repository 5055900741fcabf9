package hal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/status"
)

func fakeDescriptor(name string, initOk bool) *Descriptor {
	return &Descriptor{
		Name: name,
		InitFn: func(d *Descriptor) (Interface, status.Code) {
			if !initOk {
				return nil, status.IOError
			}
			return &struct{ name string }{name: d.Name}, status.Ok
		},
		DeinitFn: func(d *Descriptor) status.Code { return status.Ok },
	}
}

func TestRegisterRejectsNilAndDuplicates(t *testing.T) {
	r := NewRegistry(4)
	require.Equal(t, status.NullPointer, r.Register(&Descriptor{}))

	d := fakeDescriptor("uart0", true)
	require.Equal(t, status.Ok, r.Register(d))
	require.Equal(t, status.AlreadyInit, r.Register(fakeDescriptor("uart0", true)))
}

func TestRegisterRejectsWhenFull(t *testing.T) {
	r := NewRegistry(1)
	require.Equal(t, status.Ok, r.Register(fakeDescriptor("a", true)))
	require.Equal(t, status.NoResource, r.Register(fakeDescriptor("b", true)))
}

func TestLookupUnknownNameIsNotFound(t *testing.T) {
	r := NewRegistry(4)
	_, code := r.Lookup("missing")
	require.Equal(t, status.NotFound, code)
}

func TestGetInitializesOnFirstAcquireAndIncrementsRefCount(t *testing.T) {
	r := NewRegistry(4)
	d := fakeDescriptor("spi0", true)
	r.Register(d)

	iface, code := r.Get("spi0")
	require.Equal(t, status.Ok, code)
	require.NotNil(t, iface)
	require.Equal(t, Running, d.State())
	require.EqualValues(t, 1, d.RefCount())

	iface2, code := r.Get("spi0")
	require.Equal(t, status.Ok, code)
	require.Same(t, iface, iface2)
	require.EqualValues(t, 2, d.RefCount())
}

func TestGetReportsNotFoundForUnknownDevice(t *testing.T) {
	r := NewRegistry(4)
	_, code := r.Get("ghost")
	require.Equal(t, status.NotFound, code)
}

func TestGetPropagatesInitFailure(t *testing.T) {
	r := NewRegistry(4)
	d := fakeDescriptor("i2c0", false)
	r.Register(d)
	_, code := r.Get("i2c0")
	require.Equal(t, status.IOError, code)
	require.Equal(t, Uninitialized, d.State())
}

func TestGetRejectsNoInitFnAsNotSupported(t *testing.T) {
	r := NewRegistry(4)
	d := &Descriptor{Name: "bare"}
	r.Register(d)
	_, code := r.Get("bare")
	require.Equal(t, status.NotSupported, code)
}

func TestPutDeinitializesAtZeroRefCount(t *testing.T) {
	r := NewRegistry(4)
	d := fakeDescriptor("gpio0", true)
	r.Register(d)

	iface, _ := r.Get("gpio0")
	require.Equal(t, status.Ok, r.Put(iface))
	require.Equal(t, Uninitialized, d.State())
	require.EqualValues(t, 0, d.RefCount())
}

func TestPutUnknownInterfaceIsNotFound(t *testing.T) {
	r := NewRegistry(4)
	require.Equal(t, status.NotFound, r.Put(&struct{}{}))
}

func TestPutWithoutOutstandingReferenceIsInvalidState(t *testing.T) {
	r := NewRegistry(4)
	d := fakeDescriptor("uart1", true)
	r.Register(d)
	iface, _ := r.Get("uart1")
	r.Put(iface)
	require.Equal(t, status.InvalidState, r.Put(iface))
}

func TestDeviceRefCountSaturatesAtMaxRefCount(t *testing.T) {
	// property 2: ref_count never exceeds MaxRefCount.
	r := NewRegistry(4)
	d := fakeDescriptor("adc0", true)
	r.Register(d)
	for i := 0; i < 256; i++ {
		r.Get("adc0")
	}
	require.LessOrEqual(t, int(d.RefCount()), 255)
}

func TestInitAllBringsUpEveryDeviceInDeclarationOrder(t *testing.T) {
	r := NewRegistry(4)
	var order []string
	mk := func(name string) *Descriptor {
		return &Descriptor{
			Name: name,
			InitFn: func(d *Descriptor) (Interface, status.Code) {
				order = append(order, d.Name)
				return &struct{}{}, status.Ok
			},
			DeinitFn: func(d *Descriptor) status.Code { return status.Ok },
		}
	}
	r.Register(mk("a"))
	r.Register(mk("b"))
	r.Register(mk("c"))

	require.Equal(t, status.Ok, r.InitAll())
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestInitAllRecordsWorstErrorWithoutAbortingSweep(t *testing.T) {
	r := NewRegistry(4)
	attempted := map[string]bool{}
	mk := func(name string, ok bool) *Descriptor {
		return &Descriptor{
			Name: name,
			InitFn: func(d *Descriptor) (Interface, status.Code) {
				attempted[d.Name] = true
				if !ok {
					return nil, status.Bus
				}
				return &struct{}{}, status.Ok
			},
		}
	}
	r.Register(mk("a", true))
	r.Register(mk("b", false))
	r.Register(mk("c", true))

	code := r.InitAll()
	require.Equal(t, status.Bus, code)
	require.True(t, attempted["a"])
	require.True(t, attempted["b"])
	require.True(t, attempted["c"], "InitAll must not abort the sweep on a per-device failure")
}

func TestDeinitAllWalksInReverseOrder(t *testing.T) {
	r := NewRegistry(4)
	var order []string
	mk := func(name string) *Descriptor {
		return &Descriptor{
			Name: name,
			InitFn: func(d *Descriptor) (Interface, status.Code) {
				return &struct{ name string }{d.Name}, status.Ok
			},
			DeinitFn: func(d *Descriptor) status.Code {
				order = append(order, d.Name)
				return status.Ok
			},
		}
	}
	r.Register(mk("a"))
	r.Register(mk("b"))
	r.Register(mk("c"))
	require.Equal(t, status.Ok, r.InitAll())

	require.Equal(t, status.Ok, r.DeinitAll())
	require.Equal(t, []string{"c", "b", "a"}, order)
}

func TestReinitPreservesRefCountAcrossCycle(t *testing.T) {
	r := NewRegistry(4)
	gen := 0
	d := &Descriptor{
		Name: "flash0",
		InitFn: func(d *Descriptor) (Interface, status.Code) {
			gen++
			return &struct{ gen int }{gen}, status.Ok
		},
		DeinitFn: func(d *Descriptor) status.Code { return status.Ok },
	}
	r.Register(d)
	r.Get("flash0")
	r.Get("flash0")
	require.EqualValues(t, 2, d.RefCount())

	require.Equal(t, status.Ok, r.Reinit(d, nil))
	require.EqualValues(t, 2, d.RefCount())
	require.Equal(t, Running, d.State())
	require.Equal(t, 2, gen)
}

func TestReinitLeavesDeviceUninitializedOnInitFailureAfterDeinit(t *testing.T) {
	r := NewRegistry(4)
	calls := 0
	d := &Descriptor{
		Name: "flash1",
		InitFn: func(d *Descriptor) (Interface, status.Code) {
			calls++
			if calls == 1 {
				return &struct{}{}, status.Ok
			}
			return nil, status.IOError
		},
		DeinitFn: func(d *Descriptor) status.Code { return status.Ok },
	}
	r.Register(d)
	r.Get("flash1")

	code := r.Reinit(d, nil)
	require.Equal(t, status.IOError, code)
	require.Equal(t, Uninitialized, d.State())
	require.EqualValues(t, 0, d.RefCount())
}
