package capability

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/status"
)

type fakeDriver struct {
	Lifecycle  LifecycleBlock
	Power      PowerBlock
	Diagnostic DiagnosticBlock
	name       string
}

func newFakeDriver(name string) *fakeDriver {
	d := &fakeDriver{name: name}
	d.Lifecycle = LifecycleBlock{
		Init:     func() status.Code { return status.Ok },
		GetState: func() LifecycleState { return LifecycleRunning },
	}
	return d
}

func TestRecoverOwnerFromLifecycleField(t *testing.T) {
	d := newFakeDriver("gpio0")
	var probe fakeDriver
	offset := OffsetOf(unsafe.Pointer(&probe), unsafe.Pointer(&probe.Lifecycle))

	recovered := RecoverOwner[fakeDriver](unsafe.Pointer(&d.Lifecycle), offset)
	require.Same(t, d, recovered)
	require.Equal(t, "gpio0", recovered.name)
}

func TestRecoverOwnerFromDiagnosticField(t *testing.T) {
	d := newFakeDriver("uart0")
	var probe fakeDriver
	offset := OffsetOf(unsafe.Pointer(&probe), unsafe.Pointer(&probe.Diagnostic))

	recovered := RecoverOwner[fakeDriver](unsafe.Pointer(&d.Diagnostic), offset)
	require.Same(t, d, recovered)
}

func TestLifecycleBlockSlotsAreCallable(t *testing.T) {
	d := newFakeDriver("spi0")
	require.Equal(t, status.Ok, d.Lifecycle.Init())
	require.Equal(t, LifecycleRunning, d.Lifecycle.GetState())
}
