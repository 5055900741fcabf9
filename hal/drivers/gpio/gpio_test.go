package gpio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/status"
)

func initialized(pinCount int) *Driver {
	d := New("gpio0", pinCount)
	d.MarkRunning()
	return d
}

func TestOperationsRejectedBeforeInit(t *testing.T) {
	d := New("gpio0", 4)
	_, code := d.Read(0)
	require.Equal(t, status.NotInitialized, code)
	require.Equal(t, status.NotInitialized, d.Write(0, true))
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	d := initialized(4)
	require.Equal(t, status.Ok, d.Write(2, true))
	level, code := d.Read(2)
	require.Equal(t, status.Ok, code)
	require.True(t, level)
}

func TestTogglePin(t *testing.T) {
	d := initialized(4)
	require.Equal(t, status.Ok, d.Toggle(0))
	level, _ := d.Read(0)
	require.True(t, level)
	require.Equal(t, status.Ok, d.Toggle(0))
	level, _ = d.Read(0)
	require.False(t, level)
}

func TestOutOfRangePinIsInvalidParam(t *testing.T) {
	d := initialized(4)
	_, code := d.Read(99)
	require.Equal(t, status.InvalidParam, code)
	require.Equal(t, status.InvalidParam, d.Write(-1, true))
}

func TestRegisterEventFiresOnMatchingEdge(t *testing.T) {
	d := initialized(4)
	var gotPin int
	var gotLevel bool
	calls := 0
	require.Equal(t, status.Ok, d.RegisterEvent(1, TriggerRising, func(pin int, level bool, ctx any) {
		gotPin, gotLevel = pin, level
		calls++
	}, nil))

	require.Equal(t, status.Ok, d.SimulateEdge(1, false))
	require.Equal(t, 0, calls, "falling edge must not fire a rising listener")

	require.Equal(t, status.Ok, d.SimulateEdge(1, true))
	require.Equal(t, 1, calls)
	require.Equal(t, 1, gotPin)
	require.True(t, gotLevel)
}

func TestRegisterEventBothFiresOnEitherEdge(t *testing.T) {
	d := initialized(4)
	calls := 0
	require.Equal(t, status.Ok, d.RegisterEvent(0, TriggerBoth, func(pin int, level bool, ctx any) {
		calls++
	}, nil))
	require.Equal(t, status.Ok, d.SimulateEdge(0, true))
	require.Equal(t, status.Ok, d.SimulateEdge(0, false))
	require.Equal(t, 2, calls)
}

func TestSuspendBlocksOperationsUntilResume(t *testing.T) {
	d := initialized(4)
	require.Equal(t, status.Ok, d.Suspend())
	_, code := d.Read(0)
	require.Equal(t, status.Suspended, code)
	require.Equal(t, status.Ok, d.Resume())
	_, code = d.Read(0)
	require.Equal(t, status.Ok, code)
}

func TestDiagnosticBlockReportsEnabledState(t *testing.T) {
	d := initialized(4)
	require.Equal(t, status.Ok, d.Power.Enable())
	buf := make([]byte, 1)
	n, code := d.Diagnostic.GetStatus(buf)
	require.Equal(t, status.Ok, code)
	require.Equal(t, 1, n)
	require.Equal(t, byte(1), buf[0])
}

func TestGetStatisticsCountsReadsAndWrites(t *testing.T) {
	d := initialized(4)
	_, _ = d.Read(0)
	_, _ = d.Read(0)
	_ = d.Write(0, true)

	buf := make([]byte, 16)
	n, code := d.Diagnostic.GetStatistics(buf)
	require.Equal(t, status.Ok, code)
	require.Equal(t, 16, n)
	require.EqualValues(t, 2, buf[0], "reads")
	require.EqualValues(t, 1, buf[8], "writes")

	require.Equal(t, status.Ok, d.Diagnostic.ClearStatistics())
	n2, _ := d.Diagnostic.GetStatistics(buf)
	require.Equal(t, 16, n2)
	require.Equal(t, make([]byte, 16), buf)
}

func TestOwnerOfRecoversDriverFromDiagnosticBlock(t *testing.T) {
	d := initialized(4)
	owner := OwnerOf(&d.Diagnostic)
	require.Same(t, d, owner)
}
