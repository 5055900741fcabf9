package adc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/status"
)

func initialized(t *testing.T, res Resolution) *Driver {
	d := New("adc0", res)
	require.Equal(t, status.Ok, d.Lifecycle.Init())
	return d
}

func TestInitRejectsInvalidResolution(t *testing.T) {
	d := New("adc0", Resolution(7))
	require.Equal(t, status.InvalidParam, d.Lifecycle.Init())
}

func TestReadRawClampsToResolutionCeiling(t *testing.T) {
	d := initialized(t, Res8)
	d.AttachSource(0, func() uint32 { return 9999 })
	raw, code := d.ReadRaw(0)
	require.Equal(t, status.Ok, code)
	require.Equal(t, uint32(255), raw)
}

func TestReadRawUnknownChannelIsNotFound(t *testing.T) {
	d := initialized(t, Res10)
	_, code := d.ReadRaw(3)
	require.Equal(t, status.NotFound, code)
}

func TestToMillivoltsEndpointsAreExact(t *testing.T) {
	for _, res := range []Resolution{Res6, Res8, Res10, Res12} {
		d := initialized(t, res)
		zero, code := d.ToMillivolts(0, 3300)
		require.Equal(t, status.Ok, code)
		require.Equal(t, uint32(0), zero, "resolution %d", res)

		full, code := d.ToMillivolts(uint32(res.max()), 3300)
		require.Equal(t, status.Ok, code)
		require.Equal(t, uint32(3300), full, "resolution %d", res)
	}
}

func TestToMillivoltsIsMonotonicNondecreasing(t *testing.T) {
	d := initialized(t, Res12)
	max := Res12.max()
	var prev uint32
	for raw := uint32(0); raw <= max; raw += 37 {
		mv, code := d.ToMillivolts(raw, 5000)
		require.Equal(t, status.Ok, code)
		require.GreaterOrEqual(t, mv, prev)
		prev = mv
	}
}

func TestToMillivoltsRejectsOutOfRangeRaw(t *testing.T) {
	d := initialized(t, Res8)
	_, code := d.ToMillivolts(256, 3300)
	require.Equal(t, status.InvalidParam, code)
}

func TestOperationsRejectedBeforeInit(t *testing.T) {
	d := New("adc0", Res12)
	_, code := d.ReadRaw(0)
	require.Equal(t, status.NotInitialized, code)
}
