package i2c

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/status"
)

func initialized(t *testing.T) *Driver {
	d := New("i2c0", 100_000)
	require.Equal(t, status.Ok, d.Lifecycle.Init())
	return d
}

func TestProbeFindsAttachedSlave(t *testing.T) {
	d := initialized(t)
	d.AttachSlave(0x50, &Slave{Memory: make([]byte, 16)})
	require.Equal(t, status.Ok, d.Probe(0x50, 0))
	require.Equal(t, status.NotFound, d.Probe(0x51, 0))
}

func TestScanReportsAllAttachedAddresses(t *testing.T) {
	d := initialized(t)
	d.AttachSlave(0x10, &Slave{Memory: make([]byte, 4)})
	d.AttachSlave(0x20, &Slave{Memory: make([]byte, 4)})

	found := make([]uint8, 8)
	n, code := d.Scan(found, len(found))
	require.Equal(t, status.Ok, code)
	require.Equal(t, 2, n)
	require.ElementsMatch(t, []uint8{0x10, 0x20}, found[:n])
}

func TestMemWriteThenMemReadRoundTrips(t *testing.T) {
	d := initialized(t)
	d.AttachSlave(0x50, &Slave{Memory: make([]byte, 256)})

	require.Equal(t, status.Ok, d.MemWrite(0x50, 0x10, 1, []byte{1, 2, 3}, 0))
	buf := make([]byte, 3)
	require.Equal(t, status.Ok, d.MemRead(0x50, 0x10, 1, buf, 0))
	require.Equal(t, []byte{1, 2, 3}, buf)
}

func TestMemWriteOutOfBoundsIsInvalidParam(t *testing.T) {
	d := initialized(t)
	d.AttachSlave(0x50, &Slave{Memory: make([]byte, 4)})
	require.Equal(t, status.InvalidParam, d.MemWrite(0x50, 2, 1, []byte{1, 2, 3, 4}, 0))
}

func TestMasterTransmitToUnknownAddressIsNotFound(t *testing.T) {
	d := initialized(t)
	require.Equal(t, status.NotFound, d.MasterTransmit(0x77, []byte{1}, 0))
}

func TestMasterTransmitReceiveUsesCustomHandlers(t *testing.T) {
	d := initialized(t)
	var received []byte
	d.AttachSlave(0x30, &Slave{
		Transmit: func(data []byte) status.Code {
			received = append([]byte(nil), data...)
			return status.Ok
		},
		Receive: func(buf []byte) (int, status.Code) {
			return copy(buf, []byte{9, 8, 7}), status.Ok
		},
	})
	require.Equal(t, status.Ok, d.MasterTransmit(0x30, []byte{1, 2}, 0))
	require.Equal(t, []byte{1, 2}, received)

	buf := make([]byte, 3)
	n, code := d.MasterReceive(0x30, buf, 0)
	require.Equal(t, status.Ok, code)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{9, 8, 7}, buf)
}

func TestOperationsRejectedBeforeInit(t *testing.T) {
	d := New("i2c0", 100_000)
	require.Equal(t, status.NotInitialized, d.Probe(0x50, 0))
}
