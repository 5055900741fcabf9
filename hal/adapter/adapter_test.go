package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/hal/transport"
	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/status"
)

type fakeTxAsync struct {
	state   transport.AsyncState
	sendErr status.Code
}

func (f *fakeTxAsync) Send(data []byte) status.Code { return f.sendErr }
func (f *fakeTxAsync) GetState() transport.AsyncState { return f.state }

func TestTxAsyncToSyncPollsUntilNotBusy(t *testing.T) {
	underlying := &fakeTxAsync{state: transport.AsyncBusy}
	a, code := AcquireTxAsyncToSync(underlying)
	require.Equal(t, status.Ok, code)
	defer ReleaseTxAsyncToSync(a)

	go func() {
		time.Sleep(20 * time.Millisecond)
		underlying.state = transport.AsyncOK
	}()
	require.Equal(t, status.Ok, a.Send([]byte("x"), time.Second.Milliseconds()))
}

func TestTxAsyncToSyncTimesOutWhileBusy(t *testing.T) {
	underlying := &fakeTxAsync{state: transport.AsyncBusy}
	a, _ := AcquireTxAsyncToSync(underlying)
	defer ReleaseTxAsyncToSync(a)
	require.Equal(t, status.Timeout, a.Send([]byte("x"), 20))
}

func TestAdapterPoolExhaustionReturnsNoResource(t *testing.T) {
	underlying := &fakeTxAsync{}
	size := config.Get().AdapterPoolSize
	var acquired []*TxAsyncToSync
	for i := 0; i < size; i++ {
		a, code := AcquireTxAsyncToSync(underlying)
		require.Equal(t, status.Ok, code)
		acquired = append(acquired, a)
	}
	_, code := AcquireTxAsyncToSync(underlying)
	require.Equal(t, status.NoResource, code)

	for _, a := range acquired {
		require.Equal(t, status.Ok, ReleaseTxAsyncToSync(a))
	}
}

type fakeRxAsync struct {
	chunks [][]byte
}

func (f *fakeRxAsync) Receive(buf []byte) (int, status.Code) {
	if len(f.chunks) == 0 {
		return 0, status.NoData
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	n := copy(buf, chunk)
	return n, status.Ok
}

func TestRxAsyncToSyncReceiveAllAccumulatesChunks(t *testing.T) {
	underlying := &fakeRxAsync{chunks: [][]byte{{1, 2}, {3, 4}}}
	a, _ := AcquireRxAsyncToSync(underlying)
	defer ReleaseRxAsyncToSync(a)

	buf := make([]byte, 4)
	n, code := a.ReceiveAll(buf, time.Second.Milliseconds())
	require.Equal(t, status.Ok, code)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
}

func TestRxAsyncToSyncReceiveAllPartialOnTimeout(t *testing.T) {
	underlying := &fakeRxAsync{chunks: [][]byte{{1, 2}}}
	a, _ := AcquireRxAsyncToSync(underlying)
	defer ReleaseRxAsyncToSync(a)

	buf := make([]byte, 4)
	n, code := a.ReceiveAll(buf, 20)
	require.Equal(t, status.Timeout, code)
	require.Equal(t, 2, n)
}

type fakeTxSync struct {
	code status.Code
}

func (f *fakeTxSync) Send(data []byte, timeoutMs int64) status.Code { return f.code }

func TestTxSyncToAsyncReportsBusyOnSyncTimeout(t *testing.T) {
	underlying := &fakeTxSync{code: status.Timeout}
	a, _ := AcquireTxSyncToAsync(underlying, 10)
	defer ReleaseTxSyncToAsync(a)

	require.Equal(t, status.Ok, a.Send([]byte("x")))
	require.Equal(t, transport.AsyncBusy, a.GetState())
}

func TestTxSyncToAsyncReportsOKOnSuccess(t *testing.T) {
	underlying := &fakeTxSync{code: status.Ok}
	a, _ := AcquireTxSyncToAsync(underlying, 10)
	defer ReleaseTxSyncToAsync(a)

	require.Equal(t, status.Ok, a.Send([]byte("x")))
	require.Equal(t, transport.AsyncOK, a.GetState())
}

type fakeRxSync struct {
	n    int
	code status.Code
}

func (f *fakeRxSync) Receive(buf []byte, timeoutMs int64) (int, status.Code) { return f.n, f.code }
func (f *fakeRxSync) ReceiveAll(buf []byte, timeoutMs int64) (int, status.Code) {
	return f.n, f.code
}

func TestRxSyncToAsyncMapsTimeoutToNoData(t *testing.T) {
	underlying := &fakeRxSync{code: status.Timeout}
	a, _ := AcquireRxSyncToAsync(underlying)
	defer ReleaseRxSyncToAsync(a)

	n, code := a.Receive(make([]byte, 4))
	require.Equal(t, status.NoData, code)
	require.Equal(t, 0, n)
}

func TestRxSyncToAsyncPassesThroughSuccess(t *testing.T) {
	underlying := &fakeRxSync{n: 3, code: status.Ok}
	a, _ := AcquireRxSyncToAsync(underlying)
	defer ReleaseRxSyncToAsync(a)

	n, code := a.Receive(make([]byte, 4))
	require.Equal(t, status.Ok, code)
	require.Equal(t, 3, n)
}
