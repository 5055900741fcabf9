package adapter

import (
	"time"

	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/hal/transport"
	"github.com/gosmicro/hal/osal"
	"github.com/gosmicro/hal/status"
)

// TxAsyncToSync presents a blocking TxSync view over a TxAsync
// transport: Send kicks off the underlying async send, then polls
// GetState, yielding to the scheduler between polls, until it is no
// longer busy or the timeout expires.
type TxAsyncToSync struct {
	underlying transport.TxAsync
}

var txAsyncToSyncPool = NewPool[TxAsyncToSync](config.Get().AdapterPoolSize)

func AcquireTxAsyncToSync(underlying transport.TxAsync) (*TxAsyncToSync, status.Code) {
	a, code := txAsyncToSyncPool.Acquire()
	if code != status.Ok {
		return nil, code
	}
	a.underlying = underlying
	return a, status.Ok
}

func ReleaseTxAsyncToSync(a *TxAsyncToSync) status.Code {
	return txAsyncToSyncPool.Release(a)
}

func (a *TxAsyncToSync) Send(data []byte, timeoutMs int64) status.Code {
	if code := a.underlying.Send(data); code != status.Ok {
		return code
	}
	deadline := osal.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	for a.underlying.GetState() == transport.AsyncBusy {
		if timeoutMs != osal.WaitForever && !osal.Now().Before(deadline) {
			return status.Timeout
		}
		osal.Yield()
	}
	return status.Ok
}

// RxAsyncToSync presents a blocking RxSync view over an RxAsync
// transport by polling Receive.
type RxAsyncToSync struct {
	underlying transport.RxAsync
}

var rxAsyncToSyncPool = NewPool[RxAsyncToSync](config.Get().AdapterPoolSize)

func AcquireRxAsyncToSync(underlying transport.RxAsync) (*RxAsyncToSync, status.Code) {
	a, code := rxAsyncToSyncPool.Acquire()
	if code != status.Ok {
		return nil, code
	}
	a.underlying = underlying
	return a, status.Ok
}

func ReleaseRxAsyncToSync(a *RxAsyncToSync) status.Code {
	return rxAsyncToSyncPool.Release(a)
}

func (a *RxAsyncToSync) Receive(buf []byte, timeoutMs int64) (int, status.Code) {
	deadline := osal.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	for {
		n, code := a.underlying.Receive(buf)
		if code == status.Ok {
			return n, status.Ok
		}
		if timeoutMs != osal.WaitForever && !osal.Now().Before(deadline) {
			return 0, status.Timeout
		}
		osal.Yield()
	}
}

func (a *RxAsyncToSync) ReceiveAll(buf []byte, timeoutMs int64) (int, status.Code) {
	deadline := osal.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	total := 0
	for total < len(buf) {
		n, code := a.underlying.Receive(buf[total:])
		if code == status.Ok {
			total += n
			continue
		}
		if timeoutMs != osal.WaitForever && !osal.Now().Before(deadline) {
			return total, status.Timeout
		}
		osal.Yield()
	}
	return total, status.Ok
}

// TxSyncToAsync presents a non-blocking TxAsync view over a TxSync
// transport: Send calls the underlying synchronous send with a fixed
// timeout; if that times out, GetState reports busy until the next
// Send that does not time out.
type TxSyncToAsync struct {
	underlying  transport.TxSync
	fixedTimeoutMs int64
	isBusy      bool
}

var txSyncToAsyncPool = NewPool[TxSyncToAsync](config.Get().AdapterPoolSize)

func AcquireTxSyncToAsync(underlying transport.TxSync, fixedTimeoutMs int64) (*TxSyncToAsync, status.Code) {
	a, code := txSyncToAsyncPool.Acquire()
	if code != status.Ok {
		return nil, code
	}
	a.underlying = underlying
	a.fixedTimeoutMs = fixedTimeoutMs
	return a, status.Ok
}

func ReleaseTxSyncToAsync(a *TxSyncToAsync) status.Code {
	return txSyncToAsyncPool.Release(a)
}

func (a *TxSyncToAsync) Send(data []byte) status.Code {
	code := a.underlying.Send(data, a.fixedTimeoutMs)
	a.isBusy = code == status.Timeout
	if a.isBusy {
		return status.Ok
	}
	return code
}

func (a *TxSyncToAsync) GetState() transport.AsyncState {
	if a.isBusy {
		return transport.AsyncBusy
	}
	return transport.AsyncOK
}

// RxSyncToAsync presents a non-blocking RxAsync view over an RxSync
// transport by calling the underlying receive with timeout zero and
// mapping a sync timeout to NoData.
type RxSyncToAsync struct {
	underlying transport.RxSync
}

var rxSyncToAsyncPool = NewPool[RxSyncToAsync](config.Get().AdapterPoolSize)

func AcquireRxSyncToAsync(underlying transport.RxSync) (*RxSyncToAsync, status.Code) {
	a, code := rxSyncToAsyncPool.Acquire()
	if code != status.Ok {
		return nil, code
	}
	a.underlying = underlying
	return a, status.Ok
}

func ReleaseRxSyncToAsync(a *RxSyncToAsync) status.Code {
	return rxSyncToAsyncPool.Release(a)
}

func (a *RxSyncToAsync) Receive(buf []byte) (int, status.Code) {
	n, code := a.underlying.Receive(buf, osal.NoWait)
	if code == status.Timeout {
		return 0, status.NoData
	}
	return n, code
}
