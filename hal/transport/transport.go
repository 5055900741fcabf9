// Package transport defines the four wire-level interfaces the
// sync/async adapters (hal/adapter) convert between, per spec.md
// §3 "Sync/async transport interfaces". A peripheral driver implements
// whichever pair (TxSync+RxSync, or TxAsync+RxAsync) matches its
// hardware; the adapters make the other pair available for free.
package transport

import "github.com/gosmicro/hal/status"

// AsyncState is the busy/idle state an async transport reports.
type AsyncState int

const (
	AsyncOK AsyncState = iota
	AsyncBusy
)

// TxSync blocks until data is sent or timeoutMs elapses.
type TxSync interface {
	Send(data []byte, timeoutMs int64) status.Code
}

// TxAsync starts a send and returns immediately; GetState reports
// whether it has completed.
type TxAsync interface {
	Send(data []byte) status.Code
	GetState() AsyncState
}

// RxSync blocks (up to timeoutMs) for data. Receive returns the number
// of bytes actually read, which may be less than len(buf). ReceiveAll
// blocks until buf is completely filled or timeoutMs elapses, in which
// case it returns the partial count with status.Timeout.
type RxSync interface {
	Receive(buf []byte, timeoutMs int64) (int, status.Code)
	ReceiveAll(buf []byte, timeoutMs int64) (int, status.Code)
}

// RxAsync returns immediately: Ok with the actual length read, or
// status.NoData if nothing was available.
type RxAsync interface {
	Receive(buf []byte) (int, status.Code)
}
