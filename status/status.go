// Package status implements the closed result/error taxonomy shared by
// every HAL and OSAL operation (spec.md §3, §4.1, §7): a total string
// mapping, a single global error callback, and a single-slot last-error
// cache. Errors are values everywhere in this module; status is never a
// panic or an exception.
package status

import "fmt"

// Code is the closed enumeration of operation outcomes. Ok is the single
// distinguished success value; every other value is an error.
type Code int32

const (
	Ok Code = iota

	// General
	InvalidParam
	NullPointer
	NotSupported
	NotFound
	InvalidSize

	// State
	NotInitialized
	AlreadyInit
	InvalidState
	Busy
	Suspended

	// Resource
	NoMemory
	NoResource
	ResourceBusy
	Locked
	Full
	Empty

	// Timing
	Timeout
	WouldBlock

	// I/O
	IOError
	Overrun
	Underrun
	Parity
	Framing
	Noise
	NACK
	Bus
	Arbitration

	// DMA
	DMAError

	// Data
	NoData
	DataSize
	CRC
	Checksum

	// Permission
	PermissionDenied
	ReadOnly
)

var names = map[Code]string{
	Ok:                "success",
	InvalidParam:      "invalid parameter",
	NullPointer:       "null pointer",
	NotSupported:      "not supported",
	NotFound:          "not found",
	InvalidSize:       "invalid size",
	NotInitialized:    "not initialized",
	AlreadyInit:       "already initialized",
	InvalidState:      "invalid state",
	Busy:              "busy",
	Suspended:         "suspended",
	NoMemory:          "no memory",
	NoResource:        "no resource",
	ResourceBusy:      "resource busy",
	Locked:            "locked",
	Full:              "full",
	Empty:             "empty",
	Timeout:           "timeout",
	WouldBlock:        "would block",
	IOError:           "I/O error",
	Overrun:           "overrun",
	Underrun:          "underrun",
	Parity:            "parity error",
	Framing:           "framing error",
	Noise:             "noise error",
	NACK:              "NACK",
	Bus:               "bus error",
	Arbitration:       "arbitration lost",
	DMAError:          "DMA error",
	NoData:            "no data",
	DataSize:          "invalid data size",
	CRC:               "CRC error",
	Checksum:          "checksum error",
	PermissionDenied:  "permission denied",
	ReadOnly:          "read-only",
}

const unknown = "Unknown error"

// String implements fmt.Stringer and is the spec.md ToString mapping: a
// total function over the int32 space, falling back to "Unknown error"
// for any value outside the enumeration.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return unknown
}

// IsError reports whether c is anything other than the distinguished
// success value.
func (c Code) IsError() bool {
	return c != Ok
}

// Error implements the standard error interface directly on Code so a
// bare code can be used as the target of errors.Is(err, status.NotFound)
// without allocating an *Error wrapper.
func (c Code) Error() string {
	return c.String()
}

// Err adapts c to the standard error interface, or returns nil for Ok,
// so OSAL/HAL callers that prefer idiomatic Go error handling can wrap
// the value-based status in errors.Is/errors.As without losing the
// underlying code.
func (c Code) Err() error {
	if c == Ok {
		return nil
	}
	return &Error{Code: c}
}

// Error is a structured error carrying a status code plus the
// diagnostic context spec.md's error record requires.
type Error struct {
	Code      Code
	Source    any
	Timestamp int64 // unix nanoseconds; 0 if unset
	Op        string
	Msg       string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Op != "" {
		return fmt.Sprintf("status: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("status: %s", msg)
}

// Is supports errors.Is against both a bare Code and another *Error,
// comparing only the status code.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e.Code == t.Code
	case Code:
		return e.Code == t
	}
	return false
}

// There is no As method: errors.As(err, &status.Code(...)) style
// extraction is not idiomatic for a non-pointer-receiver alias, so
// callers extract the code through errors.As into a *Error instead:
//
//	var se *status.Error
//	if errors.As(err, &se) { se.Code ... }
