package status

import (
	"sync"

	"github.com/gosmicro/hal/internal/logging"
)

var logger = logging.Default().With("status")

// ErrorCallback is the process-wide diagnostic hook invoked synchronously
// from ReportError whenever an error code is reported and a callback is
// registered. It must be re-entrant-safe: it runs on the reporting
// goroutine, which may itself be inside another callback invocation.
type ErrorCallback func(code Code, module string, msg string, userData any)

var callbackState struct {
	mu       sync.Mutex
	cb       ErrorCallback
	userData any
}

// SetErrorCallback installs the process-wide error callback. Passing nil
// clears it.
func SetErrorCallback(cb ErrorCallback, userData any) {
	callbackState.mu.Lock()
	defer callbackState.mu.Unlock()
	callbackState.cb = cb
	callbackState.userData = userData
}

// ReportError fires the registered callback, if any, when code is an
// error. Argument-validation and state errors should never reach this
// function per spec.md §7 — only resource/IO errors arising from a real
// failure in a registered device are reported this way.
func ReportError(code Code, module string, msg string) {
	if !code.IsError() {
		return
	}

	callbackState.mu.Lock()
	cb := callbackState.cb
	userData := callbackState.userData
	callbackState.mu.Unlock()

	if cb == nil {
		logger.Warn("unreported error", "module", module, "code", code.String(), "msg", msg)
		return
	}
	cb(code, module, msg, userData)
}

// lastError is the single-slot cache described in spec.md §4.1. It is
// process-global and must be read/written atomically with respect to
// concurrent callers, hence the mutex rather than a lock-free CAS: the
// cache holds a full record, not a single word.
var lastError struct {
	mu    sync.Mutex
	valid bool
	rec   Error
}

// RecordError overwrites the last-error cache unconditionally.
func RecordError(code Code, source any, timestampNs int64) {
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	lastError.valid = true
	lastError.rec = Error{Code: code, Source: source, Timestamp: timestampNs}
}

// GetLastError copies the cached record into out. It returns InvalidParam
// if out is nil and NotFound if the cache has never been written (or was
// cleared) since the last ClearError.
func GetLastError(out *Error) Code {
	if out == nil {
		return InvalidParam
	}
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	if !lastError.valid {
		return NotFound
	}
	*out = lastError.rec
	return Ok
}

// ClearError invalidates the last-error cache.
func ClearError() {
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	lastError.valid = false
	lastError.rec = Error{}
}
