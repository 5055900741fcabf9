package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportErrorFiresCallbackOnlyForErrors(t *testing.T) {
	defer SetErrorCallback(nil, nil)

	var mu sync.Mutex
	var got []Code
	SetErrorCallback(func(code Code, module, msg string, userData any) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, code)
	}, nil)

	ReportError(Ok, "test", "should not fire")
	ReportError(Busy, "test", "should fire")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Code{Busy}, got)
}

func TestReportErrorReentrantSafe(t *testing.T) {
	defer SetErrorCallback(nil, nil)

	var depth int
	SetErrorCallback(func(code Code, module, msg string, userData any) {
		depth++
		if depth < 3 {
			ReportError(code, module, msg)
		}
	}, nil)

	ReportError(IOError, "reentrant", "nested")
	require.Equal(t, 3, depth)
}

func TestLastErrorCache(t *testing.T) {
	ClearError()

	var out Error
	require.Equal(t, NotFound, GetLastError(&out))
	require.Equal(t, InvalidParam, GetLastError(nil))

	RecordError(Timeout, "uart0", 42)
	require.Equal(t, Ok, GetLastError(&out))
	require.Equal(t, Timeout, out.Code)
	require.Equal(t, "uart0", out.Source)
	require.EqualValues(t, 42, out.Timestamp)

	RecordError(Busy, "spi0", 43)
	require.Equal(t, Ok, GetLastError(&out))
	require.Equal(t, Busy, out.Code)

	ClearError()
	require.Equal(t, NotFound, GetLastError(&out))
}
