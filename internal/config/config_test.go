package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpec(t *testing.T) {
	d := Default()
	require.Equal(t, 32, d.MaxDevices)
	require.EqualValues(t, 255, d.MaxRefCount)
	require.Equal(t, 4, d.AdapterPoolSize)
	require.Equal(t, 31, d.TaskPriorityMax)
	require.GreaterOrEqual(t, d.EventBitsMin, 16)
	require.Equal(t, MemDynamic, d.MemModeDefault)
	require.Greater(t, d.HeapSize, 0)
}

func TestSetForTestRestores(t *testing.T) {
	before := Get()

	func() {
		inner := &fakeT{}
		SetForTest(inner, Config{MaxDevices: 7})
		require.Equal(t, 7, Get().MaxDevices)
		inner.runCleanups()
	}()

	require.Equal(t, before, Get())
}

// fakeT stands in for *testing.T's Cleanup semantics without running the
// restoration only at the real test's end, so this test can observe it
// synchronously.
type fakeT struct {
	cleanups []func()
}

func (f *fakeT) Cleanup(fn func()) { f.cleanups = append(f.cleanups, fn) }

func (f *fakeT) runCleanups() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
}
