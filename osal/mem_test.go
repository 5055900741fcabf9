package osal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/status"
)

func TestAllocZeroSizeReturnsNilOk(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	buf, code := Alloc(0)
	require.Equal(t, status.Ok, code)
	require.Nil(t, buf)
}

func TestStaticModeAlwaysFailsGlobalAlloc(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemStatic, nil))
	_, code := Alloc(16)
	require.Equal(t, status.NoMemory, code)
}

func TestCustomModeRequiresCallbacks(t *testing.T) {
	require.Equal(t, status.InvalidParam, MemInit(config.MemCustom, nil))
	require.Equal(t, status.InvalidParam, MemInit(config.MemCustom, &CustomAllocator{}))
}

func TestDynamicAllocTracksStatsAndFree(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))

	buf, code := Alloc(128)
	require.Equal(t, status.Ok, code)
	require.Len(t, buf, 128)

	stats := GetMemStats()
	require.EqualValues(t, 128, stats.AllocatedBytes)
	require.EqualValues(t, 1, stats.AllocCount)
	require.EqualValues(t, 128, stats.PeakBytes)

	require.Equal(t, status.Ok, Free(buf))
	stats = GetMemStats()
	require.EqualValues(t, 0, stats.AllocatedBytes)
	require.EqualValues(t, 0, stats.AllocCount)
	require.EqualValues(t, 128, stats.PeakBytes, "peak never decreases")
}

func TestFreeUnknownPointerRejected(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	require.Equal(t, status.InvalidParam, Free(make([]byte, 4)))
}

func TestReallocPreservesPrefix(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	buf, _ := Alloc(4)
	copy(buf, []byte{1, 2, 3, 4})

	grown, code := Realloc(buf, 8)
	require.Equal(t, status.Ok, code)
	require.Equal(t, []byte{1, 2, 3, 4}, grown[:4])

	freed, code := Realloc(grown, 0)
	require.Equal(t, status.Ok, code)
	require.Nil(t, freed)
	require.EqualValues(t, 0, GetAllocationCount())
}

func TestAllocAlignedReturnsAlignedAddress(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	for _, alignment := range []int{2, 4, 8, 16, 64} {
		buf, code := AllocAligned(alignment, 32)
		require.Equal(t, status.Ok, code)
		require.EqualValues(t, 0, bufAddr(buf)%uintptr(alignment))
		require.Equal(t, status.Ok, FreeAligned(buf))
	}
}

func TestAllocAlignedRejectsNonPowerOfTwo(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	_, code := AllocAligned(3, 16)
	require.Equal(t, status.InvalidParam, code)
}

func TestAllocFailsOnceBudgetExhausted(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	config.SetForTest(t, mustConfigWithHeap(64))
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))

	_, code := Alloc(32)
	require.Equal(t, status.Ok, code)
	_, code = Alloc(64)
	require.Equal(t, status.NoMemory, code)
}

func mustConfigWithHeap(n int) config.Config {
	c := config.Default()
	c.HeapSize = n
	return c
}

func TestMinFreeSizeOnlyDecreasesUntilReset(t *testing.T) {
	config.SetForTest(t, mustConfigWithHeap(1024))
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))

	a, _ := Alloc(512)
	require.EqualValues(t, 512, GetMinFreeSize())
	Free(a)
	require.EqualValues(t, 512, GetMinFreeSize(), "min free size must not increase on free")

	MemResetStats()
	require.EqualValues(t, 1024, GetMinFreeSize())
}

func TestCheckIntegrityPassesUnderNormalUse(t *testing.T) {
	require.Equal(t, status.Ok, MemInit(config.MemDynamic, nil))
	a, _ := Alloc(16)
	b, _ := Alloc(32)
	require.Equal(t, status.Ok, CheckIntegrity())
	Free(a)
	Free(b)
	require.Equal(t, status.Ok, CheckIntegrity())
}

func TestPoolAllocFreeLowestIndexFirst(t *testing.T) {
	p, code := PoolCreate(8, 2)
	require.Equal(t, status.Ok, code)

	b1, code := p.AllocFromPool()
	require.Equal(t, status.Ok, code)
	b2, code := p.AllocFromPool()
	require.Equal(t, status.Ok, code)
	_, code = p.AllocFromPool()
	require.Equal(t, status.Empty, code)

	require.Equal(t, status.Ok, p.FreeToPool(b1))
	b3, code := p.AllocFromPool()
	require.Equal(t, status.Ok, code)
	require.Same(t, &b1[0], &b3[0])

	require.Equal(t, status.Ok, p.FreeToPool(b2))
	require.Equal(t, status.Ok, p.FreeToPool(b3))
}

func TestPoolFreeRejectsForeignPointer(t *testing.T) {
	p, _ := PoolCreate(4, 1)
	require.Equal(t, status.InvalidParam, p.FreeToPool(make([]byte, 4)))
}

func TestPoolStatsTracksPeak(t *testing.T) {
	p, _ := PoolCreate(4, 3)
	b1, _ := p.AllocFromPool()
	b2, _ := p.AllocFromPool()
	require.EqualValues(t, 2, p.Stats().Peak)
	p.FreeToPool(b1)
	p.FreeToPool(b2)
	require.EqualValues(t, 0, p.Stats().Allocated)
	require.EqualValues(t, 2, p.Stats().Peak, "peak never decreases")
}
