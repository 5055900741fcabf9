package osal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetScratchRoundsUpToBucketCapacity(t *testing.T) {
	buf := GetScratch(10)
	require.Len(t, buf, 10)
	require.Equal(t, scratch64, cap(buf))
	PutScratch(buf)
}

func TestGetScratchExactBucketBoundary(t *testing.T) {
	buf := GetScratch(scratch512)
	require.Len(t, buf, scratch512)
	require.Equal(t, scratch512, cap(buf))
	PutScratch(buf)
}

func TestGetScratchAboveLargestBucketAllocatesDirectly(t *testing.T) {
	buf := GetScratch(scratch4096 + 1)
	require.Len(t, buf, scratch4096+1)
	PutScratch(buf) // not a bucket capacity; dropped rather than pooled, must not panic
}

func TestPutScratchThenGetScratchReusesBuffer(t *testing.T) {
	buf := GetScratch(scratch256)
	buf[0] = 0x42
	PutScratch(buf)

	got := GetScratch(scratch256)
	require.Equal(t, scratch256, cap(got))
}

func TestGetScratchEveryBucketSizeRoundsToItself(t *testing.T) {
	for _, size := range []int{scratch64, scratch128, scratch256, scratch512, scratch1024, scratch2048, scratch4096} {
		buf := GetScratch(size)
		require.Equal(t, size, cap(buf))
		require.Len(t, buf, size)
		PutScratch(buf)
	}
}
