package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample_NoDownsampling(t *testing.T) {
	src := []int{4095, 4000, 3900}

	// nil dst
	result := Downsample(nil, src, 10)
	require.Len(t, result, 3)
	assert.Equal(t, src, result)

	// dst with sufficient capacity is reused
	dst := make([]int, 0, 10)
	result = Downsample(dst, src, 10)
	require.Len(t, result, 3)
	assert.Equal(t, src, result)
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_WithDownsampling(t *testing.T) {
	src := make([]int, 100)
	for i := range src {
		src[i] = i
	}

	dst := make([]int, 0, 20)
	result := Downsample(dst, src, 10)
	require.Len(t, result, 10)

	assert.Equal(t, 0, result[0])
	assert.Equal(t, 99, result[len(result)-1])
	for i := 1; i < len(result); i++ {
		assert.Greater(t, result[i], result[i-1], "decimation keeps order")
	}
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_AllocatesWhenDstTooSmall(t *testing.T) {
	src := make([]float64, 50)
	for i := range src {
		src[i] = float64(i)
	}

	dst := make([]float64, 0, 2)
	result := Downsample(dst, src, 5)
	require.Len(t, result, 5)
	assert.GreaterOrEqual(t, cap(result), 5)
	assert.Equal(t, 49.0, result[4])
}

func TestDownsample_Empty(t *testing.T) {
	result := Downsample[int](nil, nil, 10)
	assert.Empty(t, result)
}
