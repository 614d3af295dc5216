package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimePool_PhaseRanges(t *testing.T) {
	tests := []struct {
		phase     int
		first     int
		last      int
		wantCount int
	}{
		{1, 1, 90, 90},
		{2, 91, 360, 270},
		{3, 361, 420, 60},
	}

	total := 0
	for _, tt := range tests {
		pool, err := TimePool(tt.phase)
		require.NoError(t, err)
		values := pool.Values()
		assert.Len(t, values, tt.wantCount)
		assert.Equal(t, tt.first, values[0])
		assert.Equal(t, tt.last, values[len(values)-1])
		total += len(values)
	}
	assert.Equal(t, SkiDayMinutes, total)

	_, err := TimePool(4)
	assert.Error(t, err)
}

func TestPool_NextWraps(t *testing.T) {
	pool := NewPool([]int{1, 2, 3})
	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, pool.Next())
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 1}, got)
}

func TestPool_ShuffleRewinds(t *testing.T) {
	pool := LiftPool(5)
	pool.Next()
	pool.Next()
	pool.Shuffle(NewShuffler(rand.NewSource(7)))

	first := pool.Values()[0]
	assert.Equal(t, first, pool.Next())
}

func TestNewPool_CopiesInput(t *testing.T) {
	in := []int{1, 2, 3}
	pool := NewPool(in)
	pool.Shuffle(NewShuffler(rand.NewSource(3)))
	assert.Equal(t, []int{1, 2, 3}, in)
}

func TestRangePool_Empty(t *testing.T) {
	assert.Equal(t, 0, RangePool(5, 4).Len())
	assert.Equal(t, 0, LiftPool(0).Len())
}
