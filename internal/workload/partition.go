package workload

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/studiowebux/liftload/internal/config"
)

// Partition splits skier IDs 1..population into workerCount disjoint,
// contiguous slices of population/workerCount IDs each.
func Partition(population, workerCount int) ([][]int, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("%w: worker count must be greater than 0, got %d", config.ErrInvalidConfiguration, workerCount)
	}
	if population < 0 {
		return nil, fmt.Errorf("%w: population cannot be negative, got %d", config.ErrInvalidConfiguration, population)
	}

	size := population / workerCount
	splits := make([][]int, workerCount)

	skierID := 1
	for i := 0; i < workerCount; i++ {
		split := make([]int, size)
		for j := 0; j < size; j++ {
			split[j] = skierID
			skierID++
		}
		splits[i] = split
	}

	return splits, nil
}

// Shuffler permutes integer slices in place. Safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a shuffler drawing from src, or from a clock-seeded
// source when src is nil
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Shuffler{rng: rand.New(src)}
}

// Shuffle performs a uniform Fisher-Yates permutation of values
func (s *Shuffler) Shuffle(values []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(values) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}
