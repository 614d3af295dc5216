package mock

import (
	"sync"

	"github.com/studiowebux/liftload/internal/types"
)

// VerticalPerLift is the vertical credited for one ride, multiplied by the lift ID
const VerticalPerLift = 10

type skierKey struct {
	resort  string
	skierID int
}

// Store keeps the vertical totals derived from posted lift rides
type Store struct {
	mu    sync.RWMutex
	daily map[skierKey]map[int]int // day -> vertical
	rides int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{daily: make(map[skierKey]map[int]int)}
}

// Add records a lift ride
func (s *Store) Add(ride types.LiftRide) {
	key := skierKey{resort: ride.ResortID, skierID: ride.SkierID}

	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.daily[key]
	if !ok {
		days = make(map[int]int)
		s.daily[key] = days
	}
	days[ride.DayID] += ride.LiftID * VerticalPerLift
	s.rides++
}

// DayVertical returns the vertical of a skier on one day
func (s *Store) DayVertical(resort string, day, skierID int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days, ok := s.daily[skierKey{resort: resort, skierID: skierID}]
	if !ok {
		return 0, false
	}
	v, ok := days[day]
	return v, ok
}

// TotalVertical returns the vertical of a skier across all days at a resort
func (s *Store) TotalVertical(resort string, skierID int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days, ok := s.daily[skierKey{resort: resort, skierID: skierID}]
	if !ok {
		return 0, false
	}
	total := 0
	for _, v := range days {
		total += v
	}
	return total, true
}

// Rides returns the number of lift rides recorded
func (s *Store) Rides() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rides
}
