package workload

import "fmt"

const (
	// SkiDayMinutes is the length of the simulated operating day
	SkiDayMinutes = 420
)

// phaseTicks holds the inclusive tick range of each phase
var phaseTicks = map[int][2]int{
	1: {1, 90},
	2: {91, 360},
	3: {361, SkiDayMinutes},
}

// Pool is a cyclic pool of integers drawn round-robin
type Pool struct {
	values []int
	next   int
}

// NewPool copies values into a new pool
func NewPool(values []int) *Pool {
	cp := make([]int, len(values))
	copy(cp, values)
	return &Pool{values: cp}
}

// RangePool returns a pool holding from..to inclusive
func RangePool(from, to int) *Pool {
	if to < from {
		return &Pool{}
	}
	values := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		values = append(values, v)
	}
	return &Pool{values: values}
}

// TimePool returns the time ticks for a phase (1, 2 or 3)
func TimePool(phase int) (*Pool, error) {
	ticks, ok := phaseTicks[phase]
	if !ok {
		return nil, fmt.Errorf("unsupported phase: %d", phase)
	}
	return RangePool(ticks[0], ticks[1]), nil
}

// LiftPool returns lift IDs 1..count
func LiftPool(count int) *Pool {
	return RangePool(1, count)
}

// Len returns the number of values in the pool
func (p *Pool) Len() int {
	return len(p.values)
}

// Values returns a copy of the pool's current order
func (p *Pool) Values() []int {
	cp := make([]int, len(p.values))
	copy(cp, p.values)
	return cp
}

// Next returns the next value, wrapping to the start when exhausted.
// It panics on an empty pool.
func (p *Pool) Next() int {
	if p.next >= len(p.values) {
		p.next = 0
	}
	v := p.values[p.next]
	p.next++
	return v
}

// Shuffle re-orders the pool with s and rewinds the cursor
func (p *Pool) Shuffle(s *Shuffler) {
	s.Shuffle(p.values)
	p.next = 0
}
