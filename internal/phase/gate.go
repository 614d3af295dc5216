package phase

import (
	"context"
	"sync"
	"time"
)

// Gate is a one-shot signal. Firing it more than once has no further effect.
type Gate struct {
	once sync.Once
	done chan struct{}
}

// NewGate creates an unfired gate
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Fire opens the gate and reports whether this call was the one that did it
func (g *Gate) Fire() bool {
	fired := false
	g.once.Do(func() {
		close(g.done)
		fired = true
	})
	return fired
}

// Fired reports whether the gate is open
func (g *Gate) Fired() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the gate fires
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Wait blocks until the gate fires, timeout elapses, or ctx is done.
// It returns true only if the gate fired. A non-positive timeout waits
// without a bound.
func (g *Gate) Wait(ctx context.Context, timeout time.Duration) bool {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-g.done:
		return true
	case <-expired:
		return false
	case <-ctx.Done():
		return false
	}
}
