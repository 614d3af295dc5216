package stats

import "sync/atomic"

// Counters tracks logical call outcomes
type Counters struct {
	total      atomic.Int64
	successful atomic.Int64
	failed     atomic.Int64
}

// Snapshot is a point-in-time copy of Counters
type Snapshot struct {
	Total      int64
	Successful int64
	Failed     int64
}

// Add records one logical call
func (c *Counters) Add(success bool) {
	c.total.Add(1)
	if success {
		c.successful.Add(1)
	} else {
		c.failed.Add(1)
	}
}

// Snapshot reads the current counter values
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Total:      c.total.Load(),
		Successful: c.successful.Load(),
		Failed:     c.failed.Load(),
	}
}

// SuccessRate returns the success rate as a percentage
func (s Snapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total) * 100
}

// Throughput returns logical calls per second over elapsedSeconds
func (s Snapshot) Throughput(elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return float64(s.Total) / elapsedSeconds
}
