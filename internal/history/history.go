package history

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Run is the persisted record of one load run
type Run struct {
	ID          string
	StartedAt   time.Time
	CompletedAt time.Time
	Status      string
	Error       string

	Target            string
	ResortName        string
	SkiDay            int
	MaxThreads        int
	SkierCount        int
	LiftCount         int
	RequestsPerSecond float64

	Total      int64
	Successful int64
	Failed     int64
	WallTimeMs int64
	Throughput float64

	Summaries []Summary
	Phases    []Phase
}

// Summary is the latency summary of one request type within a run
type Summary struct {
	RequestType string
	Count       int
	MeanMs      float64
	MedianMs    float64
	P99Ms       float64
	MaxMs       float64
}

// Phase records how one phase of a run went
type Phase struct {
	Number       int
	Workers      int
	GateTimedOut bool
	StartedAt    time.Time
	CompletedAt  time.Time
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// ShortID returns the first block of a run ID for display
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
