package types

import "time"

// LiftRide is the write payload accepted by the lift-ride endpoint
type LiftRide struct {
	ResortID string `json:"resortID"`
	DayID    int    `json:"dayID"`
	SkierID  int    `json:"skierID"`
	Time     int    `json:"time"`
	LiftID   int    `json:"liftID"`
}

// RequestType tags a latency sample with the endpoint it hit
type RequestType string

const (
	RequestTypePost              RequestType = "POST"
	RequestTypeSkierDayVertical  RequestType = "GET-SkierDayVertical"
	RequestTypeSkierResortTotals RequestType = "GET-SkierResortTotals"
)

// AllRequestTypes lists the request types in report order
var AllRequestTypes = []RequestType{
	RequestTypeSkierResortTotals,
	RequestTypeSkierDayVertical,
	RequestTypePost,
}

// BatchKind distinguishes write batches from read batches
type BatchKind string

const (
	BatchWrite BatchKind = "write"
	BatchRead  BatchKind = "read"
)

// NoResponseCode is reported when no attempt ever received a response
const NoResponseCode = -1

// Outcome is the result of one logical call, after every retry attempt
type Outcome struct {
	URL          string
	RequestType  RequestType
	Success      bool
	ResponseCode int // last observed status, NoResponseCode if none
	Attempts     int
	StartTime    time.Time
	Latency      time.Duration // wall time across all attempts, including backoff
	Err          error         // set only when Success is false
}

// BatchOutcome is the result of one worker running one batch serially
type BatchOutcome struct {
	Phase     int
	WorkerID  int
	Kind      BatchKind
	StartTime time.Time
	EndTime   time.Time
	Requests  int  // logical calls completed
	Failed    bool // at least one call in the batch failed
}

// Duration returns how long the batch took
func (b BatchOutcome) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Sample is a single timed attempt
type Sample struct {
	StartTime    time.Time
	Latency      time.Duration
	RequestType  RequestType
	ResponseCode int
}
