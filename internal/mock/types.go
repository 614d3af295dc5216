package mock

import "time"

// Config represents the mock skier API configuration
type Config struct {
	Port        int     `json:"port" yaml:"port"`                                   // Server port (default: 8080, 0 in tests picks a free one)
	Host        string  `json:"host" yaml:"host"`                                   // Server host (default: localhost)
	APIPath     string  `json:"apiPath" yaml:"apiPath"`                             // Lift-ride POST path (default: /skiers/liftrides)
	ReadPrefix  string  `json:"readPrefix" yaml:"readPrefix"`                       // First segment of the read endpoints (default: skiers)
	FailureRate float64 `json:"failureRate,omitempty" yaml:"failureRate,omitempty"` // Fraction of requests answered with 503
	Delay       int     `json:"delay,omitempty" yaml:"delay,omitempty"`             // Response delay in milliseconds
	Logging     bool    `json:"logging" yaml:"logging"`                             // Keep a request log
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}

// VerticalResponse is returned by both read endpoints
type VerticalResponse struct {
	ResortID string `json:"resortID"`
	SkierID  int    `json:"skierID"`
	DayID    int    `json:"dayID,omitempty"`
	Vertical int    `json:"vertical"`
}
