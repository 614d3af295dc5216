package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfiguration is returned when run parameters make partitioning or
// request construction impossible
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Workload holds the immutable parameters of one load run
type Workload struct {
	ServerAddr string `json:"serverAddr" yaml:"serverAddr"`
	ServerPort int    `json:"serverPort" yaml:"serverPort"`
	APIPath    string `json:"apiPath" yaml:"apiPath"`
	ReadPrefix string `json:"readPrefix" yaml:"readPrefix"`

	MaxThreads int    `json:"maxThreads" yaml:"maxThreads"`
	SkierCount int    `json:"skierCount" yaml:"skierCount"`
	LiftCount  int    `json:"liftCount" yaml:"liftCount"`
	SkiDay     int    `json:"skiDay" yaml:"skiDay"`
	ResortName string `json:"resortName" yaml:"resortName"`

	WriteBatch     int `json:"writeBatch" yaml:"writeBatch"`
	ReadBatch      int `json:"readBatch" yaml:"readBatch"`
	FinalReadBatch int `json:"finalReadBatch" yaml:"finalReadBatch"`

	RetryBaseMs       int     `json:"retryBaseMs" yaml:"retryBaseMs"`
	MaxAttempts       int     `json:"maxAttempts" yaml:"maxAttempts"`
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"` // 0 means unlimited
	PollIntervalMs    int     `json:"pollIntervalMs" yaml:"pollIntervalMs"`
	GateTimeoutMs     int     `json:"gateTimeoutMs" yaml:"gateTimeoutMs"`
	RequestTimeoutSec int     `json:"requestTimeoutSec" yaml:"requestTimeoutSec"` // 0 leaves the client default (none)
}

// Output controls where results go besides the console
type Output struct {
	CSVPath     string `json:"csvPath" yaml:"csvPath"`
	MetricsAddr string `json:"metricsAddr" yaml:"metricsAddr"`
	History     bool   `json:"history" yaml:"history"`
}

// Logging controls the zap logger
type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // console or json
}

// Config is the full run configuration
type Config struct {
	Workload Workload `json:"workload" yaml:"workload"`
	Output   Output   `json:"output" yaml:"output"`
	Logging  Logging  `json:"logging" yaml:"logging"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Workload: Workload{
			ServerAddr:     "http://localhost",
			ServerPort:     8080,
			APIPath:        "/skiers/liftrides",
			ReadPrefix:     "skiers",
			MaxThreads:     256,
			SkierCount:     50000,
			LiftCount:      40,
			SkiDay:         1,
			ResortName:     "SilverMt",
			WriteBatch:     1000,
			ReadBatch:      5,
			FinalReadBatch: 10,
			RetryBaseMs:    100,
			MaxAttempts:    7,
			PollIntervalMs: 5,
			GateTimeoutMs:  1000,
		},
		Output: Output{
			CSVPath: "testRecords.csv",
			History: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := c.Workload.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log format must be console or json, got %q", ErrInvalidConfiguration, c.Logging.Format)
	}
	return nil
}

// Validate checks the workload parameters
func (w *Workload) Validate() error {
	if w.ServerAddr == "" {
		return fmt.Errorf("%w: server address is required", ErrInvalidConfiguration)
	}
	if w.ServerPort <= 0 || w.ServerPort > 65535 {
		return fmt.Errorf("%w: server port must be between 1 and 65535", ErrInvalidConfiguration)
	}
	if w.MaxThreads <= 0 {
		return fmt.Errorf("%w: max threads must be greater than 0", ErrInvalidConfiguration)
	}
	if w.SkierCount < w.MaxThreads {
		return fmt.Errorf("%w: skier count (%d) must be at least max threads (%d)", ErrInvalidConfiguration, w.SkierCount, w.MaxThreads)
	}
	if w.LiftCount <= 0 {
		return fmt.Errorf("%w: lift count must be greater than 0", ErrInvalidConfiguration)
	}
	if w.SkiDay <= 0 {
		return fmt.Errorf("%w: ski day must be greater than 0", ErrInvalidConfiguration)
	}
	if w.ResortName == "" {
		return fmt.Errorf("%w: resort name is required", ErrInvalidConfiguration)
	}
	if w.WriteBatch < 0 || w.ReadBatch < 0 || w.FinalReadBatch < 0 {
		return fmt.Errorf("%w: batch sizes cannot be negative", ErrInvalidConfiguration)
	}
	if w.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be greater than 0", ErrInvalidConfiguration)
	}
	if w.RetryBaseMs < 0 || w.PollIntervalMs < 0 || w.GateTimeoutMs < 0 || w.RequestTimeoutSec < 0 {
		return fmt.Errorf("%w: durations cannot be negative", ErrInvalidConfiguration)
	}
	if w.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}

// BaseURL returns scheme://host:port without a trailing slash
func (w *Workload) BaseURL() string {
	return fmt.Sprintf("%s:%d", strings.TrimRight(w.ServerAddr, "/"), w.ServerPort)
}

// GetRetryBase returns the backoff base as time.Duration
func (w *Workload) GetRetryBase() time.Duration {
	return time.Duration(w.RetryBaseMs) * time.Millisecond
}

// GetPollInterval returns the phase completion poll interval
func (w *Workload) GetPollInterval() time.Duration {
	if w.PollIntervalMs == 0 {
		return 5 * time.Millisecond
	}
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// GetRequestTimeout returns the per-attempt client timeout, 0 for none
func (w *Workload) GetRequestTimeout() time.Duration {
	return time.Duration(w.RequestTimeoutSec) * time.Second
}

// GetGateTimeout returns the bounded wait on a predecessor phase's gate
func (w *Workload) GetGateTimeout() time.Duration {
	return time.Duration(w.GateTimeoutMs) * time.Millisecond
}
