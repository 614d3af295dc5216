package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/studiowebux/liftload/internal/types"
	"github.com/studiowebux/liftload/internal/workload"
)

const (
	// DefaultMaxAttempts is the attempt ceiling for one logical call
	DefaultMaxAttempts = 7
	// DefaultRetryBase is the backoff base
	DefaultRetryBase = 100 * time.Millisecond
)

// ErrExhaustedRetries marks an outcome whose every attempt failed
var ErrExhaustedRetries = errors.New("exhausted retries")

// Recorder receives the results produced by an Executor.
// Implementations must be safe for concurrent use.
type Recorder interface {
	RecordCall(outcome types.Outcome)
	RecordSample(sample types.Sample)
}

// Sleeper waits between attempts
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d)
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ContextSleeper sleeps for d or until ctx is done
var ContextSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
})

// Options configures an Executor. Zero values fall back to defaults.
type Options struct {
	MaxAttempts       int
	RetryBase         time.Duration
	RequestsPerSecond float64
	Sleeper           Sleeper
	Logger            *zap.Logger
}

// Executor runs logical calls with bounded retries
type Executor struct {
	client      HTTPDoer
	recorder    Recorder
	limiter     *rate.Limiter
	maxAttempts int
	retryBase   time.Duration
	sleeper     Sleeper
	logger      *zap.Logger
}

// New creates an executor sending through client and reporting to recorder
func New(client HTTPDoer, recorder Recorder, opts Options) *Executor {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Sleeper == nil {
		opts.Sleeper = ContextSleeper
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Executor{
		client:      client,
		recorder:    recorder,
		maxAttempts: opts.MaxAttempts,
		retryBase:   opts.RetryBase,
		sleeper:     opts.Sleeper,
		logger:      opts.Logger,
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return e
}

// Backoff returns the sleep after the failed attempt with 0-based index attempt:
// max(1ms, base*2*attempt)
func Backoff(base time.Duration, attempt int) time.Duration {
	d := base * 2 * time.Duration(attempt)
	if d < time.Millisecond {
		return time.Millisecond
	}
	return d
}

// IsSuccess reports whether status counts as a successful call
func IsSuccess(status int) bool {
	return status == http.StatusOK || status == http.StatusNoContent
}

// ExecuteWrite POSTs body as JSON to url
func (e *Executor) ExecuteWrite(ctx context.Context, url string, body []byte) types.Outcome {
	return e.execute(ctx, http.MethodPost, url, body, types.RequestTypePost)
}

// ExecuteRead GETs url
func (e *Executor) ExecuteRead(ctx context.Context, url string) types.Outcome {
	return e.execute(ctx, http.MethodGet, url, nil, workload.ClassifyRead(url))
}

// Execute runs one request from a batch
func (e *Executor) Execute(ctx context.Context, req workload.Request) types.Outcome {
	return e.execute(ctx, req.Method, req.URL, req.Body, req.Type)
}

func (e *Executor) execute(ctx context.Context, method, url string, body []byte, reqType types.RequestType) types.Outcome {
	outcome := types.Outcome{
		URL:          url,
		RequestType:  reqType,
		ResponseCode: types.NoResponseCode,
		StartTime:    time.Now(),
	}

	var lastErr error
	for i := 0; i < e.maxAttempts; i++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		outcome.Attempts++
		attemptStart := time.Now()
		status, err := e.attempt(ctx, method, url, body)
		latency := time.Since(attemptStart)

		if err == nil {
			outcome.ResponseCode = status
			e.recorder.RecordSample(types.Sample{
				StartTime:    attemptStart,
				Latency:      latency,
				RequestType:  reqType,
				ResponseCode: status,
			})

			if IsSuccess(status) {
				outcome.Success = true
				outcome.Latency = time.Since(outcome.StartTime)
				e.recorder.RecordCall(outcome)
				return outcome
			}
			lastErr = fmt.Errorf("unexpected status %d", status)
		} else {
			lastErr = err
		}

		delay := Backoff(e.retryBase, i)
		e.logger.Debug("attempt failed, backing off",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", delay),
			zap.Error(lastErr))

		if err := e.sleeper.Sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	outcome.Latency = time.Since(outcome.StartTime)
	if outcome.Attempts == 0 {
		// never sent, so it is neither a success nor a failure
		outcome.Err = fmt.Errorf("request not sent: %w", lastErr)
		return outcome
	}
	outcome.Err = fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, outcome.Attempts, lastErr)
	e.recorder.RecordCall(outcome)
	return outcome
}

// attempt sends a single request and returns its status code
func (e *Executor) attempt(ctx context.Context, method, url string, body []byte) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection goes back to the pool
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		e.logger.Debug("failed to drain response body", zap.String("url", url), zap.Error(err))
	}

	return resp.StatusCode, nil
}
