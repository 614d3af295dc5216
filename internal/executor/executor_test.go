package executor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/liftload/internal/types"
	"github.com/studiowebux/liftload/internal/workload"
)

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []types.Outcome
	samples  []types.Sample
}

func (r *fakeRecorder) RecordCall(o types.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *fakeRecorder) RecordSample(s types.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

type recordingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return ctx.Err()
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{ms(100), 0, ms(1)},
		{ms(100), 1, ms(200)},
		{ms(100), 2, ms(400)},
		{ms(100), 6, ms(1200)},
		{ms(5), 3, ms(30)},
		{0, 4, ms(1)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.base, tt.attempt), "base=%v attempt=%d", tt.base, tt.attempt)
	}
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(200))
	assert.True(t, IsSuccess(204))
	assert.False(t, IsSuccess(201))
	assert.False(t, IsSuccess(500))
	assert.False(t, IsSuccess(types.NoResponseCode))
}

func TestExecuteWrite_AlwaysFailing(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	sleeper := &recordingSleeper{}
	exec := New(server.Client(), rec, Options{RetryBase: ms(100), Sleeper: sleeper})

	outcome := exec.ExecuteWrite(context.Background(), server.URL, []byte(`{"skierID":1}`))

	assert.False(t, outcome.Success)
	assert.Equal(t, 500, outcome.ResponseCode)
	assert.Equal(t, 7, outcome.Attempts)
	assert.ErrorIs(t, outcome.Err, ErrExhaustedRetries)
	assert.Equal(t, int64(7), atomic.LoadInt64(&hits))

	assert.Equal(t, []time.Duration{ms(1), ms(200), ms(400), ms(600), ms(800), ms(1000), ms(1200)}, sleeper.sleeps)

	require.Len(t, rec.outcomes, 1, "counters must be updated once per logical call")
	assert.Len(t, rec.samples, 7)
	for _, s := range rec.samples {
		assert.Equal(t, types.RequestTypePost, s.RequestType)
		assert.Equal(t, 500, s.ResponseCode)
	}
}

func TestExecuteRead_AlwaysFailing(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	exec := New(server.Client(), rec, Options{Sleeper: &recordingSleeper{}})

	outcome := exec.ExecuteRead(context.Background(), server.URL+"/skiers/7/vertical?resort=SilverMt")

	assert.False(t, outcome.Success)
	assert.Equal(t, 500, outcome.ResponseCode)
	assert.Equal(t, 7, outcome.Attempts)
	assert.Equal(t, types.RequestTypeSkierResortTotals, outcome.RequestType)
	assert.Equal(t, int64(7), atomic.LoadInt64(&hits))
	assert.Len(t, rec.outcomes, 1)
}

func TestExecuteWrite_SucceedsOnThirdAttempt(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	sleeper := &recordingSleeper{}
	exec := New(server.Client(), rec, Options{RetryBase: ms(100), Sleeper: sleeper})

	outcome := exec.ExecuteWrite(context.Background(), server.URL, []byte(`{}`))

	assert.True(t, outcome.Success)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 200, outcome.ResponseCode)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, int64(3), atomic.LoadInt64(&hits))
	assert.Equal(t, []time.Duration{ms(1), ms(200)}, sleeper.sleeps)
	assert.Len(t, rec.outcomes, 1)
	assert.Len(t, rec.samples, 3)
}

func TestExecuteRead_NoContentIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	exec := New(server.Client(), rec, Options{Sleeper: &recordingSleeper{}})

	outcome := exec.ExecuteRead(context.Background(), server.URL+"/skiers/SilverMt/days/1/skiers/3")
	assert.True(t, outcome.Success)
	assert.Equal(t, 204, outcome.ResponseCode)
	assert.Equal(t, types.RequestTypeSkierDayVertical, outcome.RequestType)
}

func TestExecuteWrite_SendsJSONBody(t *testing.T) {
	var got types.LiftRide
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exec := New(server.Client(), &fakeRecorder{}, Options{})
	body := []byte(`{"resortID":"SilverMt","dayID":1,"skierID":12,"time":30,"liftID":4}`)
	outcome := exec.ExecuteWrite(context.Background(), server.URL, body)

	require.True(t, outcome.Success)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, types.LiftRide{ResortID: "SilverMt", DayID: 1, SkierID: 12, Time: 30, LiftID: 4}, got)
}

func TestExecute_NoResponseReportsMinusOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	rec := &fakeRecorder{}
	sleeper := &recordingSleeper{}
	exec := New(http.DefaultClient, rec, Options{MaxAttempts: 3, Sleeper: sleeper})

	outcome := exec.Execute(context.Background(), workload.Request{
		Method: http.MethodGet,
		URL:    url + "/skiers/1/vertical?resort=x",
		Type:   types.RequestTypeSkierResortTotals,
	})

	assert.False(t, outcome.Success)
	assert.Equal(t, types.NoResponseCode, outcome.ResponseCode)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Len(t, sleeper.sleeps, 3)
	assert.Empty(t, rec.samples, "no sample without a response")
	assert.Len(t, rec.outcomes, 1)
}

func TestExecute_CancelledContextStopsRetrying(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sleeper := SleeperFunc(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	})

	rec := &fakeRecorder{}
	exec := New(server.Client(), rec, Options{Sleeper: sleeper})
	outcome := exec.ExecuteWrite(ctx, server.URL, []byte(`{}`))

	assert.False(t, outcome.Success)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 502, outcome.ResponseCode)
	assert.ErrorIs(t, outcome.Err, ErrExhaustedRetries)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
	assert.Len(t, rec.outcomes, 1)
}

func TestExecute_RateLimiterHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	exec := New(server.Client(), rec, Options{RequestsPerSecond: 50})

	outcome := exec.ExecuteRead(context.Background(), server.URL)
	assert.True(t, outcome.Success)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome = exec.ExecuteRead(ctx, server.URL)
	assert.False(t, outcome.Success)
	assert.Equal(t, 0, outcome.Attempts)
	assert.Equal(t, types.NoResponseCode, outcome.ResponseCode)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.NotErrorIs(t, outcome.Err, ErrExhaustedRetries)
	assert.Len(t, rec.outcomes, 1, "a call that was never sent is not counted")
	assert.Len(t, rec.samples, 1)
}

func TestContextSleeper(t *testing.T) {
	require.NoError(t, ContextSleeper.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ContextSleeper.Sleep(ctx, time.Hour), context.Canceled)
}

func TestPoolSize(t *testing.T) {
	assert.Equal(t, 1, PoolSize(0))
	assert.Equal(t, 1, PoolSize(1))
	assert.Equal(t, 15, PoolSize(10))
	assert.Equal(t, 384, PoolSize(256))

	client := NewHTTPClient(10, 0)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 15, transport.MaxConnsPerHost)
	assert.Equal(t, time.Duration(0), client.Timeout)
}
