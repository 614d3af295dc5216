package stats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/liftload/internal/types"
)

func TestCounters_ConcurrentAdds(t *testing.T) {
	var c Counters
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c.Add(i%5 != 0)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(4000), snap.Total)
	assert.Equal(t, int64(3200), snap.Successful)
	assert.Equal(t, int64(800), snap.Failed)
	assert.Equal(t, snap.Total, snap.Successful+snap.Failed)
	assert.InDelta(t, 80.0, snap.SuccessRate(), 0.001)
}

func TestSnapshot_Throughput(t *testing.T) {
	s := Snapshot{Total: 1000}
	assert.InDelta(t, 500.0, s.Throughput(2), 0.001)
	assert.Zero(t, s.Throughput(0))
	assert.Zero(t, Snapshot{}.SuccessRate())
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{10, 20, 30, 40, 50}

	assert.Equal(t, time.Duration(10), Percentile(sorted, 0))
	assert.Equal(t, time.Duration(30), Percentile(sorted, 50))
	assert.Equal(t, time.Duration(50), Percentile(sorted, 100))
	assert.Equal(t, time.Duration(45), Percentile(sorted, 87.5))
	assert.Zero(t, Percentile(nil, 50))
}

func TestSummarize(t *testing.T) {
	latencies := []time.Duration{
		40 * time.Millisecond,
		10 * time.Millisecond,
		30 * time.Millisecond,
		20 * time.Millisecond,
	}

	s := Summarize(types.RequestTypePost, latencies)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 25*time.Millisecond, s.Mean)
	assert.Equal(t, 25*time.Millisecond, s.Median)
	assert.Equal(t, 40*time.Millisecond, s.Max)
	assert.True(t, s.P99 > 39*time.Millisecond && s.P99 <= 40*time.Millisecond)

	// input order is left untouched
	assert.Equal(t, 40*time.Millisecond, latencies[0])

	empty := Summarize(types.RequestTypeSkierDayVertical, nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Max)
}

func TestAggregator_RecordAndSummaries(t *testing.T) {
	agg := NewAggregator(nil, nil)

	agg.RecordCall(types.Outcome{Success: true, RequestType: types.RequestTypePost})
	agg.RecordCall(types.Outcome{
		Success:      false,
		RequestType:  types.RequestTypeSkierResortTotals,
		ResponseCode: 500,
		Err:          errors.New("exhausted retries"),
	})

	agg.RecordSample(types.Sample{RequestType: types.RequestTypePost, Latency: 10 * time.Millisecond, ResponseCode: 200})
	agg.RecordSample(types.Sample{RequestType: types.RequestTypePost, Latency: 30 * time.Millisecond, ResponseCode: 200})
	agg.RecordSample(types.Sample{RequestType: types.RequestTypeSkierResortTotals, Latency: 5 * time.Millisecond, ResponseCode: 500})

	snap := agg.Snapshot()
	assert.Equal(t, Snapshot{Total: 2, Successful: 1, Failed: 1}, snap)
	assert.Len(t, agg.Samples(), 3)

	summaries := agg.Summaries()
	require.Len(t, summaries, len(types.AllRequestTypes))

	byType := make(map[types.RequestType]Summary)
	for _, s := range summaries {
		byType[s.RequestType] = s
	}
	assert.Equal(t, 2, byType[types.RequestTypePost].Count)
	assert.Equal(t, 20*time.Millisecond, byType[types.RequestTypePost].Mean)
	assert.Equal(t, 1, byType[types.RequestTypeSkierResortTotals].Count)
	assert.Zero(t, byType[types.RequestTypeSkierDayVertical].Count)
}

func TestAggregator_BatchesOrderedByStart(t *testing.T) {
	agg := NewAggregator(nil, nil)
	base := time.Now()

	agg.RecordBatch(types.BatchOutcome{Phase: 1, WorkerID: 2, StartTime: base.Add(2 * time.Second)})
	agg.RecordBatch(types.BatchOutcome{Phase: 1, WorkerID: 1, StartTime: base})
	agg.RecordBatch(types.BatchOutcome{Phase: 2, WorkerID: 1, StartTime: base, Failed: true})

	phase1 := agg.Batches(1)
	require.Len(t, phase1, 2)
	assert.Equal(t, 1, phase1[0].WorkerID)
	assert.Equal(t, 2, phase1[1].WorkerID)
	assert.Len(t, agg.Batches(2), 1)
	assert.Empty(t, agg.Batches(3))
}

func TestAggregator_ConcurrentSamples(t *testing.T) {
	agg := NewAggregator(nil, NewMetrics())
	var wg sync.WaitGroup

	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				agg.RecordSample(types.Sample{RequestType: types.RequestTypePost, ResponseCode: 200})
				agg.RecordCall(types.Outcome{Success: true, RequestType: types.RequestTypePost})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, agg.Samples(), 1000)
	assert.Equal(t, int64(1000), agg.Snapshot().Total)
}

func TestWriteCSV(t *testing.T) {
	start := time.UnixMilli(1700000000123)
	samples := []types.Sample{
		{StartTime: start, Latency: 42 * time.Millisecond, RequestType: types.RequestTypePost, ResponseCode: 200},
		{StartTime: start, Latency: 7 * time.Millisecond, RequestType: types.RequestTypeSkierDayVertical, ResponseCode: 500},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samples))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"1700000000123", "42", "POST", "200"}, rows[1])
	assert.Equal(t, []string{"1700000000123", "7", "GET-SkierDayVertical", "500"}, rows[2])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, WriteCSVFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "startTime,latency,requestType,responseCode\n", string(data))

	assert.Error(t, WriteCSVFile(filepath.Join(t.TempDir(), "missing", "x.csv"), nil))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	agg := NewAggregator(nil, m)

	agg.RecordCall(types.Outcome{Success: true, RequestType: types.RequestTypePost})
	agg.RecordSample(types.Sample{RequestType: types.RequestTypePost, ResponseCode: 200, Latency: time.Millisecond})
	agg.RecordBatch(types.BatchOutcome{Phase: 1, Kind: types.BatchWrite})
	m.GateFired(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `liftload_calls_total{request_type="POST",result="success"} 1`))
	assert.True(t, strings.Contains(body, `liftload_batches_total{kind="write",phase="1"} 1`))
	assert.True(t, strings.Contains(body, `liftload_gates_fired_total{phase="1"} 1`))
	assert.True(t, strings.Contains(body, "liftload_attempt_duration_seconds_count"))
}
