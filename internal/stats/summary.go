package stats

import (
	"sort"
	"time"

	"github.com/studiowebux/liftload/internal/types"
)

// Summary holds latency statistics for one request type
type Summary struct {
	RequestType types.RequestType
	Count       int
	Mean        time.Duration
	Median      time.Duration
	P99         time.Duration
	Max         time.Duration
}

// Percentile calculates the percentile value of sorted (p between 0 and 100)
// using linear interpolation between the closest ranks
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}

// Summarize computes a Summary over latencies
func Summarize(requestType types.RequestType, latencies []time.Duration) Summary {
	s := Summary{RequestType: requestType, Count: len(latencies)}
	if len(latencies) == 0 {
		return s
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	s.Mean = total / time.Duration(len(sorted))
	s.Median = Percentile(sorted, 50)
	s.P99 = Percentile(sorted, 99)
	s.Max = sorted[len(sorted)-1]
	return s
}
