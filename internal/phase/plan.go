package phase

import "github.com/studiowebux/liftload/internal/config"

// Plan describes the shape of one phase
type Plan struct {
	Number    int
	Workers   int
	WriteSize int // requests per worker write batch
	ReadSize  int // requests per worker read batch
}

// Requests returns the number of logical calls the phase issues
func (p Plan) Requests() int {
	return p.Workers * (p.WriteSize + p.ReadSize)
}

// QuarterWorkers returns ceil(maxThreads/4), the worker count of the warm-up and
// cool-down phases
func QuarterWorkers(maxThreads int) int {
	return (maxThreads + 3) / 4
}

// Plans returns the three phases for w in order
func Plans(w config.Workload) []Plan {
	quarter := QuarterWorkers(w.MaxThreads)
	return []Plan{
		{Number: 1, Workers: quarter, WriteSize: w.WriteBatch, ReadSize: w.ReadBatch},
		{Number: 2, Workers: w.MaxThreads, WriteSize: w.WriteBatch, ReadSize: w.ReadBatch},
		{Number: 3, Workers: quarter, WriteSize: w.WriteBatch, ReadSize: w.FinalReadBatch},
	}
}
