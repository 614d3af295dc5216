package workload

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/types"
)

// Request is one logical call a worker will issue
type Request struct {
	Method string
	URL    string
	Body   []byte
	Type   types.RequestType
}

// Batch is the ordered list of requests one worker runs serially
type Batch struct {
	Phase    int
	WorkerID int
	Kind     types.BatchKind
	Requests []Request
}

// Builder creates write and read batches for a workload
type Builder struct {
	workload config.Workload
	urls     URLBuilder
	shuffler *Shuffler
}

// NewBuilder returns a batch builder drawing randomness from shuffler
func NewBuilder(w config.Workload, shuffler *Shuffler) *Builder {
	if shuffler == nil {
		shuffler = NewShuffler(nil)
	}
	return &Builder{
		workload: w,
		urls:     NewURLBuilder(w),
		shuffler: shuffler,
	}
}

// WriteBatch builds n lift-ride POSTs. skiers, times and lifts are shuffled
// once, then drawn round-robin with wrap-around.
func (b *Builder) WriteBatch(phase, workerID, n int, skiers, times, lifts *Pool) (Batch, error) {
	batch := Batch{Phase: phase, WorkerID: workerID, Kind: types.BatchWrite}
	if n == 0 {
		return batch, nil
	}
	if skiers.Len() == 0 || times.Len() == 0 || lifts.Len() == 0 {
		return batch, fmt.Errorf("%w: worker %d in phase %d has an empty skier, time or lift pool",
			config.ErrInvalidConfiguration, workerID, phase)
	}

	skiers.Shuffle(b.shuffler)
	times.Shuffle(b.shuffler)
	lifts.Shuffle(b.shuffler)

	writeURL := b.urls.Write()
	batch.Requests = make([]Request, 0, n)
	for i := 0; i < n; i++ {
		body, err := json.Marshal(types.LiftRide{
			ResortID: b.workload.ResortName,
			DayID:    b.workload.SkiDay,
			SkierID:  skiers.Next(),
			Time:     times.Next(),
			LiftID:   lifts.Next(),
		})
		if err != nil {
			return batch, fmt.Errorf("failed to encode lift ride: %w", err)
		}
		batch.Requests = append(batch.Requests, Request{
			Method: http.MethodPost,
			URL:    writeURL,
			Body:   body,
			Type:   types.RequestTypePost,
		})
	}

	return batch, nil
}

// ReadBatch builds m GETs from the worker's skiers, alternating the
// day-vertical and resort-totals endpoints
func (b *Builder) ReadBatch(phase, workerID, m int, skiers *Pool) (Batch, error) {
	batch := Batch{Phase: phase, WorkerID: workerID, Kind: types.BatchRead}
	if m == 0 {
		return batch, nil
	}
	if skiers.Len() == 0 {
		return batch, fmt.Errorf("%w: worker %d in phase %d has no skiers",
			config.ErrInvalidConfiguration, workerID, phase)
	}

	skiers.Shuffle(b.shuffler)

	batch.Requests = make([]Request, 0, m)
	for i := 0; i < m; i++ {
		skierID := skiers.Next()
		req := Request{Method: http.MethodGet}
		if i%2 == 0 {
			req.URL = b.urls.SkierDay(skierID)
			req.Type = types.RequestTypeSkierDayVertical
		} else {
			req.URL = b.urls.SkierVertical(skierID)
			req.Type = types.RequestTypeSkierResortTotals
		}
		batch.Requests = append(batch.Requests, req)
	}

	return batch, nil
}
