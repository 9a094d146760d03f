package scraper

import (
	"sync"
	"time"

	"github.com/jacobdurrah/auction-bdding/internal/worker"
)

// RunError is one recovered per-listing failure surfaced in the run
// status.
type RunError struct {
	WorkerID  int    `json:"workerId"`
	ListingID int    `json:"listingId"`
	Message   string `json:"message"`
}

// Status is a point-in-time view of a scrape run. Completed and Total
// are sums over the per-worker counters, so they stay correct no
// matter how worker events interleave.
type Status struct {
	IsRunning  bool              `json:"isRunning"`
	Completed  int               `json:"completed"`
	Total      int               `json:"total"`
	PerWorker  []worker.Progress `json:"perWorkerProgress"`
	Errors     []RunError        `json:"errors"`
	StartedAt  time.Time         `json:"startedAt,omitempty"`
	FinishedAt time.Time         `json:"finishedAt,omitempty"`
}

// statusBoard guards the live run status. Readers get a copy; the
// aggregation loop is the only writer.
type statusBoard struct {
	mu     sync.Mutex
	status Status
}

func (b *statusBoard) begin(workers, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = Status{
		IsRunning: true,
		Total:     total,
		PerWorker: make([]worker.Progress, workers),
		StartedAt: time.Now(),
	}
}

// setProgress replaces one worker's counter and folds the delta into
// the global completed count. Addition commutes, so the global view is
// consistent regardless of event ordering across workers.
func (b *statusBoard) setProgress(workerID int, p worker.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if workerID < 0 || workerID >= len(b.status.PerWorker) {
		return
	}
	prev := b.status.PerWorker[workerID]
	b.status.PerWorker[workerID] = p
	b.status.Completed += p.Current - prev.Current
}

func (b *statusBoard) addError(e RunError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.Errors = append(b.status.Errors, e)
}

func (b *statusBoard) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.IsRunning = false
	b.status.FinishedAt = time.Now()
}

// snapshot returns a copy safe to hand outside the lock.
func (b *statusBoard) snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.status
	s.PerWorker = append([]worker.Progress(nil), b.status.PerWorker...)
	s.Errors = append([]RunError(nil), b.status.Errors...)
	return s
}
