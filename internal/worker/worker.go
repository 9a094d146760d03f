package worker

import (
	"context"
	"errors"

	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/ratelimit"
	"github.com/jacobdurrah/auction-bdding/pkg/wayne"
)

// PageFetcher fetches and parses one listing detail page. The chromedp
// browser in pkg/wayne is the production implementation; tests swap in
// a fake.
type PageFetcher interface {
	FetchListing(ctx context.Context, id int) (*models.ListingRecord, error)
}

// Worker scrapes one contiguous ID range through a single fetcher. It
// is finite and not restartable: a crashed worker's remaining range is
// the coordinator's problem, not resumed here.
type Worker struct {
	job     models.ScrapeJob
	fetcher PageFetcher
	pacer   ratelimit.Limiter
	events  chan<- Event
	logger  logger.Logger
}

// New creates a Worker that emits its event stream into events.
func New(job models.ScrapeJob, fetcher PageFetcher, pacer ratelimit.Limiter, events chan<- Event) *Worker {
	return &Worker{
		job:     job,
		fetcher: fetcher,
		pacer:   pacer,
		events:  events,
		logger:  logger.GetLogger().WithField("worker_id", job.WorkerID),
	}
}

// Run processes the job's IDs in strictly ascending order and emits
// Progress/Result/Error events, finishing with Complete. Per-ID
// failures are recovered locally: one bad ID never aborts the range.
// The only abnormal exit is context cancellation or a panic, both of
// which the coordinator treats as a whole-run failure.
func (w *Worker) Run(ctx context.Context) error {
	total := w.job.Size()
	completed := 0

	for id := w.job.StartID; id <= w.job.EndID; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Burst pacing: the bucket allows a run of IDs back to back,
		// then enforces the configured breather.
		w.pacer.Wait()

		record, err := w.fetcher.FetchListing(ctx, id)
		switch {
		case err == nil:
			w.emit(Event{Kind: EventResult, WorkerID: w.job.WorkerID, Record: record})
		case errors.Is(err, wayne.ErrListingGone):
			// Soft-404 or removed listing: no record, but the ID still
			// counts toward progress.
			w.logger.WithField("listing_id", id).Debug("Listing gone, skipping")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			w.emit(Event{
				Kind:      EventError,
				WorkerID:  w.job.WorkerID,
				ListingID: id,
				Message:   err.Error(),
			})
		}

		completed++
		w.emit(Event{
			Kind:     EventProgress,
			WorkerID: w.job.WorkerID,
			Progress: Progress{Current: completed, Total: total},
		})
	}

	w.emit(Event{Kind: EventComplete, WorkerID: w.job.WorkerID})
	return nil
}

func (w *Worker) emit(ev Event) {
	w.events <- ev
}
