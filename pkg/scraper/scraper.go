package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jacobdurrah/auction-bdding/internal/worker"
	"github.com/jacobdurrah/auction-bdding/pkg/config"
	errs "github.com/jacobdurrah/auction-bdding/pkg/errors"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/ratelimit"
	"github.com/jacobdurrah/auction-bdding/pkg/wayne"
)

// FetcherFactory builds one PageFetcher per worker. The production
// factory launches a dedicated headless Chrome process seeded from the
// job's session; tests substitute fakes.
type FetcherFactory func(ctx context.Context, job models.ScrapeJob) (worker.PageFetcher, func(), error)

// ChromeFetcherFactory returns the production factory: one isolated
// browser process per worker, each seeded from the shared session.
func ChromeFetcherFactory(site *config.SiteConfig, scrape *config.ScrapeConfig) FetcherFactory {
	return func(ctx context.Context, job models.ScrapeJob) (worker.PageFetcher, func(), error) {
		b, err := wayne.NewBrowser(ctx, site, scrape, job.Session)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
}

// Coordinator partitions an ID range across workers, runs them in
// parallel, and folds their event streams into one result set and one
// live status view. A run is all or nothing: any worker crash fails
// the whole run.
type Coordinator struct {
	cfg     *config.Config
	factory FetcherFactory
	board   statusBoard
	logger  logger.Logger
}

// New creates a Coordinator using the given fetcher factory.
func New(cfg *config.Config, factory FetcherFactory) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		factory: factory,
		logger:  logger.GetLogger(),
	}
}

// Status returns a copy of the current run status.
func (c *Coordinator) Status() Status {
	return c.board.snapshot()
}

// ScrapeRange scrapes the inclusive ID range [startID, endID] with the
// configured worker count and returns the extracted records ordered by
// worker index, ascending within each worker's sub-range. Per-ID
// failures are recorded in the status and skipped; a worker-level
// failure cancels the remaining workers and fails the run with no
// records.
func (c *Coordinator) ScrapeRange(ctx context.Context, startID, endID int, session *models.SessionState) ([]*models.ListingRecord, error) {
	jobs := PartitionRange(startID, endID, c.cfg.Scrape.Workers, session)
	if len(jobs) == 0 {
		return nil, fmt.Errorf("empty ID range [%d, %d]", startID, endID)
	}

	total := endID - startID + 1
	c.board.begin(len(jobs), total)
	defer c.board.finish()

	c.logger.InfoWithFields("Starting scrape run", map[string]interface{}{
		"start_id": startID,
		"end_id":   endID,
		"workers":  len(jobs),
		"total":    total,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan worker.Event, len(jobs)*4)
	workerErrs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job models.ScrapeJob) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					workerErrs[job.WorkerID] = errs.NewWorkerCrashError(job.WorkerID, fmt.Sprintf("panic: %v", r))
					cancel()
				}
			}()

			fetcher, closeFetcher, err := c.factory(runCtx, job)
			if err != nil {
				workerErrs[job.WorkerID] = errs.NewWorkerCrashError(job.WorkerID, fmt.Sprintf("browser launch failed: %v", err))
				cancel()
				return
			}
			defer closeFetcher()

			pacer := ratelimit.NewTokenBucket(c.cfg.Scrape.PauseEvery, c.cfg.Scrape.PauseDelay)
			if err := worker.New(job, fetcher, pacer, events).Run(runCtx); err != nil {
				workerErrs[job.WorkerID] = err
				cancel()
			}
		}(job)
	}

	go func() {
		wg.Wait()
		close(events)
	}()

	buffers := make([][]*models.ListingRecord, len(jobs))
	for ev := range events {
		switch ev.Kind {
		case worker.EventResult:
			buffers[ev.WorkerID] = append(buffers[ev.WorkerID], ev.Record)
			logger.LogListingScraped(ev.Record.AuctionID, ev.Record.Address, ev.Record.CurrentBidAmount)
		case worker.EventProgress:
			c.board.setProgress(ev.WorkerID, ev.Progress)
			if done := c.board.snapshot().Completed; done%50 == 0 || done == total {
				logger.LogScrapeProgress(done, total)
			}
		case worker.EventError:
			c.board.addError(RunError{
				WorkerID:  ev.WorkerID,
				ListingID: ev.ListingID,
				Message:   ev.Message,
			})
			c.logger.WarnWithFields("Listing scrape failed", map[string]interface{}{
				"worker_id":  ev.WorkerID,
				"listing_id": ev.ListingID,
				"error":      ev.Message,
			})
		case worker.EventComplete:
			c.logger.WithField("worker_id", ev.WorkerID).Debug("Worker range complete")
		}
	}

	if err := runError(workerErrs); err != nil {
		logger.LogWorkerCrash(crashWorkerID(err), err)
		return nil, err
	}

	records := make([]*models.ListingRecord, 0, total)
	for _, buf := range buffers {
		records = append(records, buf...)
	}

	status := c.board.snapshot()
	c.logger.InfoWithFields("Scrape run finished", map[string]interface{}{
		"records":   len(records),
		"completed": status.Completed,
		"errors":    len(status.Errors),
	})
	return records, nil
}

// runError picks the failure to report for a crashed run. A typed
// worker crash beats the context errors it caused in sibling workers.
func runError(workerErrs []error) error {
	var first error
	for _, err := range workerErrs {
		if err == nil {
			continue
		}
		var typed *errs.Error
		if errors.As(err, &typed) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}

func crashWorkerID(err error) int {
	var typed *errs.Error
	if errors.As(err, &typed) {
		return typed.WorkerID
	}
	return -1
}
