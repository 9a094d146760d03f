package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

// evalInterval is how often the scheduler reclassifies listings and
// checks tier due times. It only bounds scheduling latency; actual
// scrape cadence comes from the per-tier intervals.
const evalInterval = 30 * time.Second

// Pipeline is the scrape-and-track cycle the scheduler triggers. Quick
// cycles scrape and record bids; full cycles additionally recompute
// downstream analytics.
type Pipeline interface {
	QuickCycle(ctx context.Context) error
	FullCycle(ctx context.Context) error
}

// ListingSource supplies the current listing set for urgency
// classification.
type ListingSource interface {
	CurrentListings() ([]*models.ListingRecord, error)
}

// RunRecord is one completed pipeline invocation in the recent-run
// history.
type RunRecord struct {
	Tier      string        `json:"tier"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// JobStatus describes one active recurring tier job.
type JobStatus struct {
	Tier            string    `json:"tier"`
	IntervalMinutes int       `json:"intervalMinutes"`
	NextRunTime     time.Time `json:"nextRunTime"`
	Listings        int       `json:"listings"`
}

// Status is the scheduler's boundary payload.
type Status struct {
	LastFullRunTimestamp time.Time   `json:"lastFullRunTimestamp"`
	ActiveJobs           []JobStatus `json:"activeJobs"`
	RecentRunHistory     []RunRecord `json:"recentRunHistory"`
}

// Scheduler reclassifies tracked listings by urgency on a fixed beat
// and triggers pipeline runs per non-empty tier at that tier's
// interval. It is single-threaded: runs never overlap, and operators
// stop it by cancelling its context, never by interrupting a run.
type Scheduler struct {
	cfg      *config.SchedulerConfig
	source   ListingSource
	pipeline Pipeline
	logger   logger.Logger
	now      func() time.Time

	mu          sync.Mutex
	nextRun     map[Tier]time.Time
	tierCounts  map[Tier]int
	lastFullRun time.Time
	history     []RunRecord
}

// New creates a Scheduler over the given listing source and pipeline.
func New(cfg *config.SchedulerConfig, source ListingSource, pipeline Pipeline) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		source:     source,
		pipeline:   pipeline,
		logger:     logger.GetLogger(),
		now:        time.Now,
		nextRun:    make(map[Tier]time.Time),
		tierCounts: make(map[Tier]int),
	}
}

// Run blocks until the context is cancelled, evaluating the schedule
// on a fixed beat. The first pass happens immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started")
	s.pass(ctx)

	ticker := time.NewTicker(evalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

// pass reclassifies all listings and runs every due, non-empty tier.
// Tiers execute sequentially, most urgent first, so two runs can never
// overlap within one deployment.
func (s *Scheduler) pass(ctx context.Context) {
	now := s.now()

	listings, err := s.source.CurrentListings()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load listings for scheduling pass")
		return
	}

	counts := make(map[Tier]int)
	for _, l := range listings {
		if l.IsBundle() || l.ClosingTime.IsZero() {
			continue
		}
		tier := Classify(now, l.ClosingTime)
		if tier == TierExpired {
			continue
		}
		counts[tier]++
	}

	s.mu.Lock()
	s.tierCounts = counts
	s.mu.Unlock()

	for _, tier := range schedulableTiers {
		if counts[tier] == 0 {
			continue
		}
		if !s.due(tier, now) {
			continue
		}
		logger.LogSchedulerTick(string(tier), counts[tier], IntervalFor(s.cfg, tier))
		s.runTier(ctx, tier)
		if ctx.Err() != nil {
			return
		}
	}
}

// due reports whether a tier's interval has elapsed. A tier never seen
// before is due immediately.
func (s *Scheduler) due(tier Tier, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.nextRun[tier]
	return !ok || !now.Before(next)
}

// runTier executes one pipeline invocation for a tier and records it.
func (s *Scheduler) runTier(ctx context.Context, tier Tier) {
	start := s.now()

	var err error
	if quickTier(tier) {
		err = s.pipeline.QuickCycle(ctx)
	} else {
		err = s.pipeline.FullCycle(ctx)
	}
	finished := s.now()

	rec := RunRecord{
		Tier:      string(tier),
		StartedAt: start,
		Duration:  finished.Sub(start),
	}
	if err != nil {
		rec.Error = err.Error()
		s.logger.WithError(err).WithField("tier", string(tier)).Error("Scheduled run failed, will retry on next trigger")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun[tier] = finished.Add(IntervalFor(s.cfg, tier))
	if err == nil && !quickTier(tier) {
		s.lastFullRun = finished
	}
	s.history = append(s.history, rec)
	if len(s.history) > s.cfg.RunHistorySize {
		s.history = s.history[len(s.history)-s.cfg.RunHistorySize:]
	}
}

// Status returns a copy of the scheduler's boundary payload.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		LastFullRunTimestamp: s.lastFullRun,
		RecentRunHistory:     append([]RunRecord(nil), s.history...),
	}
	for _, tier := range schedulableTiers {
		if s.tierCounts[tier] == 0 {
			continue
		}
		st.ActiveJobs = append(st.ActiveJobs, JobStatus{
			Tier:            string(tier),
			IntervalMinutes: int(IntervalFor(s.cfg, tier).Minutes()),
			NextRunTime:     s.nextRun[tier],
			Listings:        s.tierCounts[tier],
		})
	}
	return st
}
