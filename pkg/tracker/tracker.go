package tracker

import (
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/retry"
	"github.com/jacobdurrah/auction-bdding/pkg/storage"
)

// summaryKeep bounds the pass-summary log carried in the history
// document.
const summaryKeep = 100

// Tracker ingests full listing snapshots and maintains the per-listing
// bid time series plus derived metrics. It is the sole writer of the
// history document; one snapshot pass runs at a time.
type Tracker struct {
	store   *storage.Manager
	retries int
	doc     *storage.HistoryDocument
	logger  logger.Logger
	now     func() time.Time
}

// New loads the persisted history document and returns a Tracker over
// it.
func New(store *storage.Manager, cfg *config.TrackerConfig) (*Tracker, error) {
	doc, err := store.LoadHistory()
	if err != nil {
		return nil, err
	}
	return &Tracker{
		store:   store,
		retries: cfg.PersistRetries,
		doc:     doc,
		logger:  logger.GetLogger(),
		now:     time.Now,
	}, nil
}

// RecordSnapshot diffs one full set of current listings against the
// stored histories, appends a BidSnapshot for every listing whose bid
// moved, recomputes metrics, and persists everything. Bundle lots
// (no individual closing time) are excluded entirely. Identical input
// recorded twice yields zero new changes and no duplicate snapshots
// on the second pass.
//
// On persistence failure the in-memory state is kept, not rolled
// back: the next successful pass writes the reconciled whole. The
// error is still returned so callers see the divergence.
func (t *Tracker) RecordSnapshot(records []*models.ListingRecord) (*models.SnapshotSummary, error) {
	start := t.now()
	newChanges := 0

	for _, r := range records {
		if r.IsBundle() {
			continue
		}
		if t.observe(r, start) {
			newChanges++
		}
	}

	summary := &models.SnapshotSummary{
		Timestamp:    start,
		TotalTracked: len(t.doc.Histories),
		NewChanges:   newChanges,
	}
	t.doc.Summaries = append(t.doc.Summaries, *summary)
	if len(t.doc.Summaries) > summaryKeep {
		t.doc.Summaries = t.doc.Summaries[len(t.doc.Summaries)-summaryKeep:]
	}

	err := t.persist(records)
	logger.LogSnapshotPass(summary.TotalTracked, summary.NewChanges, t.now().Sub(start))
	return summary, err
}

// observe folds one listing into its history and reports whether the
// bid moved.
func (t *Tracker) observe(r *models.ListingRecord, now time.Time) bool {
	h, ok := t.doc.Histories[r.AuctionID]
	if !ok {
		h = &models.ListingHistory{
			AuctionID: r.AuctionID,
			Address:   r.Address,
			FirstBid:  r.BidAmount(),
			FirstSeen: now,
		}
		t.doc.Histories[r.AuctionID] = h
	}

	latest := h.Latest()
	changed := false

	switch {
	case latest == nil:
		// First observation seeds the series without counting as a
		// change.
		h.Snapshots = append(h.Snapshots, snapshotOf(r, now))
	case r.BidAmount() != effectiveBid(latest):
		prev := effectiveBid(latest)
		snap := snapshotOf(r, now)
		snap.Change = r.BidAmount() - prev
		if prev > 0 {
			snap.ChangePercent = snap.Change / prev * 100
		}
		h.Snapshots = append(h.Snapshots, snap)
		changed = true
	}

	h.Metrics = computeMetrics(h, now)
	return changed
}

func snapshotOf(r *models.ListingRecord, now time.Time) models.BidSnapshot {
	return models.BidSnapshot{
		Timestamp:  now,
		CurrentBid: r.CurrentBidAmount,
		MinimumBid: r.MinimumBidAmount,
		HasBids:    r.HasBids,
		Status:     r.Status,
	}
}

// persist writes the raw audit snapshot and the history document, each
// with bounded retries.
func (t *Tracker) persist(records []*models.ListingRecord) error {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = t.retries
	cfg.Logger = t.logger

	if err := retry.Do(func() error {
		_, err := t.store.SaveRawSnapshot(records)
		return err
	}, cfg); err != nil {
		t.logger.WithError(err).Error("Raw snapshot persistence failed, in-memory history retained")
		return err
	}

	if err := retry.Do(func() error {
		return t.store.SaveHistory(t.doc)
	}, cfg); err != nil {
		t.logger.WithError(err).Error("History persistence failed, in-memory history retained")
		return err
	}
	return nil
}

// History returns the tracked history for one auction ID.
func (t *Tracker) History(auctionID string) (*models.ListingHistory, bool) {
	h, ok := t.doc.Histories[auctionID]
	return h, ok
}

// Summaries returns the recent pass summaries, newest last.
func (t *Tracker) Summaries() []models.SnapshotSummary {
	return append([]models.SnapshotSummary(nil), t.doc.Summaries...)
}

// TrackedCount returns the number of listings with histories.
func (t *Tracker) TrackedCount() int {
	return len(t.doc.Histories)
}
