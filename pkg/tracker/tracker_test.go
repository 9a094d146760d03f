package tracker

import (
	"testing"
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/storage"
)

func newTestTracker(t *testing.T) (*Tracker, *storage.Manager, *config.TrackerConfig) {
	t.Helper()
	cfg := &config.TrackerConfig{
		DataDir:        t.TempDir(),
		RawKeep:        10,
		PersistRetries: 2,
	}
	store, err := storage.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tr, err := New(store, cfg)
	if err != nil {
		t.Fatalf("New tracker: %v", err)
	}
	return tr, store, cfg
}

func listing(id string, minBid, curBid float64, hasBids bool) *models.ListingRecord {
	cur := ""
	if hasBids {
		cur = "$900.00"
	}
	return &models.ListingRecord{
		AuctionID:        id,
		Address:          "441 Alter Rd",
		MinimumBidAmount: minBid,
		CurrentBid:       cur,
		CurrentBidAmount: curBid,
		HasBids:          hasBids,
		BiddingCloses:    "9/15/2026 5:00:00 PM",
		ScrapedAt:        time.Now(),
	}
}

func TestRecordSnapshotSeedsNewListing(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	summary, err := tr.RecordSnapshot([]*models.ListingRecord{
		listing("250900001", 500, 0, false),
	})
	if err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if summary.TotalTracked != 1 {
		t.Errorf("TotalTracked = %d, want 1", summary.TotalTracked)
	}
	if summary.NewChanges != 0 {
		t.Errorf("first observation counted as change: NewChanges = %d", summary.NewChanges)
	}

	h, ok := tr.History("250900001")
	if !ok {
		t.Fatal("history not created")
	}
	if h.FirstBid != 500 {
		t.Errorf("FirstBid = %f, want minimum bid 500 when no bids exist", h.FirstBid)
	}
	if len(h.Snapshots) != 1 {
		t.Errorf("expected 1 seeded snapshot, got %d", len(h.Snapshots))
	}
}

func TestRecordSnapshotSeedsFirstBidFromCurrentWhenBidsExist(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	if _, err := tr.RecordSnapshot([]*models.ListingRecord{
		listing("250900001", 500, 900, true),
	}); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}

	h, _ := tr.History("250900001")
	if h.FirstBid != 900 {
		t.Errorf("FirstBid = %f, want current bid 900", h.FirstBid)
	}
}

func TestRecordSnapshotIdempotent(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	input := []*models.ListingRecord{listing("250900001", 500, 900, true)}

	if _, err := tr.RecordSnapshot(input); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	h, _ := tr.History("250900001")
	metricsBefore := h.Metrics
	snapshotsBefore := len(h.Snapshots)

	summary, err := tr.RecordSnapshot(input)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if summary.NewChanges != 0 {
		t.Errorf("identical input produced %d new changes", summary.NewChanges)
	}
	if len(h.Snapshots) != snapshotsBefore {
		t.Errorf("identical input appended snapshots: %d -> %d", snapshotsBefore, len(h.Snapshots))
	}
	if h.Metrics != metricsBefore {
		t.Errorf("metrics drifted on identical input: %+v -> %+v", metricsBefore, h.Metrics)
	}
}

func TestRecordSnapshotTracksBidChange(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	if _, err := tr.RecordSnapshot([]*models.ListingRecord{
		listing("250900001", 500, 900, true),
	}); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	raised := listing("250900001", 500, 1200, true)
	summary, err := tr.RecordSnapshot([]*models.ListingRecord{raised})
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if summary.NewChanges != 1 {
		t.Fatalf("NewChanges = %d, want 1", summary.NewChanges)
	}

	h, _ := tr.History("250900001")
	latest := h.Latest()
	if latest.Change != 300 {
		t.Errorf("Change = %f, want 300", latest.Change)
	}
	if latest.ChangePercent < 33.3 || latest.ChangePercent > 33.4 {
		t.Errorf("ChangePercent = %f, want ~33.3", latest.ChangePercent)
	}
	if h.Metrics.TotalChanges != 1 {
		t.Errorf("TotalChanges = %d, want 1", h.Metrics.TotalChanges)
	}
}

func TestRecordSnapshotExcludesBundles(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	bundle := listing("250900777", 500, 900, true)
	bundle.BiddingCloses = "N/A"
	noClose := listing("250900778", 500, 0, false)
	noClose.BiddingCloses = ""

	summary, err := tr.RecordSnapshot([]*models.ListingRecord{bundle, noClose})
	if err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if summary.TotalTracked != 0 {
		t.Errorf("bundle lots tracked: TotalTracked = %d", summary.TotalTracked)
	}
	if _, ok := tr.History("250900777"); ok {
		t.Error("bundle lot has a history")
	}
}

func TestRecordSnapshotFirstBidChangeCountsFromPrior(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	// Listing starts with no bids at a 500 minimum, then gets a first
	// bid of 600: change is measured against the prior effective bid.
	if _, err := tr.RecordSnapshot([]*models.ListingRecord{
		listing("250900001", 500, 0, false),
	}); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	summary, err := tr.RecordSnapshot([]*models.ListingRecord{
		listing("250900001", 500, 600, true),
	})
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if summary.NewChanges != 1 {
		t.Fatalf("NewChanges = %d, want 1", summary.NewChanges)
	}

	h, _ := tr.History("250900001")
	if latest := h.Latest(); latest.Change != 100 {
		t.Errorf("Change = %f, want 100", latest.Change)
	}
}

func TestTrackerStateSurvivesReload(t *testing.T) {
	tr, store, cfg := newTestTracker(t)

	if _, err := tr.RecordSnapshot([]*models.ListingRecord{
		listing("250900001", 500, 900, true),
	}); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}

	reloaded, err := New(store, cfg)
	if err != nil {
		t.Fatalf("reload tracker: %v", err)
	}
	h, ok := reloaded.History("250900001")
	if !ok {
		t.Fatal("history lost across reload")
	}
	if h.FirstBid != 900 || len(h.Snapshots) != 1 {
		t.Errorf("reloaded history mismatch: %+v", h)
	}
	if len(reloaded.Summaries()) != 1 {
		t.Errorf("expected 1 persisted summary, got %d", len(reloaded.Summaries()))
	}
}
