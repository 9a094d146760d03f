package tracker

import (
	"testing"
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

func TestComputeMetricsBiddingWarScoresFull(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// 12 changes over exactly 2 days, last one 30 minutes ago, 60%
	// total increase, one 25% single-step jump.
	h := &models.ListingHistory{
		AuctionID: "250900001",
		FirstBid:  1000,
	}
	start := now.Add(-48*time.Hour - 30*time.Minute)
	interval := 48 * time.Hour / 12

	bids := []float64{1000, 1250}
	step := (1600.0 - 1250.0) / 11
	for i := 1; i <= 11; i++ {
		bids = append(bids, 1250+step*float64(i))
	}

	for i, bid := range bids {
		h.Snapshots = append(h.Snapshots, models.BidSnapshot{
			Timestamp:  start.Add(time.Duration(i) * interval),
			CurrentBid: bid,
			HasBids:    true,
		})
	}

	m := computeMetrics(h, now)

	if m.TotalChanges != 12 {
		t.Errorf("TotalChanges = %d, want 12", m.TotalChanges)
	}
	if m.BidVelocity < 5.9 || m.BidVelocity > 6.1 {
		t.Errorf("BidVelocity = %f, want ~6", m.BidVelocity)
	}
	if m.LastChangeHours == nil || *m.LastChangeHours > 1 {
		t.Errorf("LastChangeHours = %v, want ~0.5", m.LastChangeHours)
	}
	if m.TotalIncreasePercent < 59.9 || m.TotalIncreasePercent > 60.1 {
		t.Errorf("TotalIncreasePercent = %f, want 60", m.TotalIncreasePercent)
	}
	if m.CompetitionScore != 100 {
		t.Errorf("CompetitionScore = %d, want 100", m.CompetitionScore)
	}
	if m.CompetitionLevel != LevelVeryHigh {
		t.Errorf("CompetitionLevel = %s, want %s", m.CompetitionLevel, LevelVeryHigh)
	}
}

func TestComputeMetricsNoChanges(t *testing.T) {
	now := time.Now()
	h := &models.ListingHistory{
		AuctionID: "250900002",
		FirstBid:  500,
		Snapshots: []models.BidSnapshot{
			{Timestamp: now.Add(-2 * time.Hour), MinimumBid: 500},
		},
	}

	m := computeMetrics(h, now)

	if m.TotalChanges != 0 {
		t.Errorf("TotalChanges = %d, want 0", m.TotalChanges)
	}
	if m.LastChangeHours != nil {
		t.Errorf("LastChangeHours = %v, want nil", *m.LastChangeHours)
	}
	if m.BidVelocity != 0 {
		t.Errorf("BidVelocity = %f, want 0", m.BidVelocity)
	}
	if m.CompetitionScore != 0 || m.CompetitionLevel != LevelLow {
		t.Errorf("score/level = %d/%s, want 0/%s", m.CompetitionScore, m.CompetitionLevel, LevelLow)
	}
}

func TestComputeMetricsVelocityDenominatorFloor(t *testing.T) {
	now := time.Now()

	// Two snapshots ten minutes apart: the denominator floors at one
	// hour so velocity cannot explode.
	h := &models.ListingHistory{
		AuctionID: "250900003",
		FirstBid:  100,
		Snapshots: []models.BidSnapshot{
			{Timestamp: now.Add(-10 * time.Minute), CurrentBid: 100, HasBids: true},
			{Timestamp: now, CurrentBid: 150, HasBids: true},
		},
	}

	m := computeMetrics(h, now)

	if m.BidVelocity != 1/minElapsedDays {
		t.Errorf("BidVelocity = %f, want %f", m.BidVelocity, 1/minElapsedDays)
	}
}

func TestCompetitionLevelCuts(t *testing.T) {
	cases := []struct {
		score int
		level string
	}{
		{0, LevelLow},
		{19, LevelLow},
		{20, LevelMedium},
		{39, LevelMedium},
		{40, LevelHigh},
		{69, LevelHigh},
		{70, LevelVeryHigh},
		{100, LevelVeryHigh},
	}
	for _, tc := range cases {
		if got := competitionLevel(tc.score); got != tc.level {
			t.Errorf("competitionLevel(%d) = %s, want %s", tc.score, got, tc.level)
		}
	}
}

func TestEffectiveBidPrefersCurrentWhenBidsExist(t *testing.T) {
	withBids := &models.BidSnapshot{CurrentBid: 900, MinimumBid: 500, HasBids: true}
	if got := effectiveBid(withBids); got != 900 {
		t.Errorf("effectiveBid = %f, want 900", got)
	}
	noBids := &models.BidSnapshot{CurrentBid: 0, MinimumBid: 500}
	if got := effectiveBid(noBids); got != 500 {
		t.Errorf("effectiveBid = %f, want 500", got)
	}
}
