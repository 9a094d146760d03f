package tracker

import (
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

// minElapsedDays floors the velocity denominator so a history whose
// snapshots span less than an hour does not produce absurd
// changes-per-day figures.
const minElapsedDays = 1.0 / 24.0

// Competition level cuts over the 0-100 score.
const (
	LevelVeryHigh = "VERY HIGH"
	LevelHigh     = "HIGH"
	LevelMedium   = "MEDIUM"
	LevelLow      = "LOW"
)

// effectiveBid is the comparable bid amount for a snapshot: the
// current bid when one exists, otherwise the minimum.
func effectiveBid(s *models.BidSnapshot) float64 {
	if s.HasBids {
		return s.CurrentBid
	}
	return s.MinimumBid
}

// computeMetrics derives the full metric set from a history's snapshot
// sequence. Recomputed from scratch each pass; histories stay small
// enough that O(n) beats incremental bookkeeping.
func computeMetrics(h *models.ListingHistory, now time.Time) models.Metrics {
	m := models.Metrics{}
	if len(h.Snapshots) == 0 {
		m.CompetitionLevel = LevelLow
		return m
	}

	var lastChange *time.Time
	maxStepPercent := 0.0
	for i := 1; i < len(h.Snapshots); i++ {
		prev := effectiveBid(&h.Snapshots[i-1])
		cur := effectiveBid(&h.Snapshots[i])
		if cur == prev {
			continue
		}
		m.TotalChanges++
		ts := h.Snapshots[i].Timestamp
		lastChange = &ts
		if prev > 0 {
			step := (cur - prev) / prev * 100
			if step < 0 {
				step = -step
			}
			if step > maxStepPercent {
				maxStepPercent = step
			}
		}
	}

	first := h.Snapshots[0]
	last := h.Snapshots[len(h.Snapshots)-1]

	elapsedDays := last.Timestamp.Sub(first.Timestamp).Hours() / 24
	if elapsedDays < minElapsedDays {
		elapsedDays = minElapsedDays
	}
	m.BidVelocity = float64(m.TotalChanges) / elapsedDays

	if lastChange != nil {
		hours := now.Sub(*lastChange).Hours()
		m.LastChangeHours = &hours
	}

	m.TotalIncrease = effectiveBid(&last) - h.FirstBid
	if h.FirstBid > 0 {
		m.TotalIncreasePercent = m.TotalIncrease / h.FirstBid * 100
	}

	m.CompetitionScore = competitionScore(&m, maxStepPercent)
	m.CompetitionLevel = competitionLevel(m.CompetitionScore)
	return m
}

// competitionScore is an additive heuristic over five independent
// signals, capped at 100. The tier boundaries are load-bearing:
// downstream level labels are threshold cuts over this exact score.
func competitionScore(m *models.Metrics, maxStepPercent float64) int {
	score := 0

	// Change count, up to 30.
	switch {
	case m.TotalChanges >= 10:
		score += 30
	case m.TotalChanges >= 5:
		score += 20
	case m.TotalChanges >= 3:
		score += 10
	case m.TotalChanges >= 1:
		score += 5
	}

	// Changes per day, up to 25.
	switch {
	case m.BidVelocity >= 5:
		score += 25
	case m.BidVelocity >= 2:
		score += 20
	case m.BidVelocity >= 1:
		score += 15
	case m.BidVelocity >= 0.5:
		score += 10
	}

	// Recency of the last change, up to 20.
	if m.LastChangeHours != nil {
		switch h := *m.LastChangeHours; {
		case h <= 1:
			score += 20
		case h <= 6:
			score += 15
		case h <= 24:
			score += 10
		case h <= 48:
			score += 5
		}
	}

	// Total increase, up to 15.
	switch {
	case m.TotalIncreasePercent >= 50:
		score += 15
	case m.TotalIncreasePercent >= 25:
		score += 10
	case m.TotalIncreasePercent >= 10:
		score += 5
	}

	// Bidding-war bonus: any single step over 20%.
	if maxStepPercent > 20 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

func competitionLevel(score int) string {
	switch {
	case score >= 70:
		return LevelVeryHigh
	case score >= 40:
		return LevelHigh
	case score >= 20:
		return LevelMedium
	default:
		return LevelLow
	}
}
