package logger

import "time"

// LogScrapeProgress logs aggregate progress for a running scrape.
func LogScrapeProgress(completed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}
	GetLogger().InfoWithFields("Scrape progress", map[string]interface{}{
		"completed":  completed,
		"total":      total,
		"percentage": percentage,
	})
}

// LogListingScraped logs a single extracted listing.
func LogListingScraped(auctionID, address string, currentBid float64) {
	GetLogger().DebugWithFields("Listing scraped", map[string]interface{}{
		"auction_id":  auctionID,
		"address":     address,
		"current_bid": currentBid,
	})
}

// LogAuthResult logs the outcome of a session authentication attempt.
func LogAuthResult(success bool, err error) {
	if success {
		GetLogger().Info("Session authenticated and verified")
		return
	}
	GetLogger().WithError(err).Error("Session authentication failed")
}

// LogSnapshotPass logs the result of one Bid Tracker snapshot pass.
func LogSnapshotPass(totalTracked, newChanges int, duration time.Duration) {
	GetLogger().InfoWithFields("Snapshot pass recorded", map[string]interface{}{
		"total_tracked": totalTracked,
		"new_changes":   newChanges,
		"duration_ms":   duration.Milliseconds(),
	})
}

// LogSchedulerTick logs one scheduling pass.
func LogSchedulerTick(tier string, listings int, interval time.Duration) {
	GetLogger().DebugWithFields("Scheduler tick", map[string]interface{}{
		"tier":     tier,
		"listings": listings,
		"interval": interval,
	})
}

// LogWorkerCrash logs an abnormal worker exit before it propagates.
func LogWorkerCrash(workerID int, err error) {
	GetLogger().WithError(err).WithFields(map[string]interface{}{
		"worker_id": workerID,
	}).Error("Worker crashed, failing run")
}
