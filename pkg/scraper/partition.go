package scraper

import "github.com/jacobdurrah/auction-bdding/pkg/models"

// PartitionRange splits the inclusive ID range [startID, endID] into
// at most workers contiguous, near-equal sub-ranges. The last range
// absorbs the remainder. Every ID appears in exactly one sub-range;
// a range smaller than the worker count yields fewer jobs.
func PartitionRange(startID, endID, workers int, session *models.SessionState) []models.ScrapeJob {
	total := endID - startID + 1
	if total <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	size := total / workers
	jobs := make([]models.ScrapeJob, 0, workers)

	next := startID
	for i := 0; i < workers; i++ {
		end := next + size - 1
		if i == workers-1 {
			end = endID
		}
		jobs = append(jobs, models.ScrapeJob{
			WorkerID: i,
			StartID:  next,
			EndID:    end,
			Session:  session,
		})
		next = end + 1
	}
	return jobs
}
