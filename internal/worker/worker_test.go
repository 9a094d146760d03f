package worker

import (
	"context"
	"strconv"
	"testing"

	errs "github.com/jacobdurrah/auction-bdding/pkg/errors"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/ratelimit"
	"github.com/jacobdurrah/auction-bdding/pkg/wayne"
)

type scriptedFetcher struct {
	fetched []int
	errs    map[int]error
}

func (f *scriptedFetcher) FetchListing(ctx context.Context, id int) (*models.ListingRecord, error) {
	f.fetched = append(f.fetched, id)
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	return &models.ListingRecord{AuctionID: strconv.Itoa(id)}, nil
}

func runWorker(t *testing.T, job models.ScrapeJob, fetcher PageFetcher) ([]Event, error) {
	t.Helper()
	events := make(chan Event, job.Size()*2+2)
	pacer := ratelimit.NewTokenBucket(1000, 0)

	err := New(job, fetcher, pacer, events).Run(context.Background())
	close(events)

	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out, err
}

func eventsOfKind(events []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestWorkerProcessesRangeInAscendingOrder(t *testing.T) {
	fetcher := &scriptedFetcher{}
	job := models.ScrapeJob{WorkerID: 0, StartID: 250900000, EndID: 250900009}

	events, err := runWorker(t, job, fetcher)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(fetcher.fetched) != 10 {
		t.Fatalf("fetched %d IDs, want 10", len(fetcher.fetched))
	}
	for i := 1; i < len(fetcher.fetched); i++ {
		if fetcher.fetched[i] != fetcher.fetched[i-1]+1 {
			t.Fatalf("IDs not strictly ascending: %v", fetcher.fetched)
		}
	}

	if got := len(eventsOfKind(events, EventResult)); got != 10 {
		t.Errorf("result events = %d, want 10", got)
	}
	progress := eventsOfKind(events, EventProgress)
	if len(progress) != 10 {
		t.Fatalf("progress events = %d, want 10", len(progress))
	}
	if last := progress[len(progress)-1].Progress; last.Current != 10 || last.Total != 10 {
		t.Errorf("final progress %d/%d, want 10/10", last.Current, last.Total)
	}
	if got := len(eventsOfKind(events, EventComplete)); got != 1 {
		t.Errorf("complete events = %d, want 1", got)
	}
}

func TestWorkerSingleIDNotFound(t *testing.T) {
	fetcher := &scriptedFetcher{errs: map[int]error{1: wayne.ErrListingGone}}
	job := models.ScrapeJob{WorkerID: 0, StartID: 1, EndID: 1}

	events, err := runWorker(t, job, fetcher)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(eventsOfKind(events, EventResult)); got != 0 {
		t.Errorf("result events = %d, want 0", got)
	}
	progress := eventsOfKind(events, EventProgress)
	if len(progress) != 1 {
		t.Fatalf("progress events = %d, want exactly 1", len(progress))
	}
	if p := progress[0].Progress; p.Current != 1 || p.Total != 1 {
		t.Errorf("progress %d/%d, want 1/1", p.Current, p.Total)
	}
}

func TestWorkerRecoversPerIDErrors(t *testing.T) {
	fetcher := &scriptedFetcher{errs: map[int]error{
		102: errs.NewNavigationError(102, "timeout"),
		104: errs.NewParseError(104, "missing detail panel"),
	}}
	job := models.ScrapeJob{WorkerID: 2, StartID: 100, EndID: 109}

	events, err := runWorker(t, job, fetcher)
	if err != nil {
		t.Fatalf("per-ID failures must not fail the worker: %v", err)
	}

	errEvents := eventsOfKind(events, EventError)
	if len(errEvents) != 2 {
		t.Fatalf("error events = %d, want 2", len(errEvents))
	}
	if errEvents[0].ListingID != 102 || errEvents[1].ListingID != 104 {
		t.Errorf("error events tagged %d, %d; want 102, 104", errEvents[0].ListingID, errEvents[1].ListingID)
	}
	if errEvents[0].WorkerID != 2 {
		t.Errorf("error event worker ID = %d, want 2", errEvents[0].WorkerID)
	}

	if got := len(eventsOfKind(events, EventResult)); got != 8 {
		t.Errorf("result events = %d, want 8", got)
	}
	progress := eventsOfKind(events, EventProgress)
	if last := progress[len(progress)-1].Progress; last.Current != 10 {
		t.Errorf("failed IDs must still advance progress: %d/10", last.Current)
	}
}

func TestWorkerStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &scriptedFetcher{}
	job := models.ScrapeJob{WorkerID: 0, StartID: 1, EndID: 100}
	events := make(chan Event, 300)

	err := New(job, fetcher, ratelimit.NewTokenBucket(1000, 0), events).Run(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(fetcher.fetched) != 0 {
		t.Errorf("fetched %d IDs after cancellation", len(fetcher.fetched))
	}
}
