package worker

import "github.com/jacobdurrah/auction-bdding/pkg/models"

// EventKind discriminates the worker event stream.
type EventKind int

const (
	// EventProgress reports one more ID attempted in the worker's range.
	EventProgress EventKind = iota
	// EventResult carries one extracted ListingRecord.
	EventResult
	// EventError reports a recovered per-ID failure.
	EventError
	// EventComplete is the worker's final event.
	EventComplete
)

// Progress is a worker-local completion counter. The coordinator sums
// these per worker, so the values only ever need to be correct for one
// worker in isolation.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Event is one tagged message on a worker's event stream.
type Event struct {
	Kind     EventKind
	WorkerID int

	// Progress is set for EventProgress.
	Progress Progress

	// Record is set for EventResult.
	Record *models.ListingRecord

	// ListingID and Message are set for EventError.
	ListingID int
	Message   string
}
