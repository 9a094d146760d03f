package errors

import "fmt"

// ErrorType classifies failures across the scrape pipeline
type ErrorType string

const (
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeNavigation  ErrorType = "navigation"
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypePersistence ErrorType = "persistence"
	ErrorTypeWorkerCrash ErrorType = "worker_crash"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error carries the failure class plus enough context (listing ID,
// worker index) to support a manual or scheduled retry.
type Error struct {
	Type      ErrorType
	Message   string
	ListingID int
	WorkerID  int
}

func (e *Error) Error() string {
	if e.ListingID > 0 {
		return fmt.Sprintf("%s error (listing %d): %s", e.Type, e.ListingID, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// NewAuthError marks a failed session establishment. Fatal to the
// calling scrape run; never retried within the run.
func NewAuthError(message string) *Error {
	return &Error{Type: ErrorTypeAuth, Message: message}
}

// NewNavigationError marks a per-ID navigation failure.
func NewNavigationError(listingID int, message string) *Error {
	return &Error{Type: ErrorTypeNavigation, Message: message, ListingID: listingID}
}

// NewParseError marks a per-ID extraction failure.
func NewParseError(listingID int, message string) *Error {
	return &Error{Type: ErrorTypeParse, Message: message, ListingID: listingID}
}

// NewPersistenceError marks a Bid Tracker I/O failure.
func NewPersistenceError(message string) *Error {
	return &Error{Type: ErrorTypePersistence, Message: message}
}

// NewWorkerCrashError marks a whole-worker abnormal exit. Propagates
// as a run-level failure of the coordinator.
func NewWorkerCrashError(workerID int, message string) *Error {
	return &Error{Type: ErrorTypeWorkerCrash, Message: message, WorkerID: workerID}
}

// IsRetryable reports whether a failure class may be retried. Per-ID
// scrape failures are recovered locally and never retried within a
// run; only persistence I/O is worth another attempt.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypePersistence:
		return true
	case ErrorTypeAuth, ErrorTypeNavigation, ErrorTypeParse, ErrorTypeNotFound, ErrorTypeWorkerCrash:
		return false
	default:
		return false
	}
}
