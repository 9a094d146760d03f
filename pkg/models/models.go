package models

import "time"

// ListingRecord is one auction listing as captured from its detail
// page at a point in time. AuctionID is the stable primary key.
type ListingRecord struct {
	AuctionID        string    `json:"auction_id"`
	ParcelID         string    `json:"parcel_id"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	Zip              string    `json:"zip"`
	Status           string    `json:"status"`
	MinimumBid       string    `json:"minimum_bid"`
	MinimumBidAmount float64   `json:"minimum_bid_amount"`
	CurrentBid       string    `json:"current_bid"`
	CurrentBidAmount float64   `json:"current_bid_amount"`
	HasBids          bool      `json:"has_bids"`
	BiddingCloses    string    `json:"bidding_closes"`
	ClosingTime      time.Time `json:"closing_time,omitempty"`
	SEVValue         string    `json:"sev_value"`
	SEVValueAmount   float64   `json:"sev_value_amount"`
	SummerTax        string    `json:"summer_tax"`
	WinterTax        string    `json:"winter_tax"`
	ScrapedAt        time.Time `json:"scraped_at"`
}

// IsBundle reports whether the listing is a bundle lot. Bundles carry
// no individual closing time and are excluded from bid tracking and
// urgency scheduling.
func (l *ListingRecord) IsBundle() bool {
	return l.BiddingCloses == "" || l.BiddingCloses == "N/A"
}

// BidAmount returns the effective bid used for history seeding: the
// current bid when one exists, otherwise the minimum bid.
func (l *ListingRecord) BidAmount() float64 {
	if l.HasBids {
		return l.CurrentBidAmount
	}
	return l.MinimumBidAmount
}

// BidSnapshot is one timestamped observation of a listing's bid state.
// Change fields are present only when the bid differs from the prior
// observation.
type BidSnapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CurrentBid    float64   `json:"current_bid"`
	MinimumBid    float64   `json:"minimum_bid"`
	HasBids       bool      `json:"has_bids"`
	Status        string    `json:"status"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent,omitempty"`
}

// Metrics are derived from a listing's full snapshot sequence on every
// snapshot pass.
type Metrics struct {
	TotalChanges         int      `json:"total_changes"`
	BidVelocity          float64  `json:"bid_velocity"`
	LastChangeHours      *float64 `json:"last_change_hours"`
	TotalIncrease        float64  `json:"total_increase"`
	TotalIncreasePercent float64  `json:"total_increase_percent"`
	CompetitionScore     int      `json:"competition_score"`
	CompetitionLevel     string   `json:"competition_level"`
}

// ListingHistory owns the append-only snapshot sequence for one
// auction ID plus the metrics derived from it.
type ListingHistory struct {
	AuctionID string        `json:"auction_id"`
	Address   string        `json:"address"`
	FirstBid  float64       `json:"first_bid"`
	FirstSeen time.Time     `json:"first_seen"`
	Snapshots []BidSnapshot `json:"snapshots"`
	Metrics   Metrics       `json:"metrics"`
}

// Latest returns the most recent snapshot, or nil for a fresh history.
func (h *ListingHistory) Latest() *BidSnapshot {
	if len(h.Snapshots) == 0 {
		return nil
	}
	return &h.Snapshots[len(h.Snapshots)-1]
}

// SnapshotSummary is the result of one full snapshot pass through the
// Bid Tracker.
type SnapshotSummary struct {
	Timestamp    time.Time `json:"timestamp"`
	TotalTracked int       `json:"total_tracked"`
	NewChanges   int       `json:"new_changes"`
}

// Cookie is the serializable subset of a browser cookie needed to
// reconstruct an authenticated context in another browser process.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"http_only"`
	Secure   bool    `json:"secure"`
}

// SessionState is the transferable authenticated-session payload
// exported once by the authenticator. It is immutable from the moment
// it is handed to workers: each worker seeds its own isolated browser
// context from a copy and never writes back.
type SessionState struct {
	Cookies      []Cookie          `json:"cookies"`
	LocalStorage map[string]string `json:"local_storage"`
	ExportedAt   time.Time         `json:"exported_at"`
}

// Clone returns a deep copy so a worker can never alias the
// coordinator's session value.
func (s *SessionState) Clone() *SessionState {
	out := &SessionState{
		Cookies:      make([]Cookie, len(s.Cookies)),
		LocalStorage: make(map[string]string, len(s.LocalStorage)),
		ExportedAt:   s.ExportedAt,
	}
	copy(out.Cookies, s.Cookies)
	for k, v := range s.LocalStorage {
		out.LocalStorage[k] = v
	}
	return out
}

// ScrapeJob is a contiguous inclusive ID range assigned to one worker,
// plus the shared session it scrapes under.
type ScrapeJob struct {
	WorkerID int
	StartID  int
	EndID    int
	Session  *SessionState
}

// Size returns the number of IDs covered by the job.
func (j ScrapeJob) Size() int {
	return j.EndID - j.StartID + 1
}
