package wayne

import (
	"testing"
	"time"
)

func detailFields() map[string]string {
	return map[string]string{
		"auctionId":     "250900001",
		"parcelId":      "21-014233",
		"address":       "441 Alter Rd",
		"city":          "Detroit",
		"zip":           "48215",
		"status":        "Open for bidding",
		"minimumBid":    "$500.00",
		"currentBid":    "$1,250.00",
		"biddingCloses": "9/15/2026 5:00:00 PM EST",
		"sevValue":      "$21,000.00",
		"summerTax":     "$312.44",
		"winterTax":     "$48.10",
	}
}

func TestBuildListing(t *testing.T) {
	record, removed := buildListing(250900001, detailFields(), time.UTC)
	if removed {
		t.Fatal("open listing flagged as removed")
	}

	if record.AuctionID != "250900001" {
		t.Errorf("AuctionID = %s", record.AuctionID)
	}
	if record.MinimumBidAmount != 500 {
		t.Errorf("MinimumBidAmount = %f, want 500", record.MinimumBidAmount)
	}
	if record.CurrentBidAmount != 1250 {
		t.Errorf("CurrentBidAmount = %f, want 1250", record.CurrentBidAmount)
	}
	if !record.HasBids {
		t.Error("listing with a current bid reports no bids")
	}
	if record.SEVValueAmount != 21000 {
		t.Errorf("SEVValueAmount = %f, want 21000", record.SEVValueAmount)
	}
	if record.ClosingTime.IsZero() {
		t.Error("closing time not parsed")
	}
	if record.IsBundle() {
		t.Error("listing with closing time classified as bundle")
	}
}

func TestBuildListingNoBids(t *testing.T) {
	fields := detailFields()
	fields["currentBid"] = "NONE"

	record, _ := buildListing(250900001, fields, time.UTC)
	if record.HasBids {
		t.Error("NONE sentinel should mean no bids")
	}
	if record.CurrentBidAmount != 0 {
		t.Errorf("CurrentBidAmount = %f, want 0", record.CurrentBidAmount)
	}
	if record.BidAmount() != 500 {
		t.Errorf("BidAmount = %f, want minimum 500", record.BidAmount())
	}
}

func TestBuildListingRemovedStatus(t *testing.T) {
	for _, status := range []string{
		"Removed from auction",
		"REMOVED",
		"This property has been removed",
	} {
		fields := detailFields()
		fields["status"] = status
		if record, removed := buildListing(250900001, fields, time.UTC); !removed || record != nil {
			t.Errorf("status %q not treated as removed", status)
		}
	}
}

func TestBuildListingAuctionIDFallback(t *testing.T) {
	fields := detailFields()
	fields["auctionId"] = ""

	record, _ := buildListing(250900042, fields, time.UTC)
	if record.AuctionID != "250900042" {
		t.Errorf("AuctionID = %s, want fallback to numeric ID", record.AuctionID)
	}
}

func TestBuildListingBundle(t *testing.T) {
	fields := detailFields()
	fields["biddingCloses"] = "N/A"

	record, _ := buildListing(250900001, fields, time.UTC)
	if !record.IsBundle() {
		t.Error("listing without individual closing time should be a bundle")
	}
	if !record.ClosingTime.IsZero() {
		t.Error("bundle got a parsed closing time")
	}
}
