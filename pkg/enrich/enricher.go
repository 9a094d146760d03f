package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/wayne"
)

// stateCode is fixed: the auction covers Wayne County, Michigan only.
const stateCode = "MI"

// EnrichedListing is a listing annotated with external valuation and
// location data where available.
type EnrichedListing struct {
	*models.ListingRecord
	Valuation *ValuationRecord `json:"valuation,omitempty"`
	Latitude  *float64         `json:"latitude,omitempty"`
	Longitude *float64         `json:"longitude,omitempty"`
}

// Enricher annotates listings with valuations and coordinates. Both
// providers are optional; a nil provider just leaves its annotation
// empty.
type Enricher struct {
	valuations ValuationProvider
	geocoder   Geocoder
	logger     logger.Logger
}

// New creates an Enricher. Either provider may be nil.
func New(valuations ValuationProvider, geocoder Geocoder) *Enricher {
	return &Enricher{
		valuations: valuations,
		geocoder:   geocoder,
		logger:     logger.GetLogger(),
	}
}

// Enrich annotates every listing it can. Provider misses and failures
// never fail the pass; a listing the providers know nothing about is
// still a listing.
func (e *Enricher) Enrich(ctx context.Context, listings []*models.ListingRecord) []*EnrichedListing {
	out := make([]*EnrichedListing, 0, len(listings))
	for _, l := range listings {
		enriched := &EnrichedListing{ListingRecord: l}

		if e.valuations != nil && l.Address != "" {
			key := wayne.AddressKey(l.Address, l.City, stateCode, l.Zip)
			val, err := e.valuations.Lookup(ctx, key)
			switch {
			case err == nil:
				enriched.Valuation = val
			case errors.Is(err, ErrValuationNotFound):
				// Terminal miss, nothing to attach.
			default:
				e.logger.WithError(err).WithField("auction_id", l.AuctionID).Warn("Valuation lookup failed")
			}
		}

		if e.geocoder != nil && l.Address != "" {
			freeText := fmt.Sprintf("%s, %s, %s %s", l.Address, l.City, stateCode, l.Zip)
			loc, err := Geocode(ctx, e.geocoder, freeText)
			switch {
			case err == nil:
				enriched.Latitude = &loc.Latitude
				enriched.Longitude = &loc.Longitude
			case errors.Is(err, ErrNoMatch):
				// Low confidence or nothing at all.
			default:
				e.logger.WithError(err).WithField("auction_id", l.AuctionID).Warn("Geocode lookup failed")
			}
		}

		out = append(out, enriched)
	}
	return out
}
