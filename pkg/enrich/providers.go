package enrich

import (
	"context"
	"errors"
	"time"
)

// ErrValuationNotFound marks an address the valuation provider has no
// record for. Cached as a terminal result, never retried.
var ErrValuationNotFound = errors.New("no valuation for address")

// ErrNoMatch marks a geocode lookup with no usable match.
var ErrNoMatch = errors.New("no geocode match")

// minGeocodeConfidence is the cut below which a geocode match is
// treated as no-match.
const minGeocodeConfidence = 80

// ValuationRecord is an external provider's estimate for one address,
// keyed by the normalized address key.
type ValuationRecord struct {
	AddressKey     string    `json:"address_key"`
	EstimatedValue float64   `json:"estimated_value"`
	RentEstimate   float64   `json:"rent_estimate,omitempty"`
	RetrievedAt    time.Time `json:"retrieved_at"`
	NotFound       bool      `json:"not_found,omitempty"`
}

// ValuationProvider looks up property valuations by normalized address
// key. Lookups must be idempotent per key; ErrValuationNotFound is a
// terminal answer, not a transient failure.
type ValuationProvider interface {
	Lookup(ctx context.Context, addressKey string) (*ValuationRecord, error)
}

// GeocodeResult is one geocoder match.
type GeocodeResult struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Confidence int     `json:"confidence"`
}

// Geocoder resolves free-text addresses to coordinates, returning
// ErrNoMatch when nothing usable comes back.
type Geocoder interface {
	Lookup(ctx context.Context, freeTextAddress string) (*GeocodeResult, error)
}

// Geocode runs a lookup and applies the confidence floor: matches
// below the threshold are no-matches.
func Geocode(ctx context.Context, g Geocoder, address string) (*GeocodeResult, error) {
	result, err := g.Lookup(ctx, address)
	if err != nil {
		return nil, err
	}
	if result.Confidence < minGeocodeConfidence {
		return nil, ErrNoMatch
	}
	return result, nil
}
