package scheduler

import (
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
)

// Tier is a listing's urgency class, a pure function of time remaining
// until bidding closes.
type Tier string

const (
	// TierExpired listings have closed and leave the schedule.
	TierExpired Tier = "expired"
	// TierImmediate is one hour or less to close.
	TierImmediate Tier = "immediate"
	// TierUrgent is three hours or less.
	TierUrgent Tier = "urgent"
	// TierRegular is six hours or less.
	TierRegular Tier = "regular"
	// TierStandard is everything further out.
	TierStandard Tier = "standard"
)

// schedulableTiers is the evaluation order, most urgent first.
var schedulableTiers = []Tier{TierImmediate, TierUrgent, TierRegular, TierStandard}

// Classify maps a closing time to its urgency tier at the given
// instant. Tiers are mutually exclusive; a listing closing exactly at
// now is expired.
func Classify(now, closing time.Time) Tier {
	remaining := closing.Sub(now)
	switch {
	case remaining <= 0:
		return TierExpired
	case remaining <= time.Hour:
		return TierImmediate
	case remaining <= 3*time.Hour:
		return TierUrgent
	case remaining <= 6*time.Hour:
		return TierRegular
	default:
		return TierStandard
	}
}

// IntervalFor returns the configured polling interval for a tier.
func IntervalFor(cfg *config.SchedulerConfig, tier Tier) time.Duration {
	switch tier {
	case TierImmediate:
		return cfg.ImmediateInterval
	case TierUrgent:
		return cfg.UrgentInterval
	case TierRegular:
		return cfg.RegularInterval
	default:
		return cfg.StandardInterval
	}
}

// quickTier reports whether a tier runs the lighter quick cycle
// (scrape plus bid tracking only, no analytics recomputation).
func quickTier(tier Tier) bool {
	return tier == TierImmediate || tier == TierUrgent
}
