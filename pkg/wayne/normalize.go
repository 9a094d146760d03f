package wayne

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NoBidSentinel is the literal the site renders when a listing has
// never received a bid.
const NoBidSentinel = "NONE"

var (
	currencyStripper = strings.NewReplacer("$", "", ",", "")
	zoneSuffixRe     = regexp.MustCompile(`(AM|PM)\s+[A-Z]{2,4}$`)
	addressKeyRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// ParseCurrency normalizes a currency-formatted string ("$1,234.56")
// to a numeric amount. Empty values, "N/A", the NONE sentinel, and
// anything non-parseable normalize to 0.
func ParseCurrency(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, NoBidSentinel) {
		return 0
	}

	s = strings.TrimSpace(currencyStripper.Replace(s))
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return amount
}

// HasBids reports whether a listing has at least one real bid: the
// normalized amount is positive and the raw field is not the NONE
// sentinel or empty.
func HasBids(rawCurrentBid string, amount float64) bool {
	s := strings.TrimSpace(rawCurrentBid)
	if s == "" || strings.EqualFold(s, NoBidSentinel) {
		return false
	}
	return amount > 0
}

// closingTimeLayouts cover the formats the site has been seen to
// render after the zone abbreviation is stripped.
var closingTimeLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"January 2, 2006 3:04 PM",
}

// ParseClosingTime parses the site's closing timestamp. The site
// renders local time with a trailing zone abbreviation ("9/15/2026
// 5:00:00 PM EST") that must be stripped before parsing. Empty and
// "N/A" values mark bundle listings and yield a zero time.
func ParseClosingTime(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "N/A") {
		return time.Time{}, false
	}

	s = zoneSuffixRe.ReplaceAllString(s, "$1")
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range closingTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AddressKey builds the normalized cache key used by the valuation
// provider: lowercase street/city/state/zip joined by underscores with
// all non-alphanumeric runs collapsed to single underscores.
func AddressKey(street, city, state, zip string) string {
	joined := strings.ToLower(strings.Join([]string{street, city, state, zip}, "_"))
	key := addressKeyRe.ReplaceAllString(joined, "_")
	return strings.Trim(key, "_")
}
