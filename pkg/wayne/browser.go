package wayne

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
	errs "github.com/jacobdurrah/auction-bdding/pkg/errors"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

// ErrListingGone marks an ID whose detail page is a soft-404 or whose
// status says the property was removed from the auction. Callers skip
// the ID without emitting a record.
var ErrListingGone = errors.New("listing not found or removed")

// blockedResourcePatterns keeps workers from downloading assets that
// contribute nothing to field extraction. Transfer cost on the detail
// page is the throughput bottleneck.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.ico",
	"*.css", "*.woff", "*.woff2", "*.ttf",
}

// Browser is one isolated browsing context seeded from a shared
// SessionState. Each worker owns exactly one Browser backed by its own
// headless Chrome process; the session value is cloned on entry and
// never written back.
type Browser struct {
	cfg         *config.SiteConfig
	navTimeout  time.Duration
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeZone    *time.Location
}

// NewBrowser launches a headless Chrome process, seeds it with the
// session's cookies and localStorage, and blocks non-essential
// resource loads.
func NewBrowser(parent context.Context, cfg *config.SiteConfig, scrape *config.ScrapeConfig, session *models.SessionState) (*Browser, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocatorOptions(cfg)...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	b := &Browser{
		cfg:         cfg,
		navTimeout:  scrape.NavTimeout,
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		timeZone:    time.Local,
	}

	if err := b.seed(session.Clone(), scrape.BlockResources); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to seed browser session: %w", err)
	}
	return b, nil
}

// seed installs the exported session into the fresh browser context.
// Cookies go in through the CDP network domain; localStorage needs a
// page on the site's origin first.
func (b *Browser) seed(session *models.SessionState, blockResources bool) error {
	actions := []chromedp.Action{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range session.Cookies {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				err := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithHTTPOnly(c.HTTPOnly).
					WithSecure(c.Secure).
					WithExpires(&expires).
					Do(ctx)
				if err != nil {
					return fmt.Errorf("set cookie %s: %w", c.Name, err)
				}
			}
			return nil
		}),
	}

	if blockResources {
		actions = append(actions, network.SetBlockedURLS(blockedResourcePatterns))
	}

	actions = append(actions,
		chromedp.Navigate(b.cfg.BaseURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)

	if len(session.LocalStorage) > 0 {
		storageJSON, err := json.Marshal(session.LocalStorage)
		if err != nil {
			return fmt.Errorf("marshal localStorage: %w", err)
		}
		actions = append(actions, chromedp.Evaluate(fmt.Sprintf(`(function() {
			var entries = %s;
			for (var k in entries) { localStorage.setItem(k, entries[k]); }
			return true;
		})()`, storageJSON), nil))
	}

	return chromedp.Run(b.ctx, actions...)
}

// detailExtraction is the shape returned by the extraction script.
type detailExtraction struct {
	NotFound bool              `json:"notFound"`
	Fields   map[string]string `json:"fields"`
}

// FetchListing navigates to the detail page for id and extracts one
// ListingRecord. It waits only for content-loaded readiness — the page
// is server-rendered, so full network idle buys nothing. Returns
// ErrListingGone for soft-404s and removed listings.
func (b *Browser) FetchListing(ctx context.Context, id int) (*models.ListingRecord, error) {
	runCtx, cancel := context.WithTimeout(b.ctx, b.navTimeout)
	defer cancel()

	// Honor caller cancellation without tying the browser context to it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fieldIDs, _ := json.Marshal(detailFieldIDs)
	script := fmt.Sprintf(`(function() {
		var out = { notFound: false, fields: {} };
		if (document.querySelector(%q) !== null || document.querySelector(%q) === null) {
			out.notFound = true;
			return out;
		}
		var ids = %s;
		for (var key in ids) {
			var el = document.getElementById(ids[key]);
			out.fields[key] = el ? el.textContent.trim() : '';
		}
		return out;
	})()`, notFoundSelector, detailPanelSelector, fieldIDs)

	var extracted detailExtraction
	err := chromedp.Run(runCtx,
		chromedp.Navigate(DetailURL(b.cfg, id)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(script, &extracted),
	)
	if err != nil {
		return nil, errs.NewNavigationError(id, err.Error())
	}

	if extracted.NotFound {
		return nil, ErrListingGone
	}

	record, removed := buildListing(id, extracted.Fields, b.timeZone)
	if removed {
		return nil, ErrListingGone
	}
	return record, nil
}

// Close shuts down the browser process.
func (b *Browser) Close() {
	b.cancelCtx()
	b.cancelAlloc()
}

// buildListing normalizes raw field text into a ListingRecord. The
// removed flag is set when the status carries the removed marker.
func buildListing(id int, fields map[string]string, loc *time.Location) (*models.ListingRecord, bool) {
	status := fields["status"]
	if strings.Contains(strings.ToLower(status), removedStatusMarker) {
		return nil, true
	}

	auctionID := fields["auctionId"]
	if auctionID == "" {
		auctionID = strconv.Itoa(id)
	}

	minBid := ParseCurrency(fields["minimumBid"])
	curBid := ParseCurrency(fields["currentBid"])

	record := &models.ListingRecord{
		AuctionID:        auctionID,
		ParcelID:         fields["parcelId"],
		Address:          fields["address"],
		City:             fields["city"],
		Zip:              fields["zip"],
		Status:           status,
		MinimumBid:       fields["minimumBid"],
		MinimumBidAmount: minBid,
		CurrentBid:       fields["currentBid"],
		CurrentBidAmount: curBid,
		HasBids:          HasBids(fields["currentBid"], curBid),
		BiddingCloses:    strings.TrimSpace(fields["biddingCloses"]),
		SEVValue:         fields["sevValue"],
		SEVValueAmount:   ParseCurrency(fields["sevValue"]),
		SummerTax:        fields["summerTax"],
		WinterTax:        fields["winterTax"],
		ScrapedAt:        time.Now(),
	}

	if closing, ok := ParseClosingTime(record.BiddingCloses, loc); ok {
		record.ClosingTime = closing
	}
	return record, false
}
