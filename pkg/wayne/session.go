package wayne

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
	errs "github.com/jacobdurrah/auction-bdding/pkg/errors"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

// Authenticator establishes one authenticated browsing session against
// the auction site and exports its transferable state. The exported
// SessionState is what lets N workers scrape concurrently without N
// logins, which the site rate-limits.
type Authenticator struct {
	cfg    *config.SiteConfig
	logger logger.Logger
}

// NewAuthenticator creates an Authenticator for the configured site.
func NewAuthenticator(cfg *config.SiteConfig) *Authenticator {
	return &Authenticator{cfg: cfg, logger: logger.GetLogger()}
}

// Authenticate drives a real browser through the login form, verifies
// the session by probing a known-good detail page, and exports the
// session cookies plus localStorage. The post-login redirect is not a
// reliable success signal on this site; only the probe is trusted.
// Authentication failure is fatal to the calling scrape run and is
// never retried here.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.SessionState, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(a.cfg)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	loginURL := a.cfg.BaseURL + a.cfg.LoginPath
	a.logger.WithField("url", loginURL).Debug("Submitting login form")

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(loginURL),
		chromedp.WaitReady(loginUserSelector, chromedp.ByQuery),
		chromedp.SendKeys(loginUserSelector, username, chromedp.ByQuery),
		chromedp.SendKeys(loginPassSelector, password, chromedp.ByQuery),
		chromedp.Click(loginSubmitSelector, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return nil, errs.NewAuthError(fmt.Sprintf("login form submission failed: %v", err))
	}

	// Verify by probe: load a known-good detail page and require the
	// detail panel marker.
	var verified bool
	probeURL := DetailURL(a.cfg, a.cfg.ProbeID)
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(probeURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(
			fmt.Sprintf(`document.querySelector(%q) !== null`, detailPanelSelector),
			&verified),
	)
	if err != nil {
		return nil, errs.NewAuthError(fmt.Sprintf("verification probe failed: %v", err))
	}
	if !verified {
		return nil, errs.NewAuthError("login failed")
	}

	state, err := exportSessionState(browserCtx)
	if err != nil {
		return nil, errs.NewAuthError(fmt.Sprintf("session export failed: %v", err))
	}

	a.logger.InfoWithFields("Session established", map[string]interface{}{
		"cookies":       len(state.Cookies),
		"storage_keys":  len(state.LocalStorage),
		"probe_listing": a.cfg.ProbeID,
	})
	return state, nil
}

// exportSessionState captures cookies and localStorage from a live
// browser context into a value workers can be seeded from.
func exportSessionState(ctx context.Context) (*models.SessionState, error) {
	state := &models.SessionState{
		LocalStorage: make(map[string]string),
		ExportedAt:   time.Now(),
	}

	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				state.Cookies = append(state.Cookies, models.Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Expires:  c.Expires,
					HTTPOnly: c.HTTPOnly,
					Secure:   c.Secure,
				})
			}
			return nil
		}),
		chromedp.Evaluate(`(function() {
			var out = {};
			for (var i = 0; i < localStorage.length; i++) {
				var k = localStorage.key(i);
				out[k] = localStorage.getItem(k);
			}
			return out;
		})()`, &state.LocalStorage),
	)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// DetailURL builds the detail page URL for a numeric listing ID.
func DetailURL(cfg *config.SiteConfig, id int) string {
	return cfg.BaseURL + fmt.Sprintf(cfg.DetailPath, id)
}

// allocatorOptions builds the headless Chrome launch options shared by
// the authenticator and every worker browser.
func allocatorOptions(cfg *config.SiteConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if bin := findChromeBinary(cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	return opts
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
