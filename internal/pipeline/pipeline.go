package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jacobdurrah/auction-bdding/pkg/auth"
	"github.com/jacobdurrah/auction-bdding/pkg/config"
	"github.com/jacobdurrah/auction-bdding/pkg/enrich"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/scraper"
	"github.com/jacobdurrah/auction-bdding/pkg/storage"
	"github.com/jacobdurrah/auction-bdding/pkg/tracker"
	"github.com/jacobdurrah/auction-bdding/pkg/wayne"
)

const enrichedFile = "enriched.json"

// Authenticator establishes the shared session for one scrape run.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.SessionState, error)
}

// Pipeline wires authentication, the scrape coordinator, the bid
// tracker, and the optional enrichment and archive stages into the
// cycles the scheduler triggers.
type Pipeline struct {
	cfg         *config.Config
	credentials *auth.Manager
	auth        Authenticator
	coordinator *scraper.Coordinator
	tracker     *tracker.Tracker
	store       *storage.Manager
	archive     *storage.ListingArchive
	enricher    *enrich.Enricher
	logger      logger.Logger
}

// New assembles a production Pipeline. archive and enricher may be
// nil; those stages are then skipped.
func New(cfg *config.Config, credentials *auth.Manager, store *storage.Manager, trk *tracker.Tracker, archive *storage.ListingArchive, enricher *enrich.Enricher) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		credentials: credentials,
		auth:        wayne.NewAuthenticator(&cfg.Site),
		coordinator: scraper.New(cfg, scraper.ChromeFetcherFactory(&cfg.Site, &cfg.Scrape)),
		tracker:     trk,
		store:       store,
		archive:     archive,
		enricher:    enricher,
		logger:      logger.GetLogger(),
	}
}

// QuickCycle runs one scrape of the configured ID range and records
// the result in the bid tracker.
func (p *Pipeline) QuickCycle(ctx context.Context) error {
	_, err := p.runScrape(ctx)
	return err
}

// FullCycle runs a quick cycle and then the downstream analytics:
// valuation/geocode enrichment and the optional relational archive.
func (p *Pipeline) FullCycle(ctx context.Context) error {
	records, err := p.runScrape(ctx)
	if err != nil {
		return err
	}

	if p.enricher != nil {
		enriched := p.enricher.Enrich(ctx, records)
		path := filepath.Join(p.cfg.Tracker.DataDir, enrichedFile)
		if err := storage.WriteJSON(path, enriched); err != nil {
			p.logger.WithError(err).Error("Failed to persist enriched listings")
		}
	}

	if p.archive != nil {
		if err := p.archive.ArchiveListings(records); err != nil {
			// The JSON documents are the system of record; a broken
			// archive mirror is not a failed cycle.
			p.logger.WithError(err).Error("Failed to archive listings to postgres")
		}
	}
	return nil
}

// runScrape authenticates, scrapes the configured range, and persists
// the snapshot.
func (p *Pipeline) runScrape(ctx context.Context) ([]*models.ListingRecord, error) {
	account, err := p.account()
	if err != nil {
		return nil, err
	}

	session, err := p.auth.Authenticate(ctx, account.Username, account.Password)
	logger.LogAuthResult(err == nil, err)
	if err != nil {
		return nil, err
	}

	records, err := p.coordinator.ScrapeRange(ctx, p.cfg.Scrape.StartID, p.cfg.Scrape.EndID, session)
	if err != nil {
		return nil, err
	}

	if err := p.store.SaveListings(records); err != nil {
		return nil, err
	}
	if _, err := p.tracker.RecordSnapshot(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *Pipeline) account() (*auth.Account, error) {
	if name := p.cfg.Site.AccountName; name != "" {
		account, err := p.credentials.Retrieve(name)
		if err != nil {
			return nil, fmt.Errorf("stored account %q not found: %w", name, err)
		}
		return account, nil
	}
	account, err := p.credentials.RetrieveDefault()
	if err != nil {
		return nil, fmt.Errorf("no auction site credentials configured: %w", err)
	}
	return account, nil
}

// CurrentListings exposes the latest persisted scrape for urgency
// classification.
func (p *Pipeline) CurrentListings() ([]*models.ListingRecord, error) {
	doc, err := p.store.LoadListings()
	if err != nil {
		return nil, err
	}
	return doc.Listings, nil
}

// ScrapeStatus exposes the coordinator's live run status.
func (p *Pipeline) ScrapeStatus() scraper.Status {
	return p.coordinator.Status()
}
