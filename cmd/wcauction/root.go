package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jacobdurrah/auction-bdding/internal/pipeline"
	"github.com/jacobdurrah/auction-bdding/pkg/auth"
	"github.com/jacobdurrah/auction-bdding/pkg/config"
	"github.com/jacobdurrah/auction-bdding/pkg/enrich"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/storage"
	"github.com/jacobdurrah/auction-bdding/pkg/tracker"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	dataDir     string
	accountName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wcauction",
	Short: "Wayne County tax auction scraper and bid tracker",
	Long: `wcauction scrapes the Wayne County tax-foreclosure auction site in
parallel, tracks bid changes over time, and derives per-listing
competition metrics.

Credentials for the auction site are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (WCAUCTION_USERNAME / WCAUCTION_PASSWORD)`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .wcauction.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for JSON documents (default ./data)")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "use specific stored account")

	rootCmd.SetVersionTemplate(`wcauction {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig builds the effective configuration from all sources and
// initializes the global logger.
func loadConfig(extra map[string]interface{}) (*config.Config, error) {
	flags := map[string]interface{}{
		"account":   accountName,
		"data-dir":  dataDir,
		"log-level": logLevel,
	}
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline assembles the production pipeline from configuration.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, *tracker.Tracker, error) {
	credentials, err := auth.NewManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	store, err := storage.NewManager(&cfg.Tracker)
	if err != nil {
		return nil, nil, err
	}

	trk, err := tracker.New(store, &cfg.Tracker)
	if err != nil {
		return nil, nil, err
	}

	var archive *storage.ListingArchive
	if cfg.Archive.PostgresDSN != "" {
		archive, err = storage.NewListingArchive(cfg.Archive.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
	}

	// Concrete valuation and geocode providers plug in here; without
	// them enrichment still writes the enriched document from scrape
	// data alone.
	enricher := enrich.New(nil, nil)

	return pipeline.New(cfg, credentials, store, trk, archive, enricher), trk, nil
}
