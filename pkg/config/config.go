package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the auction tracker
type Config struct {
	// Target site and account
	Site SiteConfig `yaml:"site" json:"site"`

	// Scrape run shape
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Bid tracker persistence
	Tracker TrackerConfig `yaml:"tracker" json:"tracker"`

	// Scheduler cadence
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`

	// Optional relational archive
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the target auction site and the account used
// to establish the shared session.
type SiteConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`
	LoginPath   string `yaml:"login_path" json:"login_path"`
	DetailPath  string `yaml:"detail_path" json:"detail_path"` // fmt pattern taking the numeric listing ID
	ProbeID     int    `yaml:"probe_id" json:"probe_id"`       // known-good listing used to verify login
	AccountName string `yaml:"account_name" json:"account_name"`
	UserAgent   string `yaml:"user_agent" json:"user_agent"`
	ChromeBin   string `yaml:"chrome_bin" json:"chrome_bin"`
}

// ScrapeConfig controls worker fan-out and per-worker pacing.
type ScrapeConfig struct {
	Workers        int           `yaml:"workers" json:"workers"`
	StartID        int           `yaml:"start_id" json:"start_id"`
	EndID          int           `yaml:"end_id" json:"end_id"`
	NavTimeout     time.Duration `yaml:"nav_timeout" json:"nav_timeout"`
	PauseEvery     int           `yaml:"pause_every" json:"pause_every"` // IDs between pacing pauses
	PauseDelay     time.Duration `yaml:"pause_delay" json:"pause_delay"`
	BlockResources bool          `yaml:"block_resources" json:"block_resources"`
}

// TrackerConfig controls where snapshots and histories are persisted.
type TrackerConfig struct {
	DataDir        string `yaml:"data_dir" json:"data_dir"`
	RawKeep        int    `yaml:"raw_keep" json:"raw_keep"` // raw snapshot files retained
	PersistRetries int    `yaml:"persist_retries" json:"persist_retries"`
}

// SchedulerConfig controls the urgency-tier polling intervals.
type SchedulerConfig struct {
	ImmediateInterval time.Duration `yaml:"immediate_interval" json:"immediate_interval"`
	UrgentInterval    time.Duration `yaml:"urgent_interval" json:"urgent_interval"`
	RegularInterval   time.Duration `yaml:"regular_interval" json:"regular_interval"`
	StandardInterval  time.Duration `yaml:"standard_interval" json:"standard_interval"`
	RunHistorySize    int           `yaml:"run_history_size" json:"run_history_size"`
}

// ArchiveConfig enables the optional Postgres listing archive when a
// DSN is set. JSON documents on disk remain the system of record.
type ArchiveConfig struct {
	PostgresDSN string `yaml:"postgres_dsn" json:"postgres_dsn"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:    "https://www.waynecountytaxauction.com",
			LoginPath:  "/Login.aspx",
			DetailPath: "/AuctionDetail.aspx?AI=%d",
			ProbeID:    250900001,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Scrape: ScrapeConfig{
			Workers:        4,
			StartID:        250900000,
			EndID:          250901000,
			NavTimeout:     30 * time.Second,
			PauseEvery:     10,
			PauseDelay:     2 * time.Second,
			BlockResources: true,
		},
		Tracker: TrackerConfig{
			DataDir:        "./data",
			RawKeep:        100,
			PersistRetries: 3,
		},
		Scheduler: SchedulerConfig{
			ImmediateInterval: 1 * time.Minute,
			UrgentInterval:    5 * time.Minute,
			RegularInterval:   10 * time.Minute,
			StandardInterval:  60 * time.Minute,
			RunHistorySize:    50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv overrides configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("WCAUCTION_BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv("WCAUCTION_ACCOUNT"); v != "" {
		c.Site.AccountName = v
	}
	if v := os.Getenv("WCAUCTION_CHROME_BIN"); v != "" {
		c.Site.ChromeBin = v
	}
	if v := os.Getenv("WCAUCTION_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scrape.Workers = n
		}
	}
	if v := os.Getenv("WCAUCTION_START_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scrape.StartID = n
		}
	}
	if v := os.Getenv("WCAUCTION_END_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scrape.EndID = n
		}
	}
	if v := os.Getenv("WCAUCTION_DATA_DIR"); v != "" {
		c.Tracker.DataDir = v
	}
	if v := os.Getenv("WCAUCTION_POSTGRES_DSN"); v != "" {
		c.Archive.PostgresDSN = v
	}
	if v := os.Getenv("WCAUCTION_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // no config file, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) findConfigFile() string {
	locations := []string{
		".wcauction.yaml",
		".wcauction.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "wcauction", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".wcauction.yaml"),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Site.BaseURL == "" {
		errs = append(errs, errors.New("site base URL is required"))
	}
	if !strings.Contains(c.Site.DetailPath, "%d") {
		errs = append(errs, errors.New("detail path must contain a %d listing ID placeholder"))
	}

	if c.Scrape.Workers < 1 || c.Scrape.Workers > 32 {
		errs = append(errs, errors.New("workers must be between 1 and 32"))
	}
	if c.Scrape.StartID > c.Scrape.EndID {
		errs = append(errs, errors.New("start ID must not exceed end ID"))
	}
	if c.Scrape.PauseEvery <= 0 {
		errs = append(errs, errors.New("pause interval must be positive"))
	}
	if c.Scrape.NavTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}

	if c.Tracker.DataDir == "" {
		errs = append(errs, errors.New("tracker data directory is required"))
	}
	if c.Tracker.RawKeep <= 0 {
		errs = append(errs, errors.New("raw snapshot retention must be positive"))
	}

	if c.Scheduler.ImmediateInterval <= 0 || c.Scheduler.UrgentInterval <= 0 ||
		c.Scheduler.RegularInterval <= 0 || c.Scheduler.StandardInterval <= 0 {
		errs = append(errs, errors.New("scheduler intervals must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// MergeCommandLineFlags merges CLI flag values into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Site.AccountName = account
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Scrape.Workers = workers
	}
	if start, ok := flags["start-id"].(int); ok && start > 0 {
		c.Scrape.StartID = start
	}
	if end, ok := flags["end-id"].(int); ok && end > 0 {
		c.Scrape.EndID = end
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Tracker.DataDir = dataDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load builds configuration from all sources with precedence:
// CLI flags > environment variables > .env file > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wcauction.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config.LoadFromEnv()
	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
