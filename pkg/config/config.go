package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unklstewy/ads-flyby/pkg/adsb"
	"github.com/unklstewy/ads-flyby/pkg/flightaware"
	"github.com/unklstewy/ads-flyby/pkg/geofence"
)

// Config represents the complete application configuration.
// It is read from a JSON or YAML file, chosen by extension.
type Config struct {
	Feed        FeedConfig           `json:"feed" yaml:"feed"`
	Region      geofence.BoundingBox `json:"region" yaml:"region"`
	FlightAware FlightAwareConfig    `json:"flightaware" yaml:"flightaware"`
	Assets      AssetsConfig         `json:"assets" yaml:"assets"`
	Display     DisplayConfig        `json:"display" yaml:"display"`
	Logging     LoggingConfig        `json:"logging" yaml:"logging"`
}

// FeedConfig describes the local ADS-B decoder.
type FeedConfig struct {
	// URL of aircraft.json (default: http://localhost:8080/data/aircraft.json)
	URL string `json:"url" yaml:"url"`

	// PollIntervalSeconds is the time between polls (default: 5)
	PollIntervalSeconds int `json:"poll_interval_seconds" yaml:"poll_interval_seconds"`

	// BackoffSeconds is the wait after a failed poll (default: 10)
	BackoffSeconds int `json:"backoff_seconds" yaml:"backoff_seconds"`

	// RequestTimeoutSeconds bounds each feed request (default: 5)
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`

	// StartupTimeoutSeconds is how long to wait for the feed at launch (default: 60)
	StartupTimeoutSeconds int `json:"startup_timeout_seconds" yaml:"startup_timeout_seconds"`
}

// FlightAwareConfig contains FlightAware AeroAPI settings.
type FlightAwareConfig struct {
	// APIKey is the FlightAware API key for AeroAPI v4
	// Sign up at: https://www.flightaware.com/aeroapi/
	APIKey string `json:"api_key" yaml:"api_key"`

	// BaseURL of AeroAPI
	BaseURL string `json:"base_url" yaml:"base_url"`

	// TimeoutSeconds bounds a single lookup (default: 5)
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	// RequestsPerHour limits the API call rate, 0 = unlimited
	RequestsPerHour int `json:"requests_per_hour" yaml:"requests_per_hour"`
}

// AssetsConfig points at the files that dress up a detection.
type AssetsConfig struct {
	// OperatorsCSV is the ICAO,Naam carrier table
	OperatorsCSV string `json:"operators_csv" yaml:"operators_csv"`

	// LogoDir holds <ICAO>.png logo files
	LogoDir string `json:"logo_dir" yaml:"logo_dir"`

	// LogoSize is the edge length logos are scaled to, in pixels (default: 100)
	LogoSize int `json:"logo_size" yaml:"logo_size"`

	// AlertSound is the mp3 played for a new aircraft
	AlertSound string `json:"alert_sound" yaml:"alert_sound"`

	// AlertPlayer is the command used to play AlertSound (default: mpg123)
	AlertPlayer string `json:"alert_player" yaml:"alert_player"`
}

// DisplayConfig controls the presentation side.
type DisplayConfig struct {
	// RefreshMillis is how often the display checks for updates (default: 1000)
	RefreshMillis int `json:"refresh_millis" yaml:"refresh_millis"`

	// ExpirySeconds is how long a detection stays on screen (default: 60)
	ExpirySeconds int `json:"expiry_seconds" yaml:"expiry_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level" yaml:"level"`

	// File is the log file; empty logs to stderr
	File string `json:"file" yaml:"file"`

	// MaxSizeMB rotates the file at this size
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept
	MaxBackups int `json:"max_backups" yaml:"max_backups"`
}

// Load reads configuration from a JSON or YAML file.
// If the file doesn't exist, returns a default configuration.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON or YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold the AeroAPI key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:                   adsb.DefaultFeedURL,
			PollIntervalSeconds:   5,
			BackoffSeconds:        10,
			RequestTimeoutSeconds: 5,
			StartupTimeoutSeconds: 60,
		},
		Region: geofence.DefaultRegion(),
		FlightAware: FlightAwareConfig{
			BaseURL:         flightaware.BaseURL,
			TimeoutSeconds:  5,
			RequestsPerHour: 0,
		},
		Assets: AssetsConfig{
			OperatorsCSV: "ICAO codes.csv",
			LogoDir:      "logos",
			LogoSize:     100,
			AlertSound:   "ping.mp3",
			AlertPlayer:  "mpg123",
		},
		Display: DisplayConfig{
			RefreshMillis: 1000,
			ExpirySeconds: 60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "vliegtuigmonitor.log",
			MaxSizeMB:  16,
			MaxBackups: 3,
		},
	}
}

// Validate checks values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Feed.URL) == "" {
		errs = append(errs, errors.New("feed.url is required"))
	}
	if c.Feed.PollIntervalSeconds <= 0 {
		errs = append(errs, errors.New("feed.poll_interval_seconds must be positive"))
	}
	if c.Feed.BackoffSeconds <= 0 {
		errs = append(errs, errors.New("feed.backoff_seconds must be positive"))
	}
	if c.Feed.StartupTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("feed.startup_timeout_seconds must be positive"))
	}
	if c.FlightAware.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("flightaware.timeout_seconds must be positive"))
	}
	if c.FlightAware.RequestsPerHour < 0 {
		errs = append(errs, errors.New("flightaware.requests_per_hour must not be negative"))
	}
	if c.Display.RefreshMillis <= 0 {
		errs = append(errs, errors.New("display.refresh_millis must be positive"))
	}
	if c.Display.ExpirySeconds <= 0 {
		errs = append(errs, errors.New("display.expiry_seconds must be positive"))
	}
	if err := c.Region.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("region: %w", err))
	}
	return errors.Join(errs...)
}

// PollInterval returns the poll interval as a duration.
func (f FeedConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalSeconds) * time.Second
}

// Backoff returns the failure backoff as a duration.
func (f FeedConfig) Backoff() time.Duration {
	return time.Duration(f.BackoffSeconds) * time.Second
}

// RequestTimeout returns the per-request feed timeout as a duration.
func (f FeedConfig) RequestTimeout() time.Duration {
	return time.Duration(f.RequestTimeoutSeconds) * time.Second
}

// StartupTimeout returns the startup readiness timeout as a duration.
func (f FeedConfig) StartupTimeout() time.Duration {
	return time.Duration(f.StartupTimeoutSeconds) * time.Second
}

// Timeout returns the AeroAPI lookup timeout as a duration.
func (f FlightAwareConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Refresh returns the display refresh cadence.
func (d DisplayConfig) Refresh() time.Duration {
	return time.Duration(d.RefreshMillis) * time.Millisecond
}

// Expiry returns how long an event stays on screen.
func (d DisplayConfig) Expiry() time.Duration {
	return time.Duration(d.ExpirySeconds) * time.Second
}

// ResolvePaths makes relative asset and log paths relative to dir,
// normally the directory holding the config file.
func (c *Config) ResolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	resolve(&c.Assets.OperatorsCSV)
	resolve(&c.Assets.LogoDir)
	resolve(&c.Assets.AlertSound)
	resolve(&c.Logging.File)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows the API key to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if url := os.Getenv("ADS_FLYBY_FEED_URL"); url != "" {
		c.Feed.URL = url
	}
	if faKey := os.Getenv("ADS_FLYBY_FLIGHTAWARE_API_KEY"); faKey != "" {
		c.FlightAware.APIKey = faKey
	}
	if level := os.Getenv("ADS_FLYBY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
