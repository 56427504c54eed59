package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/ads-flyby/internal/alert"
	"github.com/unklstewy/ads-flyby/internal/display"
	"github.com/unklstewy/ads-flyby/internal/enrich"
	"github.com/unklstewy/ads-flyby/internal/logging"
	"github.com/unklstewy/ads-flyby/internal/logos"
	"github.com/unklstewy/ads-flyby/internal/poller"
	"github.com/unklstewy/ads-flyby/internal/tracker"
	"github.com/unklstewy/ads-flyby/pkg/adsb"
	"github.com/unklstewy/ads-flyby/pkg/config"
	"github.com/unklstewy/ads-flyby/pkg/flightaware"
	"github.com/unklstewy/ads-flyby/pkg/operators"
)

// ads-flyby watches a local ADS-B receiver and shows each aircraft that
// flies through the configured region once, with its route and carrier.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file (JSON or YAML)")
	logLevel := flag.String("log-level", "", "Override log level (debug, info, warn, error)")
	noUI := flag.Bool("no-ui", false, "Print detections to stdout instead of starting the terminal UI")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := saveConfig(*configPath); err != nil {
			log.Fatalf("ads-flyby: %v", err)
		}
		return
	}

	if err := run(*configPath, *logLevel, *noUI); err != nil {
		log.Fatalf("ads-flyby: %v", err)
	}
}

// saveConfig writes the configuration at path, defaults and environment
// overrides included, back to path so it can be edited.
func saveConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	log.Printf("Configuration written to: %s", path)
	return nil
}

// logFallback is where logs go when no log file is configured. The terminal
// UI owns the screen, so it gets nothing.
func logFallback(headless bool) io.Writer {
	if headless {
		return os.Stderr
	}
	return io.Discard
}

// awaitFeed runs the startup readiness wait. It reports false with a nil
// error when ctx was cancelled while waiting, which is a normal shutdown.
func awaitFeed(ctx context.Context, source adsb.DataSource, ready poller.ReadyConfig, logger *slog.Logger) (bool, error) {
	if err := poller.WaitForFeed(ctx, source, ready, logger); err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func run(configPath, logLevel string, headless bool) error {
	log.Println("===========================================")
	log.Println("  ADS-B Flyby Monitor")
	log.Println("===========================================")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// Asset paths in a config file are relative to that file
	if _, err := os.Stat(configPath); err == nil {
		cfg.ResolvePaths(filepath.Dir(configPath))
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("Configuration loaded from: %s", configPath)
	log.Printf("Feed: %s (every %v)", cfg.Feed.URL, cfg.Feed.PollInterval())
	log.Printf("Region: %s", cfg.Region)
	if cfg.Logging.File != "" {
		log.Printf("Logging to: %s", cfg.Logging.File)
	} else if !headless {
		log.Println("⚠️  No log file configured, logs are discarded while the UI runs")
	}

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Fallback:   logFallback(headless),
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := adsb.NewFeedClient(cfg.Feed.URL, cfg.Feed.RequestTimeout())
	defer source.Close()

	log.Printf("Waiting up to %v for %s...", cfg.Feed.StartupTimeout(), source.URL())
	ready := poller.DefaultReadyConfig()
	ready.Timeout = cfg.Feed.StartupTimeout()
	ok, err := awaitFeed(ctx, source, ready, logger)
	if err != nil {
		return err
	}
	if !ok {
		log.Println("Interrupted while waiting for the feed")
		return nil
	}
	log.Println("✓ Feed reachable")

	dir := operators.Load(cfg.Assets.OperatorsCSV, logger)
	log.Printf("✓ %d operators loaded", dir.Len())

	// A nil lookup makes every flight Unknown without touching the network
	var lookup enrich.FlightLookup
	if cfg.FlightAware.APIKey != "" {
		lookup = flightaware.NewClient(flightaware.Config{
			APIKey:          cfg.FlightAware.APIKey,
			BaseURL:         cfg.FlightAware.BaseURL,
			RequestsPerHour: cfg.FlightAware.RequestsPerHour,
			Timeout:         cfg.FlightAware.Timeout(),
		})
	} else {
		log.Println("⚠️  No FlightAware API key, routes will show as Unknown")
		logger.Warn("flightaware api key not configured")
	}
	enricher := enrich.New(lookup, dir, cfg.FlightAware.Timeout(), logger)

	trk := tracker.New(cfg.Region, enricher,
		tracker.WithLogos(logos.NewResolver(cfg.Assets.LogoDir, cfg.Assets.LogoSize, logger)),
		tracker.WithAlerts(alert.New(cfg.Assets.AlertSound, cfg.Assets.AlertPlayer, logger)),
		tracker.WithLogger(logger),
	)

	feed := display.NewFeed()
	consumer := display.NewConsumer(feed, cfg.Display.Expiry())
	loop := poller.New(source, trk, feed, cfg.Feed.PollInterval(), cfg.Feed.Backoff(), logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(ctx)
	})

	if headless {
		log.Println("Running headless, press Ctrl+C to stop")
		g.Go(func() error {
			return runHeadless(ctx, consumer, os.Stdout, cfg.Display.Refresh())
		})
	} else {
		p := tea.NewProgram(newModel(consumer, cfg.Region, cfg.Display.Refresh()), tea.WithAltScreen())
		g.Go(func() error {
			defer cancel()
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("terminal UI: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			p.Quit()
			return nil
		})
	}

	err = g.Wait()
	logger.Info("shutting down",
		slog.Any("stats", loop.Stats()),
		slog.Int("reported", trk.ReportedCount()),
		slog.Int("chimed", trk.ChimedCount()))
	log.Printf("%d aircraft reported, %d alerts", trk.ReportedCount(), trk.ChimedCount())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
