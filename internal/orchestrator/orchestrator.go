// Package orchestrator runs the enabled platforms one after another and
// owns the browser session and HTTP client they share.
package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"autojobfinder/internal/browser"
	"autojobfinder/internal/config"
	"autojobfinder/internal/exporter"
	"autojobfinder/internal/logging/types"
	"autojobfinder/internal/platform"
	"autojobfinder/internal/store"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

// DriverFactory opens a browser session
type DriverFactory func() (browser.Driver, error)

// Uploader publishes an exported artifact and returns its URL
type Uploader interface {
	Upload(ctx context.Context, file string) (string, error)
}

// Sink records the listings of a run
type Sink interface {
	Upsert(ctx context.Context, runID string, listings []*models.JobListing) error
}

// Orchestrator runs authenticate, search, apply and persist for every
// enabled platform in order, halting at the first failure
type Orchestrator struct {
	cfg         *config.Config
	logger      types.Logger
	newDriver   DriverFactory
	newPlatform PlatformFactory
	exporter    platform.Exporter
	uploader    Uploader
	seen        store.SeenStore
	sink        Sink
	now         func() time.Time
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithDriverFactory replaces the Chrome session factory
func WithDriverFactory(f DriverFactory) Option {
	return func(o *Orchestrator) { o.newDriver = f }
}

// WithPlatformFactory replaces the adapter factory
func WithPlatformFactory(f PlatformFactory) Option {
	return func(o *Orchestrator) { o.newPlatform = f }
}

// WithExporter replaces the CSV exporter
func WithExporter(e platform.Exporter) Option {
	return func(o *Orchestrator) { o.exporter = e }
}

// WithUploader uploads every exported artifact
func WithUploader(u Uploader) Option {
	return func(o *Orchestrator) { o.uploader = u }
}

// WithSeenStore skips listings handled by earlier runs
func WithSeenStore(s store.SeenStore) Option {
	return func(o *Orchestrator) { o.seen = s }
}

// WithSink records every listing of a run
func WithSink(s Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// New creates an orchestrator for cfg
func New(cfg *config.Config, logger types.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		logger:      logger,
		newPlatform: NewPlatform,
		exporter:    exporter.NewCSVExporter(cfg.Output.Dir, logger),
		now:         time.Now,
	}
	o.newDriver = func() (browser.Driver, error) {
		return browser.NewRodDriver(browser.Options{
			Headless:        cfg.Browser.Headless,
			UserAgent:       cfg.Browser.UserAgent,
			Bin:             cfg.Browser.Bin,
			PageLoadTimeout: cfg.PageLoadTimeout(),
		}, logger)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every enabled platform. The summary covers the platforms
// processed so far even when an error is returned.
func (o *Orchestrator) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:     utils.GenerateRunID(),
		StartedAt: o.now(),
		ApplyMode: o.cfg.Application.ApplyActive,
	}
	logger := o.logger.WithField("run_id", summary.RunID)

	enabled := o.cfg.EnabledPlatforms()
	if len(enabled) == 0 {
		logger.Warn("No platforms enabled in configuration")
		summary.FinishedAt = o.now()
		return summary, nil
	}

	logger.Info("Starting run", map[string]interface{}{
		"platforms":  len(enabled),
		"apply_mode": summary.ApplyMode,
	})

	res := Resources{
		HTTPClient: &http.Client{Timeout: o.cfg.PageLoadTimeout()},
		Delays: platform.Delays{
			Min:      utils.SecondsToDuration(o.cfg.Delays.MinDelay),
			Max:      utils.SecondsToDuration(o.cfg.Delays.MaxDelay),
			PageLoad: o.cfg.PageLoadTimeout(),
		},
		Settings: platform.Settings{
			ApplyActive:   o.cfg.Application.ApplyActive,
			DefaultAnswer: o.cfg.Application.DefaultAnswer,
			MaxApplySteps: o.cfg.Application.MaxApplySteps,
		},
		Logger: logger,
	}
	defer res.HTTPClient.CloseIdleConnections()

	if needsBrowser(enabled, summary.ApplyMode) {
		driver, err := o.newDriver()
		if err != nil {
			logger.Error("Failed to start browser", map[string]interface{}{"error": err.Error()})
			summary.FinishedAt = o.now()
			return summary, fmt.Errorf("failed to start browser: %w", err)
		}
		defer func() {
			if err := driver.Quit(); err != nil {
				logger.Warn("Error closing browser", map[string]interface{}{"error": err.Error()})
			}
		}()
		res.Driver = driver
	}

	for _, p := range enabled {
		result, err := o.runPlatform(ctx, logger, summary.RunID, p, res)
		summary.Platforms = append(summary.Platforms, result)
		if err != nil {
			logger.Error("Platform run failed", map[string]interface{}{
				"platform": string(p),
				"error":    err.Error(),
			})
			summary.FinishedAt = o.now()
			return summary, fmt.Errorf("%s: %w", p, err)
		}
	}

	summary.FinishedAt = o.now()
	logger.Info("Run completed", map[string]interface{}{
		"found":    summary.TotalFound(),
		"duration": utils.FormatDuration(summary.FinishedAt.Sub(summary.StartedAt)),
	})
	return summary, nil
}

func (o *Orchestrator) runPlatform(ctx context.Context, logger types.Logger, runID string, p models.Platform, res Resources) (result models.PlatformResult, err error) {
	start := o.now()
	result.Platform = p
	defer func() { result.Duration = o.now().Sub(start) }()

	logger = logger.WithField("platform", string(p))

	plat, err := o.newPlatform(p, res)
	if err != nil {
		return result, err
	}
	criteria, err := o.cfg.SearchCriteria(p)
	if err != nil {
		return result, err
	}

	if err := plat.Authenticate(ctx); err != nil {
		return result, err
	}

	listings, err := plat.Search(ctx, criteria)
	if err != nil {
		return result, err
	}
	result.Found = len(listings)

	if o.seen != nil {
		fresh, err := store.FilterUnseen(ctx, o.seen, listings)
		if err != nil {
			return result, fmt.Errorf("seen-listing lookup: %w", err)
		}
		result.Skipped = len(listings) - len(fresh)
		listings = fresh
		if result.Skipped > 0 {
			logger.Info("Skipping listings seen in earlier runs", map[string]interface{}{"count": result.Skipped})
		}
	}

	if o.cfg.Application.ApplyActive {
		if err := plat.Apply(ctx, listings); err != nil {
			return result, err
		}
		for _, listing := range listings {
			if listing.Applied {
				result.Applied++
			}
		}
	}

	result.OutputFile, err = platform.Persist(ctx, o.exporter, p, listings, logger)
	if err != nil {
		return result, err
	}

	if o.uploader != nil && result.OutputFile != "" {
		if result.OutputURL, err = o.uploader.Upload(ctx, result.OutputFile); err != nil {
			logger.Error("Artifact upload failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if o.sink != nil {
		if err := o.sink.Upsert(ctx, runID, listings); err != nil {
			logger.Error("Failed to record listings", map[string]interface{}{"error": err.Error()})
		}
	}

	if o.seen != nil {
		if err := o.seen.MarkSeen(ctx, store.Keys(listings)...); err != nil {
			logger.Error("Failed to mark listings as seen", map[string]interface{}{"error": err.Error()})
		}
	}

	logger.Info("Platform completed", map[string]interface{}{
		"found":   result.Found,
		"skipped": result.Skipped,
		"applied": result.Applied,
		"file":    result.OutputFile,
	})
	return result, nil
}
