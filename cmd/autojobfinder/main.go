package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"autojobfinder/internal/config"
	"autojobfinder/internal/exporter"
	"autojobfinder/internal/logging"
	"autojobfinder/internal/orchestrator"
	"autojobfinder/internal/store"
	"autojobfinder/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	once := flag.Bool("once", false, "run a single pass even when scheduling is enabled")
	flag.Parse()

	os.Exit(run(*configPath, *once))
}

func run(configPath string, once bool) int {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Printf("Failed to initialize logging: %v", err)
		return 1
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting AutoJobFinder", map[string]interface{}{
		"config":     configPath,
		"apply_mode": cfg.Application.ApplyActive,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []orchestrator.Option

	if cfg.Dedup.Enabled {
		seen, err := store.NewRedisStore(ctx, cfg.Dedup.RedisURL, cfg.Dedup.TTL, logger)
		if err != nil {
			logger.Error("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
			return 1
		}
		defer seen.Close()
		opts = append(opts, orchestrator.WithSeenStore(seen))
	}

	if cfg.Storage.PostgresURL != "" {
		sink, err := store.NewPostgresSink(ctx, cfg.Storage.PostgresURL, logger)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL", map[string]interface{}{"error": err.Error()})
			return 1
		}
		defer sink.Close()
		opts = append(opts, orchestrator.WithSink(sink))
	}

	if up := cfg.Output.Upload; up.Enabled {
		uploader, err := exporter.NewSpacesUploader(exporter.SpacesConfig{
			Bucket:          up.Bucket,
			Region:          up.Region,
			Endpoint:        up.Endpoint,
			Prefix:          up.Prefix,
			PublicURL:       up.PublicURL,
			AccessKeyID:     up.AccessKeyID,
			AccessKeySecret: up.AccessKeySecret,
		}, logger)
		if err != nil {
			logger.Error("Failed to configure artifact upload", map[string]interface{}{"error": err.Error()})
			return 1
		}
		opts = append(opts, orchestrator.WithUploader(uploader))
	}

	orch := orchestrator.New(cfg, logger, opts...)

	if cfg.Schedule.Enabled && !once {
		if err := orchestrator.NewScheduler(cfg.Schedule.Cron, orch, logger).Run(ctx); err != nil {
			logger.Error("Scheduler failed", map[string]interface{}{"error": err.Error()})
			return 1
		}
		return 0
	}

	summary, err := orch.Run(ctx)
	if err != nil {
		logger.Error("Run failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	for _, result := range summary.Platforms {
		fields := map[string]interface{}{
			"platform": string(result.Platform),
			"found":    result.Found,
			"skipped":  result.Skipped,
			"applied":  result.Applied,
			"duration": utils.FormatDuration(result.Duration),
		}
		if result.OutputFile != "" {
			fields["file"] = result.OutputFile
		}
		if result.OutputURL != "" {
			fields["url"] = result.OutputURL
		}
		logger.Info("Platform summary", fields)
	}
	logger.Info("AutoJobFinder finished", map[string]interface{}{"run_id": summary.RunID})
	return 0
}
