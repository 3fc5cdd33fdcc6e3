package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/voxarchive/internal/api"
	"github.com/MikeSquared-Agency/voxarchive/internal/cache"
	"github.com/MikeSquared-Agency/voxarchive/internal/config"
	"github.com/MikeSquared-Agency/voxarchive/internal/hermes"
	"github.com/MikeSquared-Agency/voxarchive/internal/processor"
	"github.com/MikeSquared-Agency/voxarchive/internal/retrieval"
	"github.com/MikeSquared-Agency/voxarchive/internal/tracer"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the retrieval API. PostgreSQL is required; Redis (page cache), NATS
(corpus events) and an OTLP collector are used when configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), config.Load())
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	slog.Info("voxarchive starting", "port", cfg.Port, "version", version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTracing, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "voxarchive",
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	// Catalog
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	sum := cat.Summary()
	slog.Info("catalog loaded", "voices", sum.Voices, "subtypes", sum.Subtypes, "quest_groups", sum.QuestGroups)

	// Database
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database connected")

	engine := retrieval.New(cat, db, slog.Default())
	opts := api.Options{Logger: slog.Default()}

	// Page cache (optional)
	var purger processor.Purger
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, serving without page cache", "error", err)
		} else {
			pages := cache.New(rdb, cfg.CacheTTL, slog.Default())
			defer pages.Close()
			opts.Cache = pages
			purger = pages
			slog.Info("page cache ready", "ttl", cfg.CacheTTL)
		}
	}

	// NATS/Hermes (optional)
	var bus processor.Publisher
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return err
		}
		defer hermesClient.Close()
		bus = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, corpus import events will not purge the cache")
	}

	proc := processor.New(purger, bus, slog.Default())
	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectCorpusImported, proc.HandleCorpusImported); err != nil {
			return err
		}
		opts.Reporter = proc
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, engine, opts)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("voxarchive ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
			return err
		}
	}

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	cancel()
	slog.Info("voxarchive stopped")
	return nil
}
