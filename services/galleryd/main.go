package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mosaicchain/config"
	"mosaicchain/integrations/webhooks"
	"mosaicchain/observability/logging"
	telemetry "mosaicchain/observability/otel"
	gcfg "mosaicchain/services/galleryd/config"
	"mosaicchain/services/galleryd/app"
	"mosaicchain/services/galleryd/journal"
	"mosaicchain/services/galleryd/server"
	"mosaicchain/storage"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "services/galleryd/config.yaml", "path to galleryd configuration file")
	flag.Parse()

	cfg, err := gcfg.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.Setup(logging.Options{
		Service:    "galleryd",
		Env:        cfg.Environment,
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logCloser.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("galleryd exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg gcfg.Config, logger *slog.Logger) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(rootCtx, telemetry.Config{
		ServiceName: "galleryd",
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	var db storage.Database
	if dir := strings.TrimSpace(cfg.DataDir); dir != "" {
		ldb, err := storage.NewLevelDB(dir)
		if err != nil {
			return err
		}
		db = ldb
	} else {
		logger.Warn("no data_dir configured, state is kept in memory")
		db = storage.NewMemDB()
	}
	defer db.Close()

	j, err := journal.Open(cfg.Journal.Driver, cfg.Journal.DSN)
	if err != nil {
		return err
	}
	defer j.Close()

	opts := app.Options{
		GalleryAccount: cfg.Accounts.Gallery,
		ControlAccount: cfg.Accounts.Control,
		Journal:        j,
		Logger:         logger,
	}
	if url := strings.TrimSpace(cfg.Webhook.URL); url != "" {
		dispatcher, err := webhooks.NewDispatcher(url, []byte(cfg.Webhook.Secret),
			webhooks.WithLogger(logger),
			webhooks.WithRetryPolicy(cfg.Webhook.MaxAttempts, cfg.Webhook.MinBackoff.Duration, cfg.Webhook.MaxBackoff.Duration),
		)
		if err != nil {
			return err
		}
		defer dispatcher.Close()
		opts.Notifier = dispatcher
	}
	a := app.New(db, opts)
	if err := bootstrap(rootCtx, a, cfg.GenesisFile, logger); err != nil {
		return err
	}

	scheduler, err := a.StartEmission(rootCtx, cfg.Emission.Schedule)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	srv := server.New(server.Options{
		App:         a,
		Journal:     j,
		Idempotency: j,
		Logger:      logger,
		Auth: server.AuthConfig{
			Enabled:    cfg.Auth.Enabled,
			HMACSecret: cfg.Auth.HMACSecret,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  cfg.Auth.ClockSkew.Duration,
		},
		RateLimit: server.RateLimit{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
	})
	if err := srv.Run(rootCtx, cfg.ListenAddress); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func bootstrap(ctx context.Context, a *app.App, path string, logger *slog.Logger) error {
	done, err := a.Bootstrapped()
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("state is empty and no genesis file is configured")
	}
	g, err := config.LoadGenesis(path)
	if err != nil {
		return err
	}
	if err := a.Bootstrap(ctx, g); err != nil {
		return err
	}
	logger.Info("genesis applied", "file", path, "communities", len(g.Communities))
	return nil
}
