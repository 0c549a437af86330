package main

import (
	"context"
	"maps"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/config"
	"teamhub/internal/db"
	"teamhub/internal/email"
	"teamhub/internal/jobs"
	"teamhub/internal/logging"
	"teamhub/internal/maintenance"
	"teamhub/internal/metrics"
	"teamhub/internal/outreach"
	"teamhub/internal/server"
	"teamhub/internal/store"
	"teamhub/internal/store/memory"
)

func main() {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: "teamhub",
	})

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load YAML config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var st store.Store
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
		st = memory.New()
	} else {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		logger.Info().Msg("migrations completed")
		st = database
	}

	metrics.Init(st)

	gate := authz.MustNewGate()
	appliers := maintenance.MustNewRegistry()

	// Notifications
	mailer := email.NewService(cfg, logger)
	notifier := email.NewNotifier(cfg, mailer, st.Users(), logger)
	if mailer.IsEnabled() {
		logger.Info().Str("smtp_host", cfg.SMTPHost).Msg("email notifications enabled")
	}

	bases := outreach.DefaultBases()
	maps.Copy(bases, yamlCfg.OutreachPoints())

	maintenanceSvc := maintenance.NewService(st, gate, appliers,
		maintenance.WithNotifier(notifier),
		maintenance.WithLogger(logger),
	)
	accountSvc := accounts.NewService(st, gate, logger)

	if seeds := yamlCfg.SeedUsers(); len(seeds) > 0 {
		n, err := accountSvc.EnsureUsers(ctx, seeds)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed users")
		}
		logger.Info().Int("created", n).Int("configured", len(seeds)).Msg("seed users ensured")
	}

	logger.Info().Str("env", cfg.Env).Msg("configuration loaded")

	srv := server.New(cfg, logger)
	srv.RegisterRoutes(server.Deps{
		Store:       st,
		Gate:        gate,
		Maintenance: maintenanceSvc,
		Outreach:    outreach.NewService(st, gate, bases, logger),
		Accounts:    accountSvc,
	})

	digest := jobs.NewPendingDigest(st, notifier, cfg.DigestInterval, cfg.DigestMinAge, logger)
	go digest.Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	mailer.Wait()
}
