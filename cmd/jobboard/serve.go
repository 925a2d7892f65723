package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/events"
	"github.com/jonathan/jobboard/internal/logger"
	"github.com/jonathan/jobboard/internal/retention"
	"github.com/jonathan/jobboard/internal/server"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the job board REST API.

Listings, applications and accounts live in memory unless --store postgres is
given together with DATABASE_URL. Tracker events are published to Redis when
REDIS_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("store", config.StoreMemory, "Storage backend: memory or postgres")
	serveCmd.Flags().Bool("seed", true, "Load the sample listings on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd, "port", "store", "seed"); err != nil {
		return err
	}

	cfg, err := config.LoadServerConfig(v)
	if err != nil {
		return err
	}
	jwtCfg, err := config.NewJWTConfig(v)
	if err != nil {
		return err
	}
	passwordCfg, err := config.NewPasswordConfig(v)
	if err != nil {
		return err
	}
	rateCfg, err := ratelimit.LoadConfig(v)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := openPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("closing publisher", zap.Error(err))
		}
	}()

	scheduler, err := retention.New(store, cfg.EventRetention, cfg.RetentionSchedule, log.Named("retention"))
	if err != nil {
		return fmt.Errorf("failed to create retention scheduler: %w", err)
	}

	srv, err := server.New(server.Config{
		Addr:         cfg.Addr(),
		CORSOrigin:   cfg.CORSOrigin,
		CookieSecure: cfg.CookieSecure,
		Store:        store,
		Publisher:    publisher,
		Scheduler:    scheduler,
		RateLimit:    rateCfg,
		JWT:          jwtCfg,
		Password:     passwordCfg,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("starting server",
		zap.String("addr", cfg.Addr()),
		zap.String("store", cfg.Store),
		zap.Bool("redis", cfg.RedisURL != ""),
	)
	return srv.Run(ctx)
}

// openStore returns the configured store, migrated and seeded as requested.
func openStore(ctx context.Context, cfg *config.ServerConfig, log *zap.Logger) (db.Store, error) {
	if cfg.Store != config.StorePostgres {
		return db.NewMemory(cfg.Seed), nil
	}

	pg, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	if cfg.Seed {
		if err := pg.Seed(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		log.Info("sample listings seeded")
	}
	return pg, nil
}

// openPublisher connects to Redis when REDIS_URL is set.
func openPublisher(ctx context.Context, cfg *config.ServerConfig, log *zap.Logger) (events.Publisher, error) {
	if cfg.RedisURL == "" {
		log.Debug("REDIS_URL not set, events are not published")
		return events.NoopPublisher{}, nil
	}
	pub, err := events.NewRedisPublisher(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return pub, nil
}
