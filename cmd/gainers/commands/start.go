package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/topgainers/internal/api"
	"github.com/wonny/topgainers/internal/api/handlers"
	"github.com/wonny/topgainers/internal/archive"
	"github.com/wonny/topgainers/internal/external/yahoo"
	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/internal/poller"
	"github.com/wonny/topgainers/internal/scheduler"
	"github.com/wonny/topgainers/internal/scheduler/jobs"
	"github.com/wonny/topgainers/pkg/config"
	"github.com/wonny/topgainers/pkg/database"
	"github.com/wonny/topgainers/pkg/httputil"
	"github.com/wonny/topgainers/pkg/logger"
	"github.com/wonny/topgainers/pkg/redis"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the poller and the API server",
	Long: `Starts the full service: the polling loop, the read API, and
(when ARCHIVE_ENABLED is set) the Postgres archive jobs.

The loop queries the screener every tick during market hours, rolls each
finished session into the weekly ledger, and sleeps until the next
session outside market hours.

Example:
  go run ./cmd/gainers start
  go run ./cmd/gainers start --port 8080`,
	RunE: runStart,
}

var startPort string

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startPort, "port", "", "API server port (overrides PORT)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if startPort != "" {
		cfg.Port = startPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"tick":     cfg.Market.TickInterval,
		"timezone": cfg.Market.Timezone,
	}).Info("Initializing top gainers service")

	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	// 3. Connect to Redis
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	log.Info("Connected to Redis")

	kv := redis.NewStore(rdb)
	store := gainers.NewStore(kv)

	// 4. Build the polling loop
	httpClient := httputil.New(log, cfg.Yahoo.Timeout)
	yahooClient := yahoo.NewClient(cfg, httpClient, log)

	loop := poller.New(
		poller.Config{Location: loc, Tick: cfg.Market.TickInterval},
		store,
		gainers.NewConsolidator(store, log),
		poller.NewReporter(kv, log),
		yahooClient,
		yahooClient,
		log,
	)

	// 5. Optional archive scheduler
	var archiveHandler *handlers.ArchiveHandler
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := archive.NewRepository(db.Pool)
		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure archive schema: %w", err)
		}
		archiveHandler = handlers.NewArchiveHandler(repo, log)

		sched := scheduler.New(log)
		if err := sched.AddJob(jobs.NewArchiveJob(store, repo, loc, log)); err != nil {
			return err
		}
		if err := sched.AddJob(jobs.NewRetentionJob(repo, log)); err != nil {
			return err
		}

		sched.Start()
		defer sched.Stop()

		log.Info("Archive scheduler started")
	}

	// 6. Build the read API
	router := api.NewRouter(
		handlers.NewGainersHandler(store, log),
		handlers.NewStatusHandler(kv, log),
		archiveHandler,
		handlers.NewStreamHandler(kv, log),
		redis.NewRateLimiter(rdb),
		log,
	)
	server := api.New(cfg, log, router)

	// 7. Run loop and server until interrupted
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
	}()

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("Service started")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	// Stop the loop first so no write lands mid-shutdown
	cancel()
	<-loopDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Service stopped")
	return nil
}
