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
	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/config"
	"github.com/wonny/topgainers/pkg/database"
	"github.com/wonny/topgainers/pkg/logger"
	"github.com/wonny/topgainers/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read API only",
	Long: `Starts the read-only API server without the polling loop.

Useful when the poller runs elsewhere and this instance only serves what
is already in Redis.

Endpoints:
  GET  /health               - Health check
  GET  /api/gainers/today    - Current session's gainers
  GET  /api/gainers/week     - Rolling weekly ledger
  GET  /api/gainers/archive  - Archived gainers by date range (needs ARCHIVE_ENABLED)
  GET  /api/status           - Poller liveness record
  GET  /ws/status            - Status change stream (websocket)

Example:
  go run ./cmd/gainers api
  go run ./cmd/gainers api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	log.Info("Connected to Redis")

	kv := redis.NewStore(rdb)
	store := gainers.NewStore(kv)

	// Archive reads are only offered when the Postgres archive is on
	var archiveHandler *handlers.ArchiveHandler
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		archiveHandler = handlers.NewArchiveHandler(archive.NewRepository(db.Pool), log)
	}

	router := api.NewRouter(
		handlers.NewGainersHandler(store, log),
		handlers.NewStatusHandler(kv, log),
		archiveHandler,
		handlers.NewStreamHandler(kv, log),
		redis.NewRateLimiter(rdb),
		log,
	)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
