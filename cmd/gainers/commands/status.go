package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/pkg/config"
	"github.com/wonny/topgainers/pkg/logger"
	"github.com/wonny/topgainers/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the poller's stored state",
	Long: `Prints the poller's liveness record, the current session snapshot,
and the weekly ledger straight out of Redis.

Example:
  go run ./cmd/gainers status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	kv := redis.NewStore(rdb)
	store := gainers.NewStore(kv)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	fmt.Println("=== Poller Status ===")
	data, found, err := kv.Get(ctx, gainers.KeyStatus)
	switch {
	case err != nil:
		log.WithError(err).Error("Failed to read status record")
		return err
	case !found:
		fmt.Println("  (not published yet)")
	default:
		var pretty map[string]interface{}
		if err := json.Unmarshal(data, &pretty); err == nil {
			for k, v := range pretty {
				fmt.Printf("  %s: %v\n", k, v)
			}
		} else {
			fmt.Printf("  %s\n", data)
		}
	}

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	fmt.Printf("\n=== Today's Gainers (%d) ===\n", len(snapshot))
	printRecords(snapshot)

	ledger, err := store.Ledger(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	fmt.Printf("\n=== Weekly Ledger (%d) ===\n", len(ledger))
	printRecords(ledger)

	return nil
}

func printRecords(records []gainers.Record) {
	if len(records) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, rec := range records {
		fmt.Printf("  %-8s %-10s %s\n", rec.Symbol, rec.Day, rec.Readable)
	}
}
