package commands

import (
	"github.com/spf13/cobra"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the weekly ledger to Postgres once",
	Long: `Runs the ledger archive job immediately, outside its schedule.
Shorthand for "scheduler run ledger_archive".

Requires ARCHIVE_ENABLED=true and DATABASE_URL.

Example:
  go run ./cmd/gainers archive`,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	return runSchedulerJob(cmd, []string{"ledger_archive"})
}
