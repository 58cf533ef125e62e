package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/topgainers/internal/archive"
	"github.com/wonny/topgainers/internal/gainers"
	"github.com/wonny/topgainers/internal/scheduler"
	"github.com/wonny/topgainers/internal/scheduler/jobs"
	"github.com/wonny/topgainers/pkg/config"
	"github.com/wonny/topgainers/pkg/database"
	"github.com/wonny/topgainers/pkg/logger"
	"github.com/wonny/topgainers/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the archive jobs",
	Long: `Inspect and run the scheduled archive jobs.

Registered jobs:
- ledger_archive: weekdays 16:30 (copy the weekly ledger to Postgres)
- archive_retention: Sunday 03:00 (prune old archive rows)

Subcommands:
  list    - registered jobs and their schedules
  run     - run one job immediately

Example:
  go run ./cmd/gainers scheduler list
  go run ./cmd/gainers scheduler run ledger_archive`,
}

var (
	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	history, err := sched.GetJobHistory(jobName)
	if err != nil {
		return fmt.Errorf("job history: %w", err)
	}

	result := history.LastResult()
	if result == nil {
		return fmt.Errorf("job %s recorded no result", jobName)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}

	fmt.Printf("Job completed in %s (success rate %.0f%%)\n",
		result.Duration.Round(time.Millisecond), history.SuccessRate()*100)
	return nil
}

// initScheduler builds the scheduler with the archive jobs registered. The
// returned cleanup closes the Redis and Postgres connections.
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if !cfg.Database.Enabled {
		return nil, nil, fmt.Errorf("archiving is disabled; set ARCHIVE_ENABLED=true and DATABASE_URL")
	}

	log := logger.New(cfg)

	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	cleanup := func() {
		db.Close()
		rdb.Close()
	}

	store := gainers.NewStore(redis.NewStore(rdb))
	repo := archive.NewRepository(db.Pool)

	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ensure archive schema: %w", err)
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewArchiveJob(store, repo, loc, log)); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewRetentionJob(repo, log)); err != nil {
		cleanup()
		return nil, nil, err
	}

	return sched, cleanup, nil
}
