package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/scheduler"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the urgency-driven update scheduler",
	Long: `Run the update scheduler as a long-lived process. Listings are
reclassified by time remaining until bidding closes, and each urgency
tier is rescraped at its own cadence:

  immediate  (<= 1h to close)   every 1 minute
  urgent     (<= 3h)            every 5 minutes
  regular    (<= 6h)            every 10 minutes
  standard   (>  6h)            every 60 minutes

Stop with SIGINT or SIGTERM; an in-flight run completes before exit
takes effect on the next scheduling pass.`,
	Example: `  # Watch with defaults
  wcauction watch

  # Watch with a dedicated data directory
  wcauction watch --data-dir /var/lib/wcauction`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	p, _, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.GetLogger()
	log.WithField("version", version).Info("wcauction watch starting")

	sched := scheduler.New(&cfg.Scheduler, p, p)
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
