package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/database"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/pipeline"
	"github.com/lcastelli/streampulse/internal/prober"
)

var (
	probeLimit  int
	probeSource string
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run a test cycle over the channel catalog",
	Long: `Probe tests stored channels concurrently, appends each outcome to the
channel's result history, recomputes quality metrics, and updates channel
status: a successful probe marks the channel active, a failed one inactive.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().IntVar(&probeLimit, "limit", 0, "maximum channels to probe (0 for all)")
	probeCmd.Flags().StringVar(&probeSource, "source", "", "probe only channels from the named source")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.AppLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	p := prober.New(prober.Config{
		Timeout:          time.Duration(cfg.Probe.TimeoutSeconds) * time.Second,
		Region:           cfg.Probe.Region,
		MaxManifestBytes: int64(cfg.Probe.MaxManifestKB) * 1024,
		Logger:           log,
	})
	batch := prober.NewBatch(p, cfg.Probe.Concurrency, cfg.Probe.RequestsPerSecond)

	cycle := pipeline.NewTestCycle(st, batch, log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := cycle.Run(ctx, probeSource, probeLimit)
	if err != nil {
		return err
	}

	fmt.Printf("probed %d channels: %d succeeded, %d failed\n",
		report.Probed, report.Succeeded, report.Failed)

	return nil
}
