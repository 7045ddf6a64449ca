package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/database"
	"github.com/lcastelli/streampulse/internal/fetcher"
	"github.com/lcastelli/streampulse/internal/filter"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/pipeline"
)

var (
	ingestSource string
	ingestFile   string
	ingestDryRun bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch tracked playlist sources and reconcile the channel catalog",
	Long: `Ingest downloads each enabled playlist source, parses and filters its
channels, and reconciles them against the stored catalog. Channels that
disappeared from a source are deactivated, never deleted. Use --dry-run to
see the reconciliation without writing anything.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "ingest only the named source")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "ingest a local playlist file instead of fetching sources")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "compute changes without writing them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.AppLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	filters := filter.NewManager()
	if err := filters.LoadFromConfig(cfg.Filter); err != nil {
		return err
	}

	f := fetcher.New(fetcher.Config{
		TimeoutSeconds: cfg.Ingest.TimeoutSeconds,
		MaxFileSizeMB:  cfg.Ingest.MaxFileSizeMB,
		RetryAttempts:  cfg.Ingest.RetryAttempts,
		Logger:         log,
	})

	ing := pipeline.NewIngestor(st, f, filters, log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if ingestFile != "" {
		return ingestLocalFile(ctx, ing)
	}

	sources := cfg.EnabledSources()
	if ingestSource != "" {
		var matched []config.SourceConfig
		for _, src := range cfg.Ingest.Sources {
			if src.Name == ingestSource {
				matched = append(matched, src)
			}
		}
		if len(matched) == 0 {
			return fmt.Errorf("unknown source: %s", ingestSource)
		}
		sources = matched
	}

	if len(sources) == 0 {
		return fmt.Errorf("no enabled sources configured")
	}

	var failed int
	for _, src := range sources {
		report, err := ing.IngestSource(ctx, src, pipeline.IngestOptions{DryRun: ingestDryRun})
		if err != nil {
			log.WithFields(map[string]interface{}{
				"source": src.Name,
			}).Error("source ingestion failed", err)
			failed++
			continue
		}

		if report.NotModified {
			fmt.Printf("%s: not modified\n", src.Name)
			continue
		}

		prefix := ""
		if report.DryRun {
			prefix = "[dry-run] "
		}
		fmt.Printf("%s%s: %d parsed, %d filtered, %d added, %d updated, %d removed\n",
			prefix, src.Name, report.Parsed, report.Filtered,
			report.Added, report.Updated, report.Removed)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(sources))
	}

	return nil
}

// ingestLocalFile runs the pipeline over a playlist on disk. The source name
// defaults to the file name without its extension.
func ingestLocalFile(ctx context.Context, ing *pipeline.Ingestor) error {
	content, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("failed to read playlist file: %w", err)
	}

	name := ingestSource
	if name == "" {
		base := filepath.Base(ingestFile)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	report, err := ing.IngestContent(ctx, name, ingestFile, string(content), pipeline.IngestOptions{DryRun: ingestDryRun})
	if err != nil {
		return err
	}

	prefix := ""
	if report.DryRun {
		prefix = "[dry-run] "
	}
	fmt.Printf("%s%s: %d parsed, %d filtered, %d added, %d updated, %d removed\n",
		prefix, name, report.Parsed, report.Filtered,
		report.Added, report.Updated, report.Removed)

	return nil
}
