package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/database"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "streampulse",
	Short: "StreamPulse ingests IPTV playlists and scores channel quality",
	Long: `StreamPulse pulls M3U playlists from tracked sources, reconciles them into
a channel catalog, probes each stream for availability and quality, and
serves the scored catalog over an HTTP API.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of StreamPulse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("StreamPulse v0.1.0")
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	logger.InitializeLoggers(cfg.GetAppLogLevel(), cfg.GetDatabaseLogLevel())
}

// openStore connects to the database and returns the catalog store
func openStore() (*store.Store, error) {
	if err := database.Initialize(); err != nil {
		return nil, err
	}
	return store.New(database.Get()), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
