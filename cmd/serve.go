package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcastelli/streampulse/internal/api"
	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/database"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the channel catalog over HTTP",
	Long: `Serve starts the HTTP API for the scored channel catalog, including
health, Prometheus metrics, and the /api/v1 catalog endpoints.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.AppLogger()

	st, err := openStore()
	if err != nil {
		return err
	}

	handler := shutdown.New(30 * time.Second)
	handler.Register(func(ctx context.Context) error {
		return database.Close()
	})

	server := api.NewServer(st, log)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: server.Router(),
	}
	handler.Register(httpServer.Shutdown)

	go func() {
		log.WithFields(map[string]interface{}{
			"port": cfg.API.Port,
		}).Info("API server starting")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("API server failed", err)
			handler.TriggerShutdown()
		}
	}()

	return handler.Wait()
}
