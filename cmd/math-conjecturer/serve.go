// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZJashi/math-conjecturer/internal/api"
	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/events"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/internal/runstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve starts the HTTP API. POST /api/runs starts a process or propose
run asynchronously, GET /api/runs lists recorded runs, and
GET /api/runs/{id}/events streams run progress as server-sent events.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Serve.Addr = v
	}

	logger := newLogger()
	runs, err := runstore.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer runs.Close()

	bus := events.NewBus(256)
	defer bus.Close()

	server := &api.Server{
		Cfg:  cfg.Serve,
		Runs: runs,
		Bus:  bus,
		Pipeline: &api.Runner{
			Client:    llm.NewOpenRouter(cfg.AI, cfg.HTTP),
			HTTP:      &http.Client{Timeout: cfg.HTTP.Timeout},
			Artifacts: &artifacts.Store{Dir: cfg.Papers.Dir, Logger: logger},
			Cfg:       cfg,
			Bus:       bus,
			Logger:    logger,
		},
		Logger: logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx)
}
