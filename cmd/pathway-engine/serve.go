package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/internal/observability"
	"github.com/pdiddy/pathway-engine/internal/pipeline"
	"github.com/pdiddy/pathway-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pathway pipeline over HTTP",
	Long: `Serve starts the HTTP API used by the web front end:

  POST /api/generate-pathway         front-end payload, server credentials
  POST /api/generate-pathway-direct  raw profile keys, payload credentials win
  GET  /health, /api/health          liveness`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().Bool("trace-stdout", false, "export OpenTelemetry spans to stdout")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.FromContext(ctx)
	ctx = logger.ContextWithLogger(ctx, log)

	traceStdout, _ := cmd.Flags().GetBool("trace-stdout")
	shutdown, err := observability.Setup(ctx, observability.TracingConfig{
		ServiceName: "pathway-engine",
		Version:     version,
		Environment: cfg.Server.Environment,
		Stdout:      traceStdout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("trace shutdown", "err", err)
		}
	}()

	if !defaultCredentials.Complete() {
		log.Warn("server credentials incomplete; /api/generate-pathway will reject requests until keys are configured")
	}

	router := server.NewRouter(server.Options{
		Config:  cfg.Server,
		Runner:  pipeline.New(cfg, defaultCredentials),
		Version: version,
		Logger:  log,
	})
	return server.Serve(ctx, cfg.Server.Addr, router)
}
