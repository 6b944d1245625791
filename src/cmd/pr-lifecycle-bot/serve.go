package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gh-nvat/pr-lifecycle-bot/src/internal/runner"
	"github.com/gh-nvat/pr-lifecycle-bot/src/internal/server"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/trace"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook receiver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.ValidateServe(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			shutdownTracer, err := trace.InitTracer(SERVICE_NAME, cfg.Trace.Enabled, cfg.Trace.OutputDir)
			if err != nil {
				return fmt.Errorf("failed to init tracer: %w", err)
			}
			defer shutdownTracer()

			client, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			dispatcher := runner.NewDispatcher(newHandlerFactory(cfg, client), cfg.Bot.InstallationConcurrency)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(dispatcher, server.Options{
				Addr:            cfg.Server.Addr,
				WebhookSecret:   cfg.GitHub.WebhookSecret,
				RequestTimeout:  cfg.Server.RequestTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides SERVER_ADDR)")
	return cmd
}
