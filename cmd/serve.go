package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"uptube/internal/app"
	"uptube/pkg/config"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload form and relay uploads to YouTube",
	Long: `Start the HTTP server. GET /upload renders the form and POST /upload
forwards the submitted video to YouTube.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	result, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := result.Close(); err != nil {
			slog.Warn("Failed to release resources", "error", err)
		}
	}()

	logTokenState(ctx, result)

	slog.Info("Starting server",
		"addr", cfg.Addr(),
		"upload_dir", result.Storage.UploadDir(),
		"interactive_auth", cfg.InteractiveAuth(),
	)

	return result.Server.Run(ctx)
}

func logTokenState(ctx context.Context, result *app.BuildResult) {
	state, err := result.Auth.State(ctx)
	if err != nil {
		slog.Warn("Cached YouTube token is unreadable", "error", err)
		return
	}
	slog.Info("YouTube token", "state", state.String())
}
