package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/layout"
	"github.com/ironsheep/collage-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, analyzer string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the collage HTTP API. Images are uploaded as multipart forms,
variations are generated and previewed as JPEG, and results are downloaded
as zip archives.`,
		Example: `  # Start server on the configured address (default :8080)
  collage-mcp serve

  # Start server on a custom address
  collage-mcp serve --addr 127.0.0.1:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			if analyzer == "" {
				analyzer = a.cfg.Analysis.Analyzer
			}
			sess, err := newSession(a.cfg, analyzer, nil, logger)
			if err != nil {
				return err
			}
			reg, err := layout.Builtin()
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(sess, reg, nil, a.cfg, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				logger.Info("Collage API available", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown failed", "err", err)
					return err
				}
				logger.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "address to listen on (default from config)")
	cmd.Flags().StringVar(&analyzer, "analyze", "", "fixed image analyzer: gemini, saliency or none (default from config)")

	return cmd
}
