package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/unisima/ocr-extractor/internal/api"
	"github.com/unisima/ocr-extractor/internal/handlers"
	"github.com/unisima/ocr-extractor/internal/ui"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	var gifPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: `Starts the OCR Extractor web interface on the specified port.

Every browser session keeps its own selected image, accumulated text and theme. Recognition
and saving are forwarded to the backend configured with --api-base or OCR_API_BASE.`,
		Example: `  # Start server on default port 8888
  ocr-extractor serve

  # Use a local backend
  ocr-extractor serve --api-base http://localhost:8000 --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			renderer, err := ui.NewRenderer()
			if err != nil {
				return err
			}
			handler := handlers.New(api.NewClient(cfg.APIBase, cfg.HTTPTimeout), renderer).WithGif(gifPath)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("OCR Extractor interface available", "addr", addr, "url", "http://localhost"+addr, "backend", cfg.APIBase)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			sweep := time.NewTicker(sweepInterval(cfg.SessionIdle))
			defer sweep.Stop()

			// Wait for context cancellation (Ctrl+C) or server error
			for {
				select {
				case <-sweep.C:
					handler.SweepSessions(cfg.SessionIdle)
				case <-cmd.Context().Done():
					slog.Info("Shutting down server...")
					// Give server 5 seconds to shut down gracefully
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := server.Shutdown(shutdownCtx); err != nil {
						slog.Error("Server shutdown failed", "err", err)
						return err
					}
					slog.Info("Server stopped")
					return nil
				case err := <-serverErr:
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&gifPath, "gif", "", "URL of a decorative image shown under the preview")

	return cmd
}

func sweepInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Minute {
		return time.Minute
	}
	return interval
}
