// ABOUTME: Long-running subcommands: tui, serve, backend and mcp
// ABOUTME: HTTP servers shut down gracefully on SIGINT or SIGTERM
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/db"
	"github.com/harperreed/crmdesk/handlers"
	"github.com/harperreed/crmdesk/tui"
	"github.com/harperreed/crmdesk/web"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// listen serves handler on addr until ctx is cancelled.
func listen(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errc
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newTUICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit records in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			relay := tui.NewRelay()
			ws, err := rt.openWith(cmd, relay)
			if err != nil {
				return err
			}
			defer ws.Close()
			return tui.Run(cmd.Context(), ws, relay)
		},
	}
}

func newServeCmd(rt *runtime) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, CSV exports and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := rt.openWith(cmd, nil)
			if err != nil {
				return err
			}
			defer ws.Close()
			if addr == "" {
				addr = rt.cfg.ListenAddr
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			srv := web.NewServer(ws, rt.metrics, rt.logger)
			return listen(ctx, addr, srv.Handler(), rt.logger.Named("web"))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newBackendCmd(rt *runtime) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Serve the record protocol from the local SQLite database",
		Long: `backend exposes the local SQLite store over the same HTTP record protocol the
hosted service speaks, so another crmdesk can point its base_url at it. When a
project id and public key are configured, requests must carry them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.load(cmd); err != nil {
				return err
			}
			database, err := db.OpenDatabase(rt.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database %s: %w", rt.cfg.DBPath, err)
			}
			defer database.Close()

			logger := rt.logger.Named("backend")
			store := db.NewRecordStore(database, logger)
			handler := apper.NewHandler(store, apper.HandlerConfig{
				ProjectID: rt.cfg.ProjectID,
				PublicKey: rt.cfg.PublicKey,
			}, logger)

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return listen(ctx, addr, handler, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8090", "listen address")
	return cmd
}

func newMCPCmd(rt *runtime, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := rt.openWith(cmd, nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			rt.logger.Info("starting MCP server")
			server := handlers.NewServer(ws, version)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
