package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/finq/internal/config"
	"github.com/example/finq/internal/wire"
)

// DevServerCmd returns the devserver command
func DevServerCmd() *cobra.Command {
	var addr, dbPath, apiKey string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local backend for development",
		Long: `Run a local REST backend backed by SQLite that speaks the same
row-level protocol as the hosted store, for offline development and testing.

Examples:
  finq devserver
  finq devserver --addr 127.0.0.1:8080 --db /tmp/backend.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(dbPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("api-key") {
				apiKey = wire.Config().APIKey
			}

			server, closeDB, err := wire.DevBackend(path, apiKey)
			if err != nil {
				return err
			}
			defer closeDB()

			return serve(cmd.Context(), addr, server.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:54321", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "~/.finq/devbackend.db", "backend database path")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "required apikey header (default: api_key from config)")

	return cmd
}

func serve(parent context.Context, addr string, handler http.Handler) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Printf("✓ Dev backend listening on http://%s\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev backend stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dev backend: %w", err)
	}
	return nil
}
