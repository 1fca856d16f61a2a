package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/server"
	"github.com/lazypower/lifelog/internal/store"
)

const sessionPruneInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	am := auth.NewManager(db, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	srv := server.New(db, am, server.Options{
		Version:    VersionString(),
		CookieName: cfg.Auth.CookieName,
		Journal:    cfg.Journal,
	})
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneSessions(ctx, db)

	errc := make(chan error, 1)
	go func() {
		logger.Info("lifelog serving", "addr", addr)
		logger.Info("database", "path", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// pruneSessions drops expired login sessions once an hour until ctx ends.
func pruneSessions(ctx context.Context, db *store.DB) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()
	for {
		n, err := db.PruneSessions(time.Now())
		if err != nil {
			logger.Warn("prune sessions", "err", err)
		} else if n > 0 {
			logger.Debug("pruned sessions", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
