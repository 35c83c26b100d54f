package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/generator"
	"github.com/Rajangupta9/taskflow/handlers"
	"github.com/Rajangupta9/taskflow/repository"
	"github.com/Rajangupta9/taskflow/sessions"
	"github.com/Rajangupta9/taskflow/utils"
)

func newLogger(w io.Writer, cfg config.LogConfig, forceJSON bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if forceJSON || strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TaskFlow API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides server.port)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := newLogger(os.Stderr, cfg.Log, true)
	slog.SetDefault(logger)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) must be set to run the server")
	}

	repo, err := repository.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer repo.Close(context.Background())

	revoked, err := sessions.New(cfg.Sessions)
	if err != nil {
		return err
	}
	defer revoked.Close()

	gen, err := generator.New(ctx, cfg.Generator)
	if err != nil {
		logger.Warn("task generation disabled", "error", err)
		gen = generator.Disabled{}
	}

	h := &handlers.Handler{
		Repo:      repo,
		JWT:       utils.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Revoked:   revoked,
		Generator: gen,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Routes(cfg.Server, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver, "generator", cfg.Generator.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
