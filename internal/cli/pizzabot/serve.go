package pizzabot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pizzabot/pizzabot/internal/api"
	"github.com/pizzabot/pizzabot/internal/api/uistatic"
	"github.com/pizzabot/pizzabot/internal/app"
	"github.com/pizzabot/pizzabot/internal/auth"
)

func newServeCommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the web chat and the embeddable widget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env)
		},
	}
}

func runServe(parent context.Context, env Env) error {
	cfg, err := loadConfig(env, "pizzabot-api")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, env, cfg, app.Options{Console: env.Out, RequireAI: true, SeedOnStart: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	logger := rt.Logger

	checks := make([]api.ReadinessCheck, 0, 3)
	for _, check := range rt.ReadinessChecks() {
		checks = append(checks, check)
	}
	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(checks...),
		DependencyTimeout: time.Second,
		Sessions:          rt.Sessions,
		Menu:              rt.Store,
		Seeder:            rt,
		UI:                uistatic.Handler(),
	}
	validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.AdminKeys)
	if err != nil {
		return fmt.Errorf("parse admin keys: %w", err)
	}
	if validator.Len() > 0 {
		deps.AdminAuth = auth.Middleware(logger, validator)
	}
	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go rt.Sessions.Run(ctx, time.Minute)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
		close(serveErr)
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-serveErr; err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
