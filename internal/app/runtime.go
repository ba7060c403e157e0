package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pizzabot/pizzabot/internal/catalog/sqlstore"
	"github.com/pizzabot/pizzabot/internal/compose"
	"github.com/pizzabot/pizzabot/internal/config"
	"github.com/pizzabot/pizzabot/internal/llm"
	"github.com/pizzabot/pizzabot/internal/migrations"
	"github.com/pizzabot/pizzabot/internal/nl2sql"
	"github.com/pizzabot/pizzabot/internal/observability"
	"github.com/pizzabot/pizzabot/internal/prompts"
	"github.com/pizzabot/pizzabot/internal/seed"
	"github.com/pizzabot/pizzabot/internal/session"
	"github.com/pizzabot/pizzabot/internal/storage"
	s3store "github.com/pizzabot/pizzabot/internal/storage/s3"
)

var ErrMissingCredential = errors.New("language model api key is not configured (set PIZZABOT_AI_API_KEY or GROQ_API_KEY)")

type Options struct {
	// Console receives log output next to the optional log file.
	Console io.Writer
	// RequireAI fails Build when no language model credential is configured.
	RequireAI bool
	// SeedOnStart reloads the catalog when cfg.Seed.OnStart is also set.
	SeedOnStart bool
	// Generator replaces the OpenAI-compatible client.
	Generator llm.Generator
}

// Runtime is the process-wide set of collaborators shared by every front-end.
type Runtime struct {
	Config     config.Config
	Logger     *slog.Logger
	DB         *sql.DB
	Store      *sqlstore.Store
	Translator nl2sql.Translator
	Composer   *compose.Composer
	Sessions   *session.Registry

	objects *s3store.Store
	closers []func() error
}

func Build(ctx context.Context, cfg config.Config, opts Options) (rt *Runtime, err error) {
	console := opts.Console
	if console == nil {
		console = io.Discard
	}
	output, closeLog, err := observability.OpenLogOutput(cfg, console)
	if err != nil {
		return nil, err
	}
	rt = &Runtime{
		Config:  cfg,
		Logger:  observability.NewLogger(cfg, output),
		closers: []func() error{closeLog},
	}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	rt.DB, err = sqlstore.Open(ctx, sqlstore.DBConfig{
		Driver:          cfg.Catalog.Driver,
		DSN:             cfg.Catalog.DSN,
		MaxOpenConns:    cfg.Catalog.MaxOpenConns,
		MaxIdleConns:    cfg.Catalog.MaxIdleConns,
		ConnMaxIdleTime: cfg.Catalog.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Catalog.ConnMaxLifetime,
		BusyTimeout:     cfg.Catalog.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	rt.closers = append(rt.closers, rt.DB.Close)

	applied, err := migrations.NewRunner().Up(ctx, rt.DB, 0)
	if err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	if applied > 0 {
		rt.Logger.Info("catalog schema migrated", slog.Int("applied", applied))
	}

	rt.Store = sqlstore.New(rt.DB, sqlstore.Options{
		Driver:      cfg.Catalog.Driver,
		LockTimeout: cfg.Catalog.LockTimeout,
		Logger:      rt.Logger,
	})

	generator, err := rt.buildGenerator(opts)
	if err != nil {
		return nil, err
	}
	promptSet, err := prompts.Load(cfg.AI.PromptsFile)
	if err != nil {
		return nil, err
	}
	rt.Translator = nl2sql.NewLLMTranslator(generator, nl2sql.Options{
		Prompts: promptSet,
		Model:   cfg.AI.Model,
		Logger:  rt.Logger,
	})
	rt.Composer = compose.New(generator, promptSet, rt.Logger)
	rt.Sessions = session.NewRegistry(rt.NewSession, cfg.Chat.SessionTTL, cfg.Chat.MaxSessions)

	if opts.SeedOnStart && cfg.Seed.OnStart {
		if _, err := rt.Seed(ctx); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *Runtime) buildGenerator(opts Options) (llm.Generator, error) {
	if opts.Generator != nil {
		return opts.Generator, nil
	}
	if strings.TrimSpace(rt.Config.AI.APIKey) == "" {
		if opts.RequireAI {
			return nil, ErrMissingCredential
		}
		return llm.GeneratorFunc(func(context.Context, llm.Prompt) (string, error) {
			return "", ErrMissingCredential
		}), nil
	}
	return llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:           rt.Config.AI.BaseURL,
		APIKey:            rt.Config.AI.APIKey,
		Model:             rt.Config.AI.Model,
		Temperature:       rt.Config.AI.Temperature,
		Timeout:           rt.Config.AI.Timeout,
		RequestsPerMinute: rt.Config.AI.RequestsPerMinute,
		Burst:             rt.Config.AI.Burst,
		Logger:            rt.Logger,
	})
}

// NewSession returns a fresh conversation wired to the shared collaborators.
func (rt *Runtime) NewSession() *session.Orchestrator {
	return session.New(session.Deps{
		Translator: rt.Translator,
		Store:      rt.Store,
		Composer:   rt.Composer,
		Logger:     rt.Logger,
	})
}

// Seed reloads the catalog from the configured seed source.
func (rt *Runtime) Seed(ctx context.Context) (int, error) {
	var objects storage.ObjectStore
	if rt.Config.Seed.Source == config.SeedSourceObjectStore {
		store, err := rt.ObjectStore(ctx)
		if err != nil {
			return 0, err
		}
		objects = store
	}
	source, err := seed.NewSource(rt.Config.Seed, objects)
	if err != nil {
		return 0, err
	}
	return seed.Apply(ctx, rt.Store, source, rt.Logger)
}

// ObjectStore connects to the seed bucket on first use.
func (rt *Runtime) ObjectStore(ctx context.Context) (*s3store.Store, error) {
	if rt.objects != nil {
		return rt.objects, nil
	}
	objects, err := s3store.New(ctx, s3store.Config{
		Endpoint:         rt.Config.ObjectStore.Endpoint,
		Region:           rt.Config.ObjectStore.Region,
		Bucket:           rt.Config.ObjectStore.Bucket,
		AccessKeyID:      rt.Config.ObjectStore.AccessKeyID,
		SecretAccessKey:  rt.Config.ObjectStore.SecretAccessKey,
		UseSSL:           rt.Config.ObjectStore.UseSSL,
		Prefix:           rt.Config.ObjectStore.Prefix,
		AutoCreateBucket: rt.Config.ObjectStore.AutoCreateBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize object store: %w", err)
	}
	rt.objects = objects
	return objects, nil
}

// ReadinessChecks lists the dependencies the HTTP readiness probe verifies.
func (rt *Runtime) ReadinessChecks() []func(context.Context) error {
	checks := []func(context.Context) error{rt.Store.HealthCheck}
	if rt.objects != nil {
		checks = append(checks, rt.objects.HealthCheck)
		if rt.Config.Seed.Source == config.SeedSourceObjectStore {
			checks = append(checks, seed.ObjectCheck(rt.objects, rt.Config.Seed.ObjectKey))
		}
	}
	return checks
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
