// Package pizzabot holds the cobra commands of the pizzabot binary.
package pizzabot

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pizzabot/pizzabot/internal/app"
	"github.com/pizzabot/pizzabot/internal/config"
	"github.com/pizzabot/pizzabot/internal/llm"
)

// Env is everything a command touches outside the process.
type Env struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Lookup config.LookupFunc
	// Generator replaces the language model client.
	Generator llm.Generator
}

func DefaultEnv() Env {
	return Env{
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Lookup: os.LookupEnv,
	}
}

func NewRootCommand(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "pizzabot",
		Short: "Chat about the Pizzaria Delícia menu in plain Portuguese",
		Long: `pizzabot answers questions about the Pizzaria Delícia de Vitória-ES menu.
Questions are translated to SQL by a language model, run against the
menu catalog and answered in Portuguese.

Configuration comes from PIZZABOT_* environment variables.`,
		SilenceUsage: true,
	}
	root.SetIn(env.In)
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	root.AddCommand(
		newServeCommand(env),
		newChatCommand(env),
		newTUICommand(env),
		newAskCommand(env),
		newSeedCommand(env),
		newMigrateCommand(env),
	)
	return root
}

// Execute runs the root command against the real process environment.
func Execute(ctx context.Context) error {
	return NewRootCommand(DefaultEnv()).ExecuteContext(ctx)
}

func loadConfig(env Env, service string) (config.Config, error) {
	return config.Load(service, env.Lookup)
}

func buildRuntime(ctx context.Context, env Env, cfg config.Config, opts app.Options) (*app.Runtime, error) {
	if opts.Generator == nil {
		opts.Generator = env.Generator
	}
	return app.Build(ctx, cfg, opts)
}
