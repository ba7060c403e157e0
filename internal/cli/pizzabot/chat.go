package pizzabot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pizzabot/pizzabot/internal/app"
	"github.com/pizzabot/pizzabot/internal/cli/repl"
	"github.com/pizzabot/pizzabot/internal/tui"
)

func newChatCommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal, one question per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), env, "pizzabot-chat", env.Err, func(ctx context.Context, rt *app.Runtime) error {
				return repl.Run(ctx, rt.NewSession(), repl.Options{In: env.In, Out: env.Out})
			})
		},
	}
}

func newTUICommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Full-screen terminal chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), env, "pizzabot-tui", io.Discard, func(ctx context.Context, rt *app.Runtime) error {
				return tui.Run(ctx, rt.NewSession(), tui.Options{})
			})
		},
	}
}

func newAskCommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is required")
			}
			return withSession(cmd.Context(), env, "pizzabot-ask", env.Err, func(ctx context.Context, rt *app.Runtime) error {
				answer := rt.NewSession().Ask(ctx, question)
				_, err := fmt.Fprintln(env.Out, answer)
				return err
			})
		},
	}
}

// withSession builds a seeded runtime that requires a language model
// credential and closes it once fn returns.
func withSession(ctx context.Context, env Env, service string, console io.Writer, fn func(context.Context, *app.Runtime) error) error {
	cfg, err := loadConfig(env, service)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := buildRuntime(ctx, env, cfg, app.Options{Console: console, RequireAI: true, SeedOnStart: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	return fn(ctx, rt)
}
