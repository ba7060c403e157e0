// Package repl is the line-oriented terminal chat.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pizzabot/pizzabot/internal/session"
)

const (
	Prompt       = "Digite sua pergunta sobre pizzas 🍕: "
	Welcome      = "🤖 Bem-vindo ao Sistema de Consulta de Pizzas 🤖!"
	ExitHint     = "Digite 'sair' para encerrar o programa."
	ClearCommand = "limpar"
)

var (
	styleWelcome = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleHint    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	stylePrompt  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleLabel   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
)

type Options struct {
	In  io.Reader
	Out io.Writer
}

// Run reads questions line by line until an exit token, EOF or ctx is done.
// Exit tokens and the clear command never reach the asker.
func Run(ctx context.Context, asker session.Asker, opts Options) error {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	scanner := bufio.NewScanner(opts.In)

	_, _ = fmt.Fprintln(out, styleWelcome.Render(Welcome))
	_, _ = fmt.Fprintln(out, styleHint.Render(ExitHint))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		_, _ = fmt.Fprint(out, "\n"+stylePrompt.Render(Prompt))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read question: %w", err)
			}
			_, _ = fmt.Fprintln(out)
			return nil
		}

		question := strings.TrimSpace(scanner.Text())
		switch {
		case question == "":
			continue
		case session.IsExitToken(question):
			_, _ = fmt.Fprintln(out, styleWelcome.Render(session.Farewell))
			return nil
		case strings.EqualFold(question, ClearCommand):
			asker.Clear()
			_, _ = fmt.Fprintln(out, styleHint.Render(session.Greeting))
			continue
		}

		answer := asker.Ask(ctx, question)
		_, _ = fmt.Fprintf(out, "\n%s %s\n", styleLabel.Render("Resposta:"), answer)
	}
}
