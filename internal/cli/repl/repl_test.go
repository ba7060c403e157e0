package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pizzabot/pizzabot/internal/session"
)

type fakeAsker struct {
	questions []string
	clears    int
}

func (f *fakeAsker) Ask(_ context.Context, question string) string {
	f.questions = append(f.questions, question)
	return "resposta para " + question
}

func (f *fakeAsker) Clear() {
	f.clears++
}

func TestRunAnswersUntilExitToken(t *testing.T) {
	asker := &fakeAsker{}
	var out bytes.Buffer
	in := strings.NewReader("Qual a pizza mais cara?\n\nlimpar\n  SAIR  \nnunca perguntada\n")

	if err := Run(context.Background(), asker, Options{In: in, Out: &out}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(asker.questions) != 1 || asker.questions[0] != "Qual a pizza mais cara?" {
		t.Fatalf("questions = %#v", asker.questions)
	}
	if asker.clears != 1 {
		t.Fatalf("clears = %d, want 1", asker.clears)
	}
	text := out.String()
	for _, want := range []string{Prompt, "resposta para Qual a pizza mais cara?", session.Farewell} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunExitTokensNeverReachAsker(t *testing.T) {
	for _, token := range []string{"sair", "exit", "quit", "Exit"} {
		asker := &fakeAsker{}
		if err := Run(context.Background(), asker, Options{In: strings.NewReader(token + "\n")}); err != nil {
			t.Fatalf("Run(%q) error = %v", token, err)
		}
		if len(asker.questions) != 0 {
			t.Fatalf("token %q reached asker: %#v", token, asker.questions)
		}
	}
}

func TestRunStopsOnEOF(t *testing.T) {
	asker := &fakeAsker{}
	if err := Run(context.Background(), asker, Options{In: strings.NewReader("oi")}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(asker.questions) != 1 {
		t.Fatalf("questions = %#v", asker.questions)
	}
}

func TestRunStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	asker := &fakeAsker{}
	if err := Run(ctx, asker, Options{In: strings.NewReader("oi\n")}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(asker.questions) != 0 {
		t.Fatalf("questions = %#v", asker.questions)
	}
}
