package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pizzabot/pizzabot/internal/catalog"
	"github.com/pizzabot/pizzabot/internal/compose"
	"github.com/pizzabot/pizzabot/internal/nl2sql"
	"github.com/pizzabot/pizzabot/internal/observability"
)

const (
	Greeting = "Olá! Sou o assistente da Pizzaria Delícia. Como posso ajudar?"
	// Farewell is printed by terminal front-ends when an exit token ends the chat.
	Farewell = "👋 Obrigado por usar o Sistema de Consulta de Pizzas!"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Asker is what front-ends drive.
type Asker interface {
	Ask(ctx context.Context, question string) string
	Clear()
}

type Composer interface {
	Compose(ctx context.Context, in compose.Input) string
}

type Deps struct {
	Translator nl2sql.Translator
	Store      catalog.Reader
	Composer   Composer
	Logger     *slog.Logger
}

// Orchestrator holds one conversation. Questions are answered one at a time
// and each one gets exactly one assistant turn.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger

	mu    sync.Mutex
	turns []Turn
}

func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger,
		turns:  []Turn{{Role: RoleAssistant, Text: Greeting}},
	}
}

func (o *Orchestrator) Ask(ctx context.Context, question string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	startedAt := time.Now()
	o.turns = append(o.turns, Turn{Role: RoleUser, Text: question})
	answer, outcome := o.answer(ctx, question)
	o.turns = append(o.turns, Turn{Role: RoleAssistant, Text: answer})

	observability.ObserveTurn(outcome, time.Since(startedAt))
	o.logger.InfoContext(ctx, "question answered",
		slog.String("outcome", outcome),
		slog.String("session_id", observability.SessionIDFromContext(ctx)),
		slog.Int64("duration_ms", time.Since(startedAt).Milliseconds()),
	)
	return answer
}

func (o *Orchestrator) answer(ctx context.Context, question string) (string, string) {
	translation, err := o.deps.Translator.Translate(ctx, nl2sql.Request{
		Question: question,
		Schema:   o.deps.Store.DescribeSchema(),
	})
	switch {
	case errors.Is(err, nl2sql.ErrNoQueryFound):
		return compose.CouldNotTranslate(), observability.TurnOutcomeNoQuery
	case err != nil:
		o.logger.WarnContext(ctx, "translate question failed", slog.Any("error", err))
		return compose.Apology(err), observability.TurnOutcomeTranslationFailed
	case !translation.IsValid || strings.TrimSpace(translation.Query) == "":
		return compose.CouldNotTranslate(), observability.TurnOutcomeNoQuery
	}

	result, err := o.deps.Store.Execute(ctx, translation.Query)
	if errors.Is(err, catalog.ErrStoreUnavailable) {
		o.logger.ErrorContext(ctx, "catalog unavailable", slog.Any("error", err))
		return compose.Apology(err), observability.TurnOutcomeStoreUnavailable
	}

	outcome := observability.TurnOutcomeAnswered
	if err != nil {
		o.logger.WarnContext(ctx, "catalog query failed", slog.String("sql", translation.Query), slog.Any("error", err))
		outcome = observability.TurnOutcomeQueryError
	}
	answer := o.deps.Composer.Compose(ctx, compose.Input{
		Question: question,
		Query:    translation.Query,
		Result:   result,
		QueryErr: err,
	})
	return answer, outcome
}

func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.turns = []Turn{{Role: RoleAssistant, Text: Greeting}}
}

func (o *Orchestrator) Turns() []Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Turn, len(o.turns))
	copy(out, o.turns)
	return out
}

func IsExitToken(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "sair", "exit", "quit":
		return true
	default:
		return false
	}
}
