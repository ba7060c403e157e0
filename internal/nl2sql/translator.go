package nl2sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pizzabot/pizzabot/internal/llm"
	"github.com/pizzabot/pizzabot/internal/prompts"
)

var (
	ErrTranslationFailed = errors.New("nl2sql: translation failed")
	ErrNoQueryFound      = errors.New("nl2sql: no query found in model output")
)

type Request struct {
	Question string `json:"question"`
	Schema   string `json:"schema"`
}

type Result struct {
	Query   string `json:"query"`
	IsValid bool   `json:"is_valid"`
	Raw     string `json:"raw,omitempty"`
	Model   string `json:"model,omitempty"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

type LLMTranslator struct {
	generator llm.Generator
	prompts   *prompts.Set
	model     string
	logger    *slog.Logger
}

type Options struct {
	Prompts *prompts.Set
	Model   string
	Logger  *slog.Logger
}

func NewLLMTranslator(generator llm.Generator, opts Options) *LLMTranslator {
	set := opts.Prompts
	if set == nil {
		set = prompts.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LLMTranslator{generator: generator, prompts: set, model: opts.Model, logger: logger}
}

func (t *LLMTranslator) Translate(ctx context.Context, req Request) (Result, error) {
	system, user, err := t.prompts.Translator(prompts.TranslateData{
		Schema:   req.Schema,
		Question: strings.TrimSpace(req.Question),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	raw, err := t.generator.Generate(ctx, llm.Prompt{Purpose: "translate", System: system, User: user})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	query, ok := ExtractQuery(raw)
	if !ok {
		t.logger.DebugContext(ctx, "model output has no select line", slog.String("raw", raw))
		return Result{Raw: raw, Model: t.model}, ErrNoQueryFound
	}
	t.logger.DebugContext(ctx, "question translated", slog.String("sql", query))
	return Result{Query: query, IsValid: true, Raw: raw, Model: t.model}, nil
}

// ExtractQuery returns the first line of text that starts with SELECT once
// trimmed, ignoring case and surrounding inline backticks.
func ExtractQuery(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		candidate := strings.TrimSpace(line)
		candidate = strings.TrimSpace(strings.Trim(candidate, "`"))
		if strings.HasPrefix(strings.ToUpper(candidate), "SELECT") {
			return candidate, true
		}
	}
	return "", false
}
