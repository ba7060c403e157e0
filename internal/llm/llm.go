package llm

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("llm: empty completion")

// Prompt is a single system+user exchange. Purpose labels metrics and logs,
// for example "translate" or "compose".
type Prompt struct {
	Purpose string
	System  string
	User    string
}

type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}
