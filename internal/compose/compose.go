package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pizzabot/pizzabot/internal/catalog"
	"github.com/pizzabot/pizzabot/internal/llm"
	"github.com/pizzabot/pizzabot/internal/prompts"
)

var ErrCompositionFailed = errors.New("compose: composition failed")

const (
	couldNotTranslate = "Não consegui gerar uma consulta SQL válida para essa pergunta."
	apologyPrefix     = "Desculpe, não consegui processar sua pergunta. Erro: "
	queryErrorPrefix  = "Erro na consulta SQL: "
)

type Input struct {
	Question string
	Query    string
	Result   catalog.Result
	QueryErr error
}

type Composer struct {
	generator llm.Generator
	prompts   *prompts.Set
	logger    *slog.Logger
}

func New(generator llm.Generator, set *prompts.Set, logger *slog.Logger) *Composer {
	if set == nil {
		set = prompts.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Composer{generator: generator, prompts: set, logger: logger}
}

// Compose never returns an empty string. Failures become an apology carrying
// the error text.
func (c *Composer) Compose(ctx context.Context, in Input) string {
	resultText := RenderRows(in.Result)
	if in.QueryErr != nil {
		resultText = queryErrorPrefix + queryErrorMessage(in.QueryErr)
	}

	system, user, err := c.prompts.Composer(prompts.ComposeData{
		Question: in.Question,
		Query:    in.Query,
		Result:   resultText,
	})
	if err != nil {
		return c.fail(ctx, err)
	}

	answer, err := c.generator.Generate(ctx, llm.Prompt{Purpose: "compose", System: system, User: user})
	if err != nil {
		return c.fail(ctx, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return c.fail(ctx, llm.ErrEmptyCompletion)
	}
	return answer
}

func (c *Composer) fail(ctx context.Context, err error) string {
	c.logger.ErrorContext(ctx, "compose answer failed", slog.Any("error", fmt.Errorf("%w: %v", ErrCompositionFailed, err)))
	return Apology(err)
}

// Apology is the user-facing text for a turn that could not be completed.
func Apology(err error) string {
	return apologyPrefix + err.Error()
}

func CouldNotTranslate() string {
	return couldNotTranslate
}

func queryErrorMessage(err error) string {
	var queryErr *catalog.QueryError
	if errors.As(err, &queryErr) && queryErr.Err != nil {
		return queryErr.Err.Error()
	}
	return err.Error()
}

// RenderRows formats rows as a list of tuples, for example
// [(17, 'Camarão', 'Grande', 42.5)].
func RenderRows(result catalog.Result) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range result.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, value := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(renderValue(value))
		}
		if len(row) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

func renderValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "None"
	case string:
		return "'" + strings.ReplaceAll(typed, "'", `\'`) + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(typed), "'", `\'`) + "'"
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case bool:
		if typed {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(typed)
	}
}
