package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStoreUnavailable = errors.New("catalog: store unavailable")
	ErrDuplicateID      = errors.New("catalog: duplicate menu item id")
	ErrNotReadOnly      = errors.New("catalog: only read-only SELECT/WITH queries are allowed")
)

const TableName = "pizza"

type Size string

const (
	SizeSmall  Size = "Pequena"
	SizeMedium Size = "Média"
	SizeLarge  Size = "Grande"
)

func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	default:
		return false
	}
}

type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Size        Size    `json:"size"`
	Price       float64 `json:"price"`
	Ingredients string  `json:"ingredients"`
}

type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// QueryError carries the driver message for a statement the store refused or
// failed to run.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

type Store interface {
	Reload(ctx context.Context, items []MenuItem) error
	Execute(ctx context.Context, query string) (Result, error)
	DescribeSchema() string
}

type Reader interface {
	Execute(ctx context.Context, query string) (Result, error)
	DescribeSchema() string
}

func ValidateItems(items []MenuItem) error {
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("menu item %d: name is required", item.ID)
		}
		if !item.Size.Valid() {
			return fmt.Errorf("menu item %d: invalid size %q", item.ID, item.Size)
		}
		if item.Price < 0 {
			return fmt.Errorf("menu item %d: price must be >= 0", item.ID)
		}
	}
	return nil
}

// writeKeywords never appear in a read outside literals. "into" covers
// SELECT INTO as well as INSERT/REPLACE INTO behind a WITH prefix.
var writeKeywords = map[string]struct{}{
	"insert": {}, "update": {}, "delete": {}, "merge": {}, "upsert": {}, "into": {},
	"create": {}, "drop": {}, "alter": {}, "truncate": {}, "grant": {}, "revoke": {},
	"copy": {}, "attach": {}, "detach": {}, "pragma": {}, "vacuum": {}, "call": {},
}

// IsReadOnlyQuery reports whether query is a single SELECT or WITH statement.
// String literals, quoted identifiers and comments are skipped, so a ';' or a
// keyword inside them does not count. Trailing semicolons are allowed.
func IsReadOnlyQuery(query string) bool {
	words, ok := statementWords(query)
	if !ok || len(words) == 0 {
		return false
	}
	if words[0] != "select" && words[0] != "with" {
		return false
	}
	for _, word := range words[1:] {
		if _, write := writeKeywords[word]; write {
			return false
		}
	}
	return true
}

// statementWords returns the lower-cased bare words of query. ok is false when
// the text holds more than one statement or an unterminated literal.
func statementWords(query string) (words []string, ok bool) {
	ended := false
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '-' && strings.HasPrefix(query[i:], "--"):
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				return words, true
			}
			i += end + 1
		case c == '/' && strings.HasPrefix(query[i:], "/*"):
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return nil, false
			}
			i += end + 4
		case c == ';':
			ended = true
			i++
		case ended:
			return nil, false
		case c == '\'' || c == '"' || c == '`':
			end := strings.IndexByte(query[i+1:], c)
			if end < 0 {
				return nil, false
			}
			// A doubled quote escapes itself and simply starts the next scan.
			i += end + 2
		case isWordByte(c):
			start := i
			for i < len(query) && isWordByte(query[i]) {
				i++
			}
			words = append(words, strings.ToLower(query[start:i]))
		default:
			i++
		}
	}
	return words, true
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func DescribeSchema() string {
	var b strings.Builder
	b.WriteString("# Tabela '" + TableName + "'\n")
	b.WriteString("- id (INTEGER, PRIMARY KEY): Identificador único da pizza\n")
	b.WriteString("- name (TEXT): Nome da pizza\n")
	fmt.Fprintf(&b, "- tamanho (TEXT): Tamanho da pizza (%s, %s, %s)\n", SizeSmall, SizeMedium, SizeLarge)
	b.WriteString("- preco (REAL): Preço da pizza\n")
	b.WriteString("- ingredientes (TEXT): Lista de ingredientes da pizza\n")
	return b.String()
}
