package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTranslatorPrompt(t *testing.T) {
	system, user, err := Default().Translator(TranslateData{
		Schema:   "# Tabela 'pizza'\n- id (INTEGER, PRIMARY KEY)\n",
		Question: "Qual a pizza mais cara?",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "# Tabela 'pizza'")
	assert.Contains(t, system, "SELECT * FROM pizza WHERE ingredientes LIKE '%calabresa%'")
	assert.Contains(t, system, "SELECT * FROM pizza ORDER BY preco DESC LIMIT 1")
	assert.Equal(t, "Qual a pizza mais cara?\n\nSQL query:", user)
}

func TestDefaultComposerPrompt(t *testing.T) {
	system, user, err := Default().Composer(ComposeData{
		Question: "Tem pizza vegetariana?",
		Query:    "SELECT * FROM pizza WHERE name = 'Vegetariana'",
		Result:   "[(24, 'Vegetariana')]",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "SEMPRE responda em português brasileiro (pt-br)")
	assert.Equal(t,
		"Pergunta original: Tem pizza vegetariana?\n\n"+
			"Consulta SQL executada: SELECT * FROM pizza WHERE name = 'Vegetariana'\n\n"+
			"Resultados da consulta: [(24, 'Vegetariana')]\n\n"+
			"Forneca uma resposta útil e amigável em português brasileiro (pt-br):",
		user)
}

func TestParseOverridesOnlyGivenTemplates(t *testing.T) {
	set, err := Parse([]byte(`
composer:
  system: "Responda como um pizzaiolo napolitano."
`))
	require.NoError(t, err)

	system, _, err := set.Composer(ComposeData{})
	require.NoError(t, err)
	assert.Equal(t, "Responda como um pizzaiolo napolitano.", system)

	_, user, err := set.Translator(TranslateData{Question: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "oi\n\nSQL query:", user)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("translator: [oops"))
	assert.Error(t, err)

	_, err = Parse([]byte("translator:\n  user: \"{{.Question\"\n"))
	assert.ErrorContains(t, err, "translator.user")
}

func TestRenderFailsOnUnknownField(t *testing.T) {
	set, err := Parse([]byte("translator:\n  user: \"{{.Nope}}\"\n"))
	require.NoError(t, err)
	_, _, err = set.Translator(TranslateData{})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, set)

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("translator:\n  user: \"P: {{.Question}}\"\n"), 0o600))
	set, err = Load(path)
	require.NoError(t, err)
	_, user, err := set.Translator(TranslateData{Question: "x"})
	require.NoError(t, err)
	assert.Equal(t, "P: x", user)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
