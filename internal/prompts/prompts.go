package prompts

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	defaultTranslatorSystem = `Você é um assistente de SQL especializado em traduzir perguntas em linguagem natural para consultas SQL.

Você tem acesso a um banco de dados com a seguinte tabela:

{{.Schema}}
O usuário fará perguntas em linguagem natural sobre o cardápio de pizzas.
Primeiro, traduza a pergunta para SQL. Em seguida, explique os resultados em português brasileiro, de forma amigável e útil.
IMPORTANTE: Sempre responda em português brasileiro (pt-br).
Escreva a consulta SQL em uma única linha, começando com SELECT.

Exemplos:
- "Quais pizzas contêm calabresa?" -> SELECT * FROM pizza WHERE ingredientes LIKE '%calabresa%'
- "Qual a pizza mais cara?" -> SELECT * FROM pizza ORDER BY preco DESC LIMIT 1

Lembre-se: sua resposta deve ser sempre em português brasileiro (pt-br) e ser útil para o cliente da pizzaria.
`

	defaultTranslatorUser = "{{.Question}}\n\nSQL query:"

	defaultComposerSystem = "Você é um atendente de pizzaria que responde perguntas sobre o cardápio. " +
		"SEMPRE responda em português brasileiro (pt-br), de forma amigável e prestativa."

	defaultComposerUser = "Pergunta original: {{.Question}}\n\n" +
		"Consulta SQL executada: {{.Query}}\n\n" +
		"Resultados da consulta: {{.Result}}\n\n" +
		"Forneca uma resposta útil e amigável em português brasileiro (pt-br):"
)

// Pair is the system and user template of one model call.
type Pair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// File is the YAML layout accepted by Load. Empty fields keep the defaults.
type File struct {
	Translator Pair `yaml:"translator"`
	Composer   Pair `yaml:"composer"`
}

type TranslateData struct {
	Schema   string
	Question string
}

type ComposeData struct {
	Question string
	Query    string
	Result   string
}

type Set struct {
	translatorSystem *template.Template
	translatorUser   *template.Template
	composerSystem   *template.Template
	composerUser     *template.Template
}

func Default() *Set {
	set, err := build(File{})
	if err != nil {
		panic(fmt.Sprintf("default prompts: %v", err))
	}
	return set
}

// Load reads overrides from a YAML file. An empty path yields the defaults.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Set, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse prompts yaml: %w", err)
	}
	return build(file)
}

func (s *Set) Translator(data TranslateData) (system, user string, err error) {
	if system, err = render(s.translatorSystem, data); err != nil {
		return "", "", err
	}
	if user, err = render(s.translatorUser, data); err != nil {
		return "", "", err
	}
	return system, user, nil
}

func (s *Set) Composer(data ComposeData) (system, user string, err error) {
	if system, err = render(s.composerSystem, data); err != nil {
		return "", "", err
	}
	if user, err = render(s.composerUser, data); err != nil {
		return "", "", err
	}
	return system, user, nil
}

func build(file File) (*Set, error) {
	set := &Set{}
	sources := []struct {
		name     string
		override string
		fallback string
		target   **template.Template
	}{
		{"translator.system", file.Translator.System, defaultTranslatorSystem, &set.translatorSystem},
		{"translator.user", file.Translator.User, defaultTranslatorUser, &set.translatorUser},
		{"composer.system", file.Composer.System, defaultComposerSystem, &set.composerSystem},
		{"composer.user", file.Composer.User, defaultComposerUser, &set.composerUser},
	}

	for _, source := range sources {
		text := source.fallback
		if strings.TrimSpace(source.override) != "" {
			text = source.override
		}
		tmpl, err := template.New(source.name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", source.name, err)
		}
		*source.target = tmpl
	}
	return set, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
