// Package tui is the full-screen terminal chat over a single session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pizzabot/pizzabot/internal/session"
)

type Options struct {
	Title       string
	BotName     string
	Placeholder string
	Thinking    string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "🍕 Pizzaria Delícia de Vitória-ES"
	}
	if o.BotName == "" {
		o.BotName = "Pizzabot"
	}
	if o.Placeholder == "" {
		o.Placeholder = "Digite sua pergunta sobre pizzas..."
	}
	if o.Thinking == "" {
		o.Thinking = "Processando sua pergunta..."
	}
	return o
}

// answerMsg carries the orchestrator's reply back into the update loop.
type answerMsg struct {
	Text string
}

type Model struct {
	ctx      context.Context
	asker    session.Asker
	opts     Options
	viewport viewport.Model
	input    textinput.Model
	turns    []session.Turn
	waiting  bool
	quitting bool
	ready    bool
}

func New(ctx context.Context, asker session.Asker, opts Options) *Model {
	opts = opts.withDefaults()

	input := textinput.New()
	input.Placeholder = opts.Placeholder
	input.Prompt = StylePrompt.Render("🍕 > ")
	input.CharLimit = 500
	input.Focus()

	m := &Model{
		ctx:      ctx,
		asker:    asker,
		opts:     opts,
		viewport: viewport.New(80, 20),
		input:    input,
	}
	m.reset()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case answerMsg:
		m.waiting = false
		m.turns = append(m.turns, session.Turn{Role: session.RoleAssistant, Text: msg.Text})
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyCtrlL:
		if m.waiting {
			return m, nil
		}
		m.asker.Clear()
		m.reset()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		return m, m.submit()
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.waiting {
		return nil
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return nil
	}
	m.input.Reset()
	if session.IsExitToken(question) {
		m.quitting = true
		return tea.Quit
	}

	m.turns = append(m.turns, session.Turn{Role: session.RoleUser, Text: question})
	m.waiting = true
	m.refresh()

	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		return answerMsg{Text: asker.Ask(ctx, question)}
	}
}

func (m *Model) reset() {
	m.turns = []session.Turn{{Role: session.RoleAssistant, Text: session.Greeting}}
	m.refresh()
}

func (m *Model) resize(width, height int) {
	if width < 20 {
		width = 20
	}
	// title, blank, input and status bar
	vpHeight := height - 4
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - 6
	m.ready = true
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m *Model) render() string {
	wrap := lipgloss.NewStyle().Width(m.viewport.Width - 2)
	var b strings.Builder
	for _, turn := range m.turns {
		switch turn.Role {
		case session.RoleUser:
			b.WriteString(StyleUser.Render("Você: "))
		default:
			b.WriteString(StyleBot.Render(m.opts.BotName + ": "))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render("  " + turn.Text))
		b.WriteString("\n\n")
	}
	if m.waiting {
		b.WriteString(StyleThinking.Render("  ⏳ " + m.opts.Thinking))
	}
	return b.String()
}

func (m *Model) View() string {
	if m.quitting {
		return session.Farewell + "\n"
	}
	status := StyleStatusBar.Render("enter enviar • ctrl+l limpar • esc sair")
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		StyleTitle.Render(m.opts.Title),
		m.viewport.View(),
		m.input.View(),
		status,
	)
}

// Transcript returns the turns shown on screen.
func (m *Model) Transcript() []session.Turn {
	out := make([]session.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

func Run(ctx context.Context, asker session.Asker, opts Options) error {
	p := tea.NewProgram(New(ctx, asker, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

var _ tea.Model = (*Model)(nil)
