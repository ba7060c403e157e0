package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pizzabot/pizzabot/internal/observability"
	"github.com/pizzabot/pizzabot/internal/session"
)

// ChatUIConfig is what the web page and the widget render around the chat.
type ChatUIConfig struct {
	Title            string   `json:"title"`
	BotName          string   `json:"bot_name"`
	Greeting         string   `json:"greeting"`
	Placeholder      string   `json:"placeholder"`
	ThinkingText     string   `json:"thinking_text"`
	ClearLabel       string   `json:"clear_label"`
	AboutTitle       string   `json:"about_title"`
	ExampleQuestions []string `json:"example_questions"`
}

func DefaultChatUI() ChatUIConfig {
	return ChatUIConfig{
		Title:        "Pizzaria Delícia de Vitória-ES",
		BotName:      "Pizzabot",
		Greeting:     session.Greeting,
		Placeholder:  "Faça uma pergunta sobre nossas pizzas...",
		ThinkingText: "Processando sua pergunta...",
		ClearLabel:   "Limpar conversa",
		AboutTitle:   "Sobre o PizzaBot",
		ExampleQuestions: []string{
			"Quais são as pizzas disponíveis?",
			"Qual a pizza mais cara?",
			"Tem pizza vegetariana?",
			"Quais são os ingredientes da pizza Calabresa?",
		},
	}
}

func (c ChatUIConfig) withDefaults() ChatUIConfig {
	defaults := DefaultChatUI()
	if c.Title == "" {
		c.Title = defaults.Title
	}
	if c.BotName == "" {
		c.BotName = defaults.BotName
	}
	if c.Greeting == "" {
		c.Greeting = defaults.Greeting
	}
	if c.Placeholder == "" {
		c.Placeholder = defaults.Placeholder
	}
	if c.ThinkingText == "" {
		c.ThinkingText = defaults.ThinkingText
	}
	if c.ClearLabel == "" {
		c.ClearLabel = defaults.ClearLabel
	}
	if c.AboutTitle == "" {
		c.AboutTitle = defaults.AboutTitle
	}
	if len(c.ExampleQuestions) == 0 {
		c.ExampleQuestions = defaults.ExampleQuestions
	}
	return c
}

type askRequest struct {
	Question string `json:"question"`
}

type sessionResponse struct {
	SessionID string         `json:"session_id"`
	Answer    string         `json:"answer,omitempty"`
	Turns     []session.Turn `json:"turns"`
}

func handleCreateSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat sessions are not configured", false, nil)
		return
	}
	id, orchestrator, err := deps.Sessions.Create()
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "TOO_MANY_SESSIONS", err.Error(), true, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_CREATE_FAILED", err.Error(), true, nil)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id, Turns: orchestrator.Turns()})
}

func handleGetSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	id, orchestrator, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Turns: orchestrator.Turns()})
}

func handleDeleteSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat sessions are not configured", false, nil)
		return
	}
	id := chi.URLParam(r, "session")
	if !deps.Sessions.Delete(id) {
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", false, map[string]any{"session_id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	id, orchestrator, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}

	var req askRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	ctx := observability.ContextWithSessionID(r.Context(), id)
	answer := orchestrator.Ask(ctx, question)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Answer: answer, Turns: orchestrator.Turns()})
}

func handleClearSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	id, orchestrator, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}
	orchestrator.Clear()
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Turns: orchestrator.Turns()})
}

func lookupSession(deps Dependencies, w http.ResponseWriter, r *http.Request) (string, *session.Orchestrator, bool) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat sessions are not configured", false, nil)
		return "", nil, false
	}
	id := chi.URLParam(r, "session")
	orchestrator, err := deps.Sessions.Get(id)
	if err != nil {
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error(), false, map[string]any{"session_id": id})
		return "", nil, false
	}
	return id, orchestrator, true
}
