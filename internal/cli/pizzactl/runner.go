package pizzactl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type runner struct {
	client  *http.Client
	baseURL string
	stdout  io.Writer
	stderr  io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("pizzactl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "Pizzabot API base URL")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 60*time.Second), "HTTP timeout (e.g. 60s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}
	r := &runner{
		client:  client,
		baseURL: strings.TrimRight(*baseURL, "/"),
		stdout:  stdout,
		stderr:  stderr,
	}

	command := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]
	switch command {
	case "health":
		return r.passthrough(ctx, http.MethodGet, "/v1/health")
	case "ready":
		return r.passthrough(ctx, http.MethodGet, "/v1/ready")
	case "menu":
		return r.passthrough(ctx, http.MethodGet, "/v1/menu")
	case "schema":
		return r.schema(ctx)
	case "ask":
		return r.ask(ctx, rest)
	case "clear":
		return r.sessionCommand(ctx, "clear", rest, http.MethodPost, "/clear")
	case "history":
		return r.sessionCommand(ctx, "history", rest, http.MethodGet, "")
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}
}

func (r *runner) passthrough(ctx context.Context, method, path string) int {
	body, ok := r.call(ctx, method, path, nil)
	if !ok {
		return 1
	}
	r.printJSON(body)
	return 0
}

func (r *runner) schema(ctx context.Context) int {
	body, ok := r.call(ctx, http.MethodGet, "/v1/menu/schema", nil)
	if !ok {
		return 1
	}
	var payload struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Schema == "" {
		r.printJSON(body)
		return 0
	}
	_, _ = fmt.Fprintln(r.stdout, payload.Schema)
	return 0
}

func (r *runner) ask(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	sessionID := fs.String("session", "", "existing session id (a new session is created when empty)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		_, _ = fmt.Fprintln(r.stderr, "usage: pizzactl ask [-session id] <question>")
		return 2
	}

	id := strings.TrimSpace(*sessionID)
	if id == "" {
		body, ok := r.call(ctx, http.MethodPost, "/v1/chat/sessions", nil)
		if !ok {
			return 1
		}
		var created sessionPayload
		if err := json.Unmarshal(body, &created); err != nil || created.SessionID == "" {
			_, _ = fmt.Fprintf(r.stderr, "unexpected create session response: %s\n", strings.TrimSpace(string(body)))
			return 1
		}
		id = created.SessionID
	}

	request, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		_, _ = fmt.Fprintf(r.stderr, "encode question: %v\n", err)
		return 1
	}
	body, ok := r.call(ctx, http.MethodPost, sessionPath(id)+"/ask", request)
	if !ok {
		return 1
	}
	var answered sessionPayload
	if err := json.Unmarshal(body, &answered); err != nil {
		r.printJSON(body)
		return 0
	}
	_, _ = fmt.Fprintln(r.stdout, answered.Answer)
	_, _ = fmt.Fprintf(r.stderr, "session: %s\n", id)
	return 0
}

func (r *runner) sessionCommand(ctx context.Context, name string, args []string, method, suffix string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	sessionID := fs.String("session", "", "session id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	id := strings.TrimSpace(*sessionID)
	if id == "" {
		_, _ = fmt.Fprintf(r.stderr, "usage: pizzactl %s -session id\n", name)
		return 2
	}
	body, ok := r.call(ctx, method, sessionPath(id)+suffix, nil)
	if !ok {
		return 1
	}
	var payload sessionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		r.printJSON(body)
		return 0
	}
	for _, turn := range payload.Turns {
		_, _ = fmt.Fprintf(r.stdout, "%s: %s\n", turn.Role, turn.Text)
	}
	return 0
}

type sessionPayload struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Turns     []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"turns"`
}

func sessionPath(id string) string {
	return "/v1/chat/sessions/" + url.PathEscape(id)
}

func (r *runner) call(ctx context.Context, method, path string, payload []byte) ([]byte, bool) {
	code, body, err := doRequest(ctx, r.client, method, r.baseURL+path, payload)
	if err != nil {
		_, _ = fmt.Fprintf(r.stderr, "request failed: %v\n", err)
		return nil, false
	}
	if code >= 400 {
		_, _ = fmt.Fprintf(r.stderr, "http %d: %s\n", code, strings.TrimSpace(string(body)))
		return nil, false
	}
	return body, true
}

func (r *runner) printJSON(body []byte) {
	if pretty, ok := prettyJSON(body); ok {
		_, _ = fmt.Fprintln(r.stdout, pretty)
		return
	}
	if len(body) > 0 {
		_, _ = fmt.Fprintln(r.stdout, string(body))
	}
}

func doRequest(ctx context.Context, client *http.Client, method, endpoint string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: pizzactl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                          GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready                           GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  menu                            GET /v1/menu")
	_, _ = fmt.Fprintln(w, "  schema                          GET /v1/menu/schema")
	_, _ = fmt.Fprintln(w, "  ask [-session id] <question>    POST /v1/chat/sessions/{id}/ask")
	_, _ = fmt.Fprintln(w, "  clear -session id               POST /v1/chat/sessions/{id}/clear")
	_, _ = fmt.Fprintln(w, "  history -session id             GET /v1/chat/sessions/{id}")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
