package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/agents"
	"github.com/desertthunder/spindle/internal/services"
)

// Recorder persists a record of each executed tool. Implemented by
// repositories.InvocationRepository; nil disables recording.
type Recorder interface {
	Record(agent, tool string, statusCode int, success bool, duration time.Duration) error
}

// AgentAPI serves agent discovery, tool catalogs, and tool execution.
type AgentAPI struct {
	registry *agents.Registry
	gate     *CredentialGate
	recorder Recorder
	logger   *log.Logger
}

// NewAgentAPI creates the agent-facing API surface.
func NewAgentAPI(registry *agents.Registry, gate *CredentialGate, recorder Recorder, logger *log.Logger) *AgentAPI {
	if logger == nil {
		logger = log.Default()
	}
	return &AgentAPI{registry: registry, gate: gate, recorder: recorder, logger: logger}
}

// Routes returns the method-qualified patterns this handler serves.
func (a *AgentAPI) Routes() []string {
	return []string{
		"GET /{$}",
		"GET /health",
		"GET /{agent}",
		"GET /{agent}/tools",
		"POST /{agent}/tools/{tool}",
	}
}

// ServeHTTP dispatches to the endpoint implementations.
func (a *AgentAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" || r.URL.Path == "/health":
		a.Health(w, r)
	case r.Method == http.MethodPost:
		a.Execute(w, r)
	case strings.HasSuffix(r.URL.Path, "/tools"):
		a.ListTools(w, r)
	default:
		a.Status(w, r)
	}
}

// Health reports process liveness.
func (a *AgentAPI) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status answers agent discovery: 404 with an error body for an unknown
// agent, {"status": "ok"} otherwise.
func (a *AgentAPI) Status(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("agent")
	if _, ok := a.registry.Agent(name); !ok {
		writeOutcome(w, agentNotFound(name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTools returns the agent's full declared tool catalog. The catalog is
// immutable, so repeated calls return the identical list.
func (a *AgentAPI) ListTools(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("agent")
	handler, ok := a.registry.Agent(name)
	if !ok {
		writeOutcome(w, agentNotFound(name))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tools": handler.Tools()})
}

// Execute runs the credential gate and dispatches a tool invocation.
//
// Request parameters arrive as the JSON body; credentials ride in headers.
// The outcome is written at its embedded status code either way.
func (a *AgentAPI) Execute(w http.ResponseWriter, r *http.Request) {
	agentName := r.PathValue("agent")
	toolName := r.PathValue("tool")

	handler, ok := a.registry.Agent(agentName)
	if !ok {
		writeOutcome(w, agentNotFound(agentName))
		return
	}

	params, err := decodeParams(r.Body)
	if err != nil {
		writeOutcome(w, services.Fail(http.StatusBadRequest, "Invalid JSON body"))
		return
	}

	creds, fail := a.gate.Check(r, handler.Info())
	if fail != nil {
		writeOutcome(w, *fail)
		return
	}

	start := time.Now()
	out := handler.ExecuteTool(r.Context(), toolName, params, creds)
	a.record(agentName, toolName, out, time.Since(start))

	writeOutcome(w, out)
}

func (a *AgentAPI) record(agent, tool string, out services.Outcome, duration time.Duration) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.Record(agent, tool, out.StatusCode(), out.Success, duration); err != nil {
		a.logger.Warnf("failed to record invocation: %v", err)
	}
}

// decodeParams reads the request body as a JSON object. An empty body is a
// valid empty parameter set.
func decodeParams(body io.Reader) (map[string]any, error) {
	params := map[string]any{}
	if err := json.NewDecoder(body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return params, nil
}

func agentNotFound(name string) services.Outcome {
	return services.Fail(http.StatusNotFound, fmt.Sprintf("Agent %s not found", name))
}
