// package agents defines the capability surface a tool-exposing agent implements
// and the read-only registry that resolves agent names to handlers.
package agents

import (
	"context"
	"sort"

	"github.com/desertthunder/spindle/internal/services"
)

// Property describes a single parameter in a tool's JSON schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is the JSON-schema-shaped description of a tool's parameters.
//
// Schemas document expected input for discovery; the executing tool, not the
// dispatch layer, enforces parameter shape.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Tool describes one invocable operation: a name unique within its agent, a
// human-readable description, and a parameter schema.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Info declares an agent's capabilities and credential requirements.
// Immutable once the agent is registered.
type Info struct {
	Tools     []Tool   `json:"tools"`
	OAuth     []string `json:"oauth"`     // required OAuth token names
	Variables []string `json:"variables"` // required named variables
}

// Credentials is the transient, per-request credential bundle the dispatch
// layer hands to a tool. Constructed fresh per call and never cached.
type Credentials struct {
	OAuthTokens map[string]string
	Variables   map[string]string
}

// Handler is the capability set every agent implements.
type Handler interface {
	// Tools returns the agent's declared tool catalog.
	Tools() []Tool

	// Info returns the agent's capability declaration, including the OAuth
	// token and variable names the credential gate must collect.
	Info() Info

	// ExecuteTool dispatches by tool name and returns a normalized outcome.
	// An unrecognized name yields a 404 failure.
	ExecuteTool(ctx context.Context, name string, params map[string]any, creds Credentials) services.Outcome
}

// Registry maps agent names to handlers.
//
// It is populated once at process start and read-only afterward; request
// handlers receive it explicitly rather than through a hidden global so
// tests can substitute fake agents.
type Registry struct {
	agents map[string]Handler
}

// NewRegistry creates a Registry from the given name-to-handler table.
func NewRegistry(agents map[string]Handler) *Registry {
	table := make(map[string]Handler, len(agents))
	for name, handler := range agents {
		table[name] = handler
	}
	return &Registry{agents: table}
}

// Agent resolves a name to its handler.
func (r *Registry) Agent(name string) (Handler, bool) {
	handler, ok := r.agents[name]
	return handler, ok
}

// Names returns the registered agent names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
