package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/agents"
	"github.com/desertthunder/spindle/internal/services"
)

// Header conventions for the credential-carrying request headers. Each
// declared OAuth token or variable name maps to exactly one header.
const (
	HeaderAPIKey         = "x-api-key"
	HeaderOAuthPrefix    = "x-oauth-"
	HeaderVariablePrefix = "x-variable-"
)

// CredentialGate runs the layered validation pipeline in front of tool
// execution: service key, then the agent's required OAuth tokens, then its
// required variables. Checks run in that fixed order and the pipeline
// short-circuits on the first failure. An agent with empty requirement sets
// skips the corresponding stage entirely.
type CredentialGate struct {
	serviceKey string
	logger     *log.Logger
}

// NewCredentialGate creates a gate validating against the given service key.
func NewCredentialGate(serviceKey string, logger *log.Logger) *CredentialGate {
	if logger == nil {
		logger = log.Default()
	}
	return &CredentialGate{serviceKey: serviceKey, logger: logger}
}

// Check runs all three stages against the request for the given agent
// declaration. On success it returns the per-request credential bundle; on
// failure it returns the 401 outcome to write. Credential values are never
// logged, only the names of what was missing.
func (g *CredentialGate) Check(r *http.Request, info agents.Info) (agents.Credentials, *services.Outcome) {
	if fail := g.CheckAPIKey(r); fail != nil {
		return agents.Credentials{}, fail
	}

	tokens, fail := g.CheckOAuthTokens(r, info.OAuth)
	if fail != nil {
		return agents.Credentials{}, fail
	}

	variables, fail := g.CheckVariables(r, info.Variables)
	if fail != nil {
		return agents.Credentials{}, fail
	}

	return agents.Credentials{OAuthTokens: tokens, Variables: variables}, nil
}

// CheckAPIKey compares the request's service key header against the
// configured key.
func (g *CredentialGate) CheckAPIKey(r *http.Request) *services.Outcome {
	key := r.Header.Get(HeaderAPIKey)
	if key == "" || key != g.serviceKey {
		g.logger.Warn("request rejected: invalid or missing API key", "path", r.URL.Path)
		fail := services.Fail(http.StatusUnauthorized, "Invalid or missing API key")
		return &fail
	}
	return nil
}

// CheckOAuthTokens extracts each declared OAuth token from its
// x-oauth-<name> header. A single missing name fails the whole stage.
func (g *CredentialGate) CheckOAuthTokens(r *http.Request, names []string) (map[string]string, *services.Outcome) {
	return g.collect(r, names, HeaderOAuthPrefix, "OAuth token")
}

// CheckVariables extracts each declared variable from its x-variable-<name>
// header. Symmetric to the OAuth stage.
func (g *CredentialGate) CheckVariables(r *http.Request, names []string) (map[string]string, *services.Outcome) {
	return g.collect(r, names, HeaderVariablePrefix, "variable")
}

func (g *CredentialGate) collect(r *http.Request, names []string, prefix, kind string) (map[string]string, *services.Outcome) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	values := make(map[string]string, len(names))
	var missing []string

	for _, name := range names {
		v := r.Header.Get(prefix + name)
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}

	if len(missing) > 0 {
		g.logger.Warn("request rejected: missing credentials", "kind", kind, "names", strings.Join(missing, ","))
		fail := services.Fail(http.StatusUnauthorized,
			fmt.Sprintf("Missing required %s: %s", kind, strings.Join(missing, ", ")))
		return nil, &fail
	}

	return values, nil
}
