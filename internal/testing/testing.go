// package testing contains shared testing utilities
package testing

import (
	"context"
	"net/http"

	"github.com/desertthunder/spindle/internal/agents"
	"github.com/desertthunder/spindle/internal/services"
)

// MockRoundTripper returns a fixed HTTP response for every request.
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FakeRefresher is a test double for [services.Refresher].
type FakeRefresher struct {
	Token string
	Err   error
	Calls int
}

func (f *FakeRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	f.Calls++
	if f.Err != nil {
		return "", f.Err
	}
	return f.Token, nil
}

// FakeAgent is a test double for [agents.Handler] with a configurable
// declaration and canned execution outcome.
type FakeAgent struct {
	Catalog   []agents.Tool
	OAuth     []string
	Variables []string
	Outcome   services.Outcome

	ExecutedTool   string
	ExecutedParams map[string]any
	ExecutedCreds  agents.Credentials
	ExecuteCalls   int
}

func (f *FakeAgent) Tools() []agents.Tool {
	return f.Catalog
}

func (f *FakeAgent) Info() agents.Info {
	oauth := f.OAuth
	if oauth == nil {
		oauth = []string{}
	}
	variables := f.Variables
	if variables == nil {
		variables = []string{}
	}
	return agents.Info{Tools: f.Catalog, OAuth: oauth, Variables: variables}
}

func (f *FakeAgent) ExecuteTool(ctx context.Context, name string, params map[string]any, creds agents.Credentials) services.Outcome {
	f.ExecuteCalls++
	f.ExecutedTool = name
	f.ExecutedParams = params
	f.ExecutedCreds = creds
	return f.Outcome
}
