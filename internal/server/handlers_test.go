package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spindle/internal/agents"
	"github.com/desertthunder/spindle/internal/server"
	"github.com/desertthunder/spindle/internal/services"
	tu "github.com/desertthunder/spindle/internal/testing"
)

type recordedCall struct {
	Agent    string
	Tool     string
	Status   int
	Success  bool
	Duration time.Duration
}

type fakeRecorder struct {
	calls []recordedCall
	err   error
}

func (f *fakeRecorder) Record(agent, tool string, statusCode int, success bool, duration time.Duration) error {
	f.calls = append(f.calls, recordedCall{agent, tool, statusCode, success, duration})
	return f.err
}

// newAPI wires a FakeAgent named "spotify" behind the full route table.
func newAPI(agent *tu.FakeAgent, recorder server.Recorder) *server.BasicRouter {
	registry := agents.NewRegistry(map[string]agents.Handler{"spotify": agent})
	gate := server.NewCredentialGate("service-key", nil)
	api := server.NewAgentAPI(registry, gate, recorder, nil)

	router := server.NewBasicRouter()
	router.Handler(api)
	return router
}

func do(router *server.BasicRouter, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var authedHeaders = map[string]string{
	"x-api-key":                  "service-key",
	"x-variable-spotify-access":  "access",
	"x-variable-spotify-refresh": "refresh",
}

func TestAgentAPI(t *testing.T) {
	catalog := []agents.Tool{{Name: "search_tracks", Description: "Search for tracks"}}

	t.Run("Health", func(t *testing.T) {
		router := newAPI(&tu.FakeAgent{}, nil)

		for _, path := range []string{"/", "/health"} {
			rec := do(router, http.MethodGet, path, "", nil)
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200 from %s, got %d", path, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
				t.Errorf("expected status ok body from %s, got %s", path, rec.Body.String())
			}
		}
	})

	t.Run("Agent Status", func(t *testing.T) {
		router := newAPI(&tu.FakeAgent{}, nil)

		rec := do(router, http.MethodGet, "/spotify", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for known agent, got %d", rec.Code)
		}

		rec = do(router, http.MethodGet, "/deezer", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown agent, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Agent deezer not found") {
			t.Errorf("expected agent name in error, got %s", rec.Body.String())
		}
	})

	t.Run("ListTools", func(t *testing.T) {
		router := newAPI(&tu.FakeAgent{Catalog: catalog}, nil)

		first := do(router, http.MethodGet, "/spotify/tools", "", nil)
		second := do(router, http.MethodGet, "/spotify/tools", "", nil)

		if first.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", first.Code)
		}
		if first.Body.String() != second.Body.String() {
			t.Error("expected identical catalogs across calls")
		}

		var payload struct {
			Tools []agents.Tool `json:"tools"`
		}
		if err := json.Unmarshal(first.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode catalog: %v", err)
		}
		if len(payload.Tools) != 1 || payload.Tools[0].Name != "search_tracks" {
			t.Errorf("unexpected catalog: %+v", payload.Tools)
		}

		rec := do(router, http.MethodGet, "/deezer/tools", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown agent, got %d", rec.Code)
		}
	})

	t.Run("Execute", func(t *testing.T) {
		t.Run("Unknown Agent", func(t *testing.T) {
			agent := &tu.FakeAgent{}
			router := newAPI(agent, nil)

			rec := do(router, http.MethodPost, "/deezer/tools/search_tracks", "{}", authedHeaders)

			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
			if agent.ExecuteCalls != 0 {
				t.Errorf("expected no execution, got %d calls", agent.ExecuteCalls)
			}
		})

		t.Run("Gate Failure Blocks Execution", func(t *testing.T) {
			agent := &tu.FakeAgent{Variables: []string{"spotify-access"}}
			router := newAPI(agent, nil)

			rec := do(router, http.MethodPost, "/spotify/tools/search_tracks", "{}", map[string]string{"x-api-key": "wrong"})

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if agent.ExecuteCalls != 0 {
				t.Errorf("expected no execution after gate failure, got %d calls", agent.ExecuteCalls)
			}
		})

		t.Run("Invalid JSON Body", func(t *testing.T) {
			agent := &tu.FakeAgent{}
			router := newAPI(agent, nil)

			rec := do(router, http.MethodPost, "/spotify/tools/search_tracks", "{not json", authedHeaders)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "Invalid JSON body") {
				t.Errorf("unexpected body %s", rec.Body.String())
			}
			if agent.ExecuteCalls != 0 {
				t.Errorf("expected no execution, got %d calls", agent.ExecuteCalls)
			}
		})

		t.Run("Empty Body Is Empty Params", func(t *testing.T) {
			agent := &tu.FakeAgent{Outcome: services.Succeed(map[string]any{"ok": true})}
			router := newAPI(agent, nil)

			rec := do(router, http.MethodPost, "/spotify/tools/get_current_user_profile", "", map[string]string{"x-api-key": "service-key"})

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if agent.ExecuteCalls != 1 {
				t.Fatalf("expected one execution, got %d", agent.ExecuteCalls)
			}
			if len(agent.ExecutedParams) != 0 {
				t.Errorf("expected empty params, got %+v", agent.ExecutedParams)
			}
		})

		t.Run("Dispatches Tool With Params And Credentials", func(t *testing.T) {
			agent := &tu.FakeAgent{
				Variables: []string{"spotify-access", "spotify-refresh"},
				Outcome:   services.Succeed(map[string]any{"tracks": []any{}}),
			}
			router := newAPI(agent, nil)

			rec := do(router, http.MethodPost, "/spotify/tools/search_tracks", `{"query": "daft punk", "limit": 5}`, authedHeaders)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if agent.ExecutedTool != "search_tracks" {
				t.Errorf("expected search_tracks, got %q", agent.ExecutedTool)
			}
			if agent.ExecutedParams["query"] != "daft punk" {
				t.Errorf("expected query param, got %+v", agent.ExecutedParams)
			}
			if agent.ExecutedCreds.Variables["spotify-access"] != "access" {
				t.Errorf("expected credentials forwarded, got %+v", agent.ExecutedCreds)
			}
		})

		t.Run("Outcome Status Propagates", func(t *testing.T) {
			agent := &tu.FakeAgent{Outcome: services.Fail(http.StatusBadGateway, "upstream down")}
			router := newAPI(agent, nil)

			rec := do(router, http.MethodPost, "/spotify/tools/search_tracks", "{}", map[string]string{"x-api-key": "service-key"})

			if rec.Code != http.StatusBadGateway {
				t.Errorf("expected 502, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"success":false`) {
				t.Errorf("expected failure envelope, got %s", rec.Body.String())
			}
		})

		t.Run("Records Invocations", func(t *testing.T) {
			agent := &tu.FakeAgent{Outcome: services.Succeed(nil)}
			recorder := &fakeRecorder{}
			router := newAPI(agent, recorder)

			do(router, http.MethodPost, "/spotify/tools/search_tracks", "{}", map[string]string{"x-api-key": "service-key"})

			if len(recorder.calls) != 1 {
				t.Fatalf("expected one recorded invocation, got %d", len(recorder.calls))
			}
			call := recorder.calls[0]
			if call.Agent != "spotify" || call.Tool != "search_tracks" {
				t.Errorf("unexpected invocation record %+v", call)
			}
			if call.Status != http.StatusOK || !call.Success {
				t.Errorf("expected successful record, got %+v", call)
			}
		})

		t.Run("Gate Failures Are Not Recorded", func(t *testing.T) {
			recorder := &fakeRecorder{}
			router := newAPI(&tu.FakeAgent{}, recorder)

			do(router, http.MethodPost, "/spotify/tools/search_tracks", "{}", nil)

			if len(recorder.calls) != 0 {
				t.Errorf("expected no records for rejected request, got %d", len(recorder.calls))
			}
		})
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		router := newAPI(&tu.FakeAgent{}, nil)

		rec := do(router, http.MethodDelete, "/spotify/tools/search_tracks", "", authedHeaders)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}
