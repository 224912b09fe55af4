package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spindle/internal/agents"
	"github.com/desertthunder/spindle/internal/server"
)

func gateRequest(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/spotify/tools/search_tracks", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestCredentialGate(t *testing.T) {
	gate := server.NewCredentialGate("service-key", nil)
	info := agents.Info{
		OAuth:     []string{},
		Variables: []string{"spotify-access", "spotify-refresh"},
	}

	t.Run("Missing API Key", func(t *testing.T) {
		_, fail := gate.Check(gateRequest(nil), info)

		if fail == nil {
			t.Fatal("expected a failure outcome")
		}
		if fail.Error.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", fail.Error.Code)
		}
		if fail.Error.Message != "Invalid or missing API key" {
			t.Errorf("unexpected message %q", fail.Error.Message)
		}
	})

	t.Run("Wrong API Key", func(t *testing.T) {
		_, fail := gate.Check(gateRequest(map[string]string{"x-api-key": "wrong"}), info)

		if fail == nil {
			t.Fatal("expected a failure outcome")
		}
		if fail.Error.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", fail.Error.Code)
		}
	})

	t.Run("Missing Variables Reported By Name", func(t *testing.T) {
		_, fail := gate.Check(gateRequest(map[string]string{
			"x-api-key":                 "service-key",
			"x-variable-spotify-access": "token",
		}), info)

		if fail == nil {
			t.Fatal("expected a failure outcome")
		}
		if !strings.Contains(fail.Error.Message, "spotify-refresh") {
			t.Errorf("expected missing name in message, got %q", fail.Error.Message)
		}
		if strings.Contains(fail.Error.Message, "spotify-access") {
			t.Errorf("expected only missing names in message, got %q", fail.Error.Message)
		}
	})

	t.Run("Missing OAuth Token", func(t *testing.T) {
		withOAuth := agents.Info{OAuth: []string{"spotify"}, Variables: []string{}}

		_, fail := gate.Check(gateRequest(map[string]string{"x-api-key": "service-key"}), withOAuth)

		if fail == nil {
			t.Fatal("expected a failure outcome")
		}
		if !strings.Contains(fail.Error.Message, "OAuth token") {
			t.Errorf("expected OAuth token kind in message, got %q", fail.Error.Message)
		}

		_, fail = gate.Check(gateRequest(map[string]string{
			"x-api-key":       "service-key",
			"x-oauth-spotify": "bearer-token",
		}), withOAuth)
		if fail != nil {
			t.Errorf("expected success with token present, got %+v", fail)
		}
	})

	t.Run("All Credentials Present", func(t *testing.T) {
		creds, fail := gate.Check(gateRequest(map[string]string{
			"x-api-key":                  "service-key",
			"x-variable-spotify-access":  "access-token",
			"x-variable-spotify-refresh": "refresh-token",
		}), info)

		if fail != nil {
			t.Fatalf("expected success, got %+v", fail)
		}
		if creds.Variables["spotify-access"] != "access-token" {
			t.Errorf("expected access token in bundle, got %q", creds.Variables["spotify-access"])
		}
		if creds.Variables["spotify-refresh"] != "refresh-token" {
			t.Errorf("expected refresh token in bundle, got %q", creds.Variables["spotify-refresh"])
		}
	})

	t.Run("No Requirements Skips Stages", func(t *testing.T) {
		empty := agents.Info{OAuth: []string{}, Variables: []string{}}

		creds, fail := gate.Check(gateRequest(map[string]string{"x-api-key": "service-key"}), empty)

		if fail != nil {
			t.Fatalf("expected success, got %+v", fail)
		}
		if len(creds.OAuthTokens) != 0 || len(creds.Variables) != 0 {
			t.Errorf("expected empty bundle, got %+v", creds)
		}
	})
}
