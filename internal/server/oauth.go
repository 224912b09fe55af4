package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/state"
)

// OAuthFlow orchestrates the authorization-code handshake: login redirect,
// callback verification and exchange, and the refresh endpoint.
//
// Implements the [Handler] interface for registration with a [Router].
type OAuthFlow struct {
	auth      *services.Auth
	states    *state.Issuer
	clientURL string
	logger    *log.Logger
}

// NewOAuthFlow creates the flow controller. clientURL is the front-end that
// receives every redirect, success or failure.
func NewOAuthFlow(auth *services.Auth, states *state.Issuer, clientURL string, logger *log.Logger) *OAuthFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &OAuthFlow{auth: auth, states: states, clientURL: clientURL, logger: logger}
}

// Routes returns the method-qualified patterns this handler serves.
func (f *OAuthFlow) Routes() []string {
	return []string{"GET /login", "GET /callback", "POST /refresh-token"}
}

// ServeHTTP dispatches to the endpoint implementations.
func (f *OAuthFlow) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/login":
		f.Login(w, r)
	case r.URL.Path == "/callback":
		f.Callback(w, r)
	default:
		f.RefreshToken(w, r)
	}
}

// Login issues a signed state token and redirects the user agent to the
// provider's authorization endpoint.
func (f *OAuthFlow) Login(w http.ResponseWriter, r *http.Request) {
	token, err := f.states.Issue()
	if err != nil {
		f.logger.Error("failed to issue state token", "err", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, f.auth.AuthCodeURL(token), http.StatusFound)
}

// Callback completes the handshake.
//
// A provider error redirects straight to the client's login page carrying
// that error. The state token is then verified and consumed before anything
// else happens; an invalid or replayed state never reaches the code
// exchange. The exchange itself runs exactly once, and its tokens travel to
// the client embedded in the redirect URL.
func (f *OAuthFlow) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		f.logger.Warn("provider returned error on callback", "error", errParam)
		f.clientRedirect(w, r, "/login?error="+url.QueryEscape(errParam))
		return
	}

	if !f.states.VerifyAndConsume(query.Get("state")) {
		f.logger.Warn("callback with invalid state")
		f.clientRedirect(w, r, "/login?error=invalid_state")
		return
	}

	tokens, err := f.auth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		f.logger.Error("code exchange failed", "err", err)
		f.clientRedirect(w, r, "/login?error=auth_failed")
		return
	}

	values := url.Values{}
	values.Set("access_token", tokens.AccessToken)
	values.Set("refresh_token", tokens.RefreshToken)
	values.Set("expires_in", fmt.Sprintf("%d", tokens.ExpiresIn))
	f.clientRedirect(w, r, "/?"+values.Encode())
}

// RefreshToken exchanges a caller-supplied refresh token for a new access
// token. Any failure is a 401 with a fixed error body.
func (f *OAuthFlow) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token refresh failed"})
		return
	}

	tokens, err := f.auth.RefreshWithExpiry(r.Context(), body.RefreshToken)
	if err != nil {
		f.logger.Warn("refresh endpoint exchange failed", "err", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token refresh failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

func (f *OAuthFlow) clientRedirect(w http.ResponseWriter, r *http.Request, suffix string) {
	http.Redirect(w, r, f.clientURL+suffix, http.StatusFound)
}
