// OAuth2 authorization-code and refresh exchanges against the Spotify
// accounts service.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes this deployment requests on login. The set covers every tool the
// Spotify agent exposes.
var spotifyScopes = []string{
	"user-read-recently-played",
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"playlist-modify-private",
	"playlist-read-private",
	"user-read-playback-state",
	"playlist-modify-public",
}

// TokenSet is the credential triple the callback redirect hands to the client.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
}

// Auth performs the OAuth2 exchanges for a single Spotify application.
type Auth struct {
	config     *oauth2.Config
	tokenURL   string
	httpClient *http.Client
	logger     *log.Logger
}

// AuthOpts contains configuration options for creating an [Auth].
type AuthOpts struct {
	AuthURL    string       // authorization endpoint override for tests
	TokenURL   string       // token endpoint override for tests
	HTTPClient *http.Client // defaults to [http.DefaultClient]
	Logger     *log.Logger
}

// NewAuth creates an Auth service from Spotify application credentials.
func NewAuth(creds shared.SpotifyConfig, opts AuthOpts) (*Auth, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingConfig)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingConfig)
	}

	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  opts.AuthURL,
			TokenURL: opts.TokenURL,
		},
	}

	return &Auth{
		config:     config,
		tokenURL:   opts.TokenURL,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}, nil
}

// AuthCodeURL builds the provider authorization URL for the given state
// token. show_dialog forces re-consent so a shared machine cannot silently
// reuse the previous user's grant.
func (a *Auth) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for tokens.
//
// The exchange is attempted exactly once: codes are single-use, so a retry
// would only be rejected by the provider.
func (a *Auth) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 && !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Round(time.Second).Seconds())
	}

	return &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh exchanges a refresh token for a new access token via a single POST
// with the client credentials in a basic-auth header.
//
// Any failure, transport or provider rejection alike, surfaces as
// [shared.ErrRefreshFailed]; callers treat the token as simply absent.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	tok, err := a.refreshExchange(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// RefreshWithExpiry is [Auth.Refresh] but also reports the token lifetime,
// which the /refresh-token endpoint echoes back to the client.
func (a *Auth) RefreshWithExpiry(ctx context.Context, refreshToken string) (*TokenSet, error) {
	return a.refreshExchange(ctx, refreshToken)
}

func (a *Auth) refreshExchange(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", shared.ErrRefreshFailed)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warnf("refresh exchange failed: %v", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Warnf("refresh exchange rejected: status %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", shared.ErrRefreshFailed)
	}

	return &TokenSet{AccessToken: payload.AccessToken, ExpiresIn: payload.ExpiresIn}, nil
}
