// Resilient HTTP client for the Spotify Web API.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// Refresher exchanges a refresh token for a new access token.
// Implemented by [Auth]; faked in tests.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Request describes one upstream call: method, path (with query string)
// relative to the API base, and an optional body.
type Request struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string // defaults to application/json when Body is set
}

// Client issues calls against the Spotify API, normalizing every response
// into an [Outcome] and applying the refresh-then-retry-once policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	refresher  Refresher
	logger     *log.Logger
}

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	BaseURL    string       // defaults to the public Spotify API
	HTTPClient *http.Client // defaults to [http.DefaultClient]
	RateLimit  float64      // upstream requests per second, default 10
	Refresher  Refresher    // required for [Client.CallWithRefresh]
	Logger     *log.Logger  // defaults to the package-level default logger
}

// NewClient creates a Client for the Spotify API.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), int(opts.RateLimit)),
		refresher:  opts.Refresher,
		logger:     opts.Logger,
	}
}

// Call performs exactly one HTTP request and classifies the response.
//
// 2xx responses succeed with the decoded JSON body (the raw text when the
// body is not JSON, nil when empty). Non-2xx responses fail with the status
// code and the provider's error message when one is present. Transport
// failures fail with a 500 code. Call never returns a Go error; the Outcome
// is the whole story.
func (c *Client) Call(ctx context.Context, req Request, header http.Header) Outcome {
	if err := c.limiter.Wait(ctx); err != nil {
		return Fail(http.StatusInternalServerError, err.Error())
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return Fail(http.StatusInternalServerError, err.Error())
	}

	for key, values := range header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warnf("upstream request failed: %v", err)
		return Fail(http.StatusInternalServerError, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail(http.StatusInternalServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	var parsed any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			parsed = string(raw)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Fail(resp.StatusCode, upstreamMessage(parsed, resp.StatusCode))
	}

	return Succeed(parsed)
}

// CallWithRefresh performs req with a bearer token, refreshing the access
// token and retrying exactly once when the first attempt is rejected with a
// 401.
//
// A failed refresh aborts with Failure{401, "Failed to refresh token"} and
// no retry. The second attempt's outcome is final either way; a renewed
// token that is itself rejected does not trigger another refresh.
func (c *Client) CallWithRefresh(ctx context.Context, req Request, accessToken, refreshToken string) Outcome {
	out := c.Call(ctx, req, bearerHeader(accessToken))
	if !out.Is401() {
		return out
	}

	newToken, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		c.logger.Warnf("token refresh failed: %v", err)
		return Fail(http.StatusUnauthorized, "Failed to refresh token")
	}

	c.logger.Debug("access token refreshed, retrying request", "path", req.Path)
	return c.Call(ctx, req, bearerHeader(newToken))
}

func bearerHeader(token string) http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return header
}

// upstreamMessage extracts the most useful error message from a decoded
// response body, preferring the Spotify {"error": {"message": ...}} shape,
// then the status text, then a generic fallback.
func upstreamMessage(parsed any, statusCode int) string {
	if obj, ok := parsed.(map[string]any); ok {
		if errObj, ok := obj["error"].(map[string]any); ok {
			if msg, ok := errObj["message"].(string); ok && msg != "" {
				return msg
			}
		}
		// Token endpoints use a flat {"error": "...", "error_description": "..."} shape.
		if msg, ok := obj["error_description"].(string); ok && msg != "" {
			return msg
		}
	}

	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}
