package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Credential and state errors
	ErrMissingCredential = fmt.Errorf("missing credential")
	ErrInvalidState      = fmt.Errorf("invalid state token")
	ErrRefreshFailed     = fmt.Errorf("token refresh failed")
	ErrAuthFailed        = fmt.Errorf("authentication failed")

	// API and dispatch errors
	ErrAPIRequest   = fmt.Errorf("API request failed")
	ErrUpstream     = fmt.Errorf("upstream rejected request")
	ErrUnknownAgent = fmt.Errorf("unknown agent")
	ErrUnknownTool  = fmt.Errorf("unknown tool")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
