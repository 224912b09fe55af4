package services

import "net/http"

// Outcome is the normalized result of an upstream API call or tool
// execution. It marshals directly into the response body the agent
// platform expects.
type Outcome struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *OutcomeError `json:"error,omitempty"`
}

// OutcomeError carries the HTTP status code and message of a failed call.
type OutcomeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Succeed wraps data in a successful Outcome.
func Succeed(data any) Outcome {
	return Outcome{Success: true, Data: data}
}

// Fail creates a failed Outcome with the given status code and message.
func Fail(code int, message string) Outcome {
	if message == "" {
		message = http.StatusText(code)
	}
	return Outcome{Success: false, Error: &OutcomeError{Code: code, Message: message}}
}

// StatusCode returns the HTTP status the outcome maps to: 200 on success,
// the embedded error code otherwise.
func (o Outcome) StatusCode() int {
	if o.Success || o.Error == nil {
		return http.StatusOK
	}
	return o.Error.Code
}

// Is401 reports whether the outcome is an authorization failure, the trigger
// for the refresh-then-retry path.
func (o Outcome) Is401() bool {
	return !o.Success && o.Error != nil && o.Error.Code == http.StatusUnauthorized
}
