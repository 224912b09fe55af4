// Package repositories provides the persistence layer for the tool
// invocation log.
//
// The log is an audit trail, not a cache: each executed tool records its
// agent, tool name, outcome status, and duration. Credentials, parameters,
// and token material are never written. Recording is best-effort and a nil
// repository disables it entirely, so the call path never depends on the
// database being present.
package repositories
