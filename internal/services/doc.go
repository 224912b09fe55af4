// Package services implements the upstream Spotify call path.
//
// # Outcome
//
// Every upstream interaction normalizes to an [Outcome] before any caller
// sees it: success with the decoded body, or failure with an HTTP status
// code and a best-effort message. Transport failures (timeouts, connection
// refused, DNS) become 500-class failures. Tool code never handles a raw
// transport error.
//
// # Resilient calls
//
// [Client.Call] performs exactly one HTTP request. [Client.CallWithRefresh]
// wraps it with the bounded renewal policy every tool uses: on a 401 the
// caller's refresh token is exchanged for a new access token exactly once,
// the authorization header is rebuilt, and the call is retried exactly once.
// A failed exchange aborts with a 401 outcome; a second 401 is returned
// as-is. There is never a second refresh or a third attempt.
//
// # OAuth exchanges
//
// [Auth] owns the provider handshake: building the authorization URL
// (via [oauth2.Config]), the single non-retrying code-for-token exchange
// (authorization codes are single-use, so a retry would only be rejected),
// and the refresh-token exchange that [Client.CallWithRefresh] leans on.
package services
