// Package server provides HTTP routing, middleware, the credential gate, and
// the OAuth flow endpoints for the agent service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method-qualified patterns, so path wildcards like /{agent}/tools/{tool}
// resolve through [http.Request.PathValue].
//
// # Credential Gate
//
// [CredentialGate] runs the three-stage validation pipeline in front of every
// tool execution: service API key, the agent's required OAuth tokens, then
// its required variables. The pipeline short-circuits on the first failure
// and returns a per-request credential bundle on success. Requirements come
// from the agent's declaration, not from the route.
//
// # OAuth Flow
//
// [OAuthFlow] orchestrates the authorization-code handshake: the login
// redirect embeds a signed single-use state token, the callback verifies and
// consumes it before the code exchange, and token material only ever travels
// back to the client inside the redirect URL. The refresh endpoint exposes
// the same refresh exchange the resilient call path uses internally.
//
// # Agent Surface
//
// [AgentAPI] serves discovery (GET /{agent}), the tool catalog
// (GET /{agent}/tools), and execution (POST /{agent}/tools/{tool}). Tool
// outcomes are written at their embedded status code with a JSON body; the
// process never sees a raw transport error.
package server
