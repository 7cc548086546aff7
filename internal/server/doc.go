// Package server implements the interactive-consent capability as a loopback
// HTTP server.
//
// # OAuth Callback Handler
//
// [CallbackHandler] serves the OAuth2 redirect target. It validates the state
// parameter (CSRF protection), captures the full callback URL and delivers it
// through a one-shot channel; code-for-token exchange stays with the
// authorization flow. Only the first callback is processed, preventing
// replay.
//
// # Loopback Consenter
//
// [LoopbackConsenter] ties it together: it starts a temporary server on the
// configured loopback address, opens the system browser at the authorization
// URL, and resolves with the callback URL once the service redirects back.
// Cancelling the context abandons the flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] added first wraps outermost and executes first. The
// [BasicRouter] implementation uses [http.ServeMux] internally with method
// filtering. Custom handlers implement the [Handler] interface, which wraps
// the stdlib handler interface and adds routes, allowing a handler to
// encapsulate its own route definitions.
package server
