// Package auth owns the authentication lifecycle: the credential store
// adapter, the session state machine, and the OAuth2 authorization-code flow.
//
// The [Session] is the single owner of the bearer credential. The [Flow]
// drives the interactive consent step through a [Consenter] capability and
// exchanges the resulting code for a token; it never retries on its own.
package auth
