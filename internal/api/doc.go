// Package api implements the authenticated request pipeline against the
// SoundCloud HTTP API.
//
// Every call reads the latest committed credential from a [CredentialSource],
// appends it as a query parameter, and classifies the outcome into the typed
// error set ([ErrUnauthorized], [ErrNotFound], [ErrServer], [ErrDecoding],
// [ErrNetwork], [ErrUnknown]). Calls are single attempts; retry policy
// belongs to callers.
package api
