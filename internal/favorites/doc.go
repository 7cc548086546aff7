// Package favorites implements SQLite persistence for favorite tracks.
//
// Records are denormalized snapshots keyed by the remote track id; membership
// checks never require a round trip to the remote service. Store failures
// surface to callers and never touch session or playback state.
package favorites
