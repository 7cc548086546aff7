// Package player drives the playback session against an external render
// [Device] and keeps it consistent with a system-level [RemoteSurface].
//
// The [Engine] is the single arbiter of the playback phase: UI calls and
// remote-control commands funnel through the same transition methods, so the
// two can never disagree about state. While a track is loaded a background
// sampler reads position and duration from the device a few times per second,
// republishes the [State] snapshot, and pushes a now-playing summary to the
// remote surface.
package player
