package player

// Device is the render capability the engine controls. Implementations wrap
// the actual audio decode/render stack; all calls are expected to return
// quickly, with real work happening inside the device.
type Device interface {
	// Load prepares the device to render the stream at streamURL.
	Load(streamURL string) error

	// Play starts or resumes rendering.
	Play() error

	// Pause suspends rendering, keeping the current position.
	Pause() error

	// Seek jumps to an absolute position in seconds.
	Seek(seconds float64) error

	// Position reports the current playhead position in seconds.
	Position() float64

	// Duration reports the loaded stream's duration in seconds, or 0 when unknown.
	Duration() float64

	// Release tears the device down, discarding any loaded stream.
	Release()
}
