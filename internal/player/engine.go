package player

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
)

// Phase is the discrete state of the playback lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePlaying
	PhasePaused
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the playback snapshot published to observers. Invariant: Track is
// non-nil iff Phase is not PhaseIdle.
type State struct {
	Phase    Phase
	Track    *models.Track
	Position float64 // seconds
	Duration float64 // seconds
}

var (
	ErrNoTrack       = fmt.Errorf("no track loaded")
	ErrNotStreamable = fmt.Errorf("track has no stream URL")
)

const defaultSampleInterval = 500 * time.Millisecond

// Engine owns the playback lifecycle. All transitions are serialized behind
// a single mutex; the periodic sampler is the only last-wins writer of
// position and duration outside of optimistic seek updates.
type Engine struct {
	mu         sync.Mutex
	device     Device
	remote     RemoteSurface
	logger     *log.Logger
	httpClient *http.Client
	interval   time.Duration

	state State
	subs  []chan State

	cancelSampler context.CancelFunc
	samplerDone   chan struct{}

	artwork        []byte
	artworkURL     string
	artworkPending bool
}

// EngineOpts contains construction options for an [Engine]. Device is
// required; everything else has defaults.
type EngineOpts struct {
	Device         Device
	Remote         RemoteSurface
	Logger         *log.Logger
	HTTPClient     *http.Client
	SampleInterval time.Duration
}

// NewEngine creates a playback engine in the idle phase.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Device == nil {
		return nil, fmt.Errorf("%w: render device is required", shared.ErrInvalidInput)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = defaultSampleInterval
	}

	return &Engine{
		device:     opts.Device,
		remote:     opts.Remote,
		logger:     opts.Logger,
		httpClient: opts.HTTPClient,
		interval:   opts.SampleInterval,
	}, nil
}

// Play loads and starts the given track, tearing down any previous track's
// sampler first. With a nil track it resumes the current one instead. A load
// or play failure leaves the engine stopped, never half-loaded.
func (e *Engine) Play(track *models.Track) error {
	if track == nil {
		return e.resume()
	}
	if track.StreamURL == "" {
		return fmt.Errorf("%w: track %d", ErrNotStreamable, track.ID)
	}

	e.teardownSampler()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = State{Phase: PhaseLoading, Track: track, Duration: track.DurationSeconds()}
	e.artwork, e.artworkURL, e.artworkPending = nil, "", false
	e.publishLocked()

	if err := e.device.Load(track.StreamURL); err != nil {
		e.state.Phase = PhaseStopped
		e.publishLocked()
		return fmt.Errorf("failed to load track %d: %w", track.ID, err)
	}

	if err := e.device.Play(); err != nil {
		e.state.Phase = PhaseStopped
		e.publishLocked()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	e.state.Phase = PhasePlaying
	e.publishLocked()
	e.pushRemoteLocked()
	e.startSamplerLocked()

	e.logger.Info("playing track", "id", track.ID, "title", track.Title)
	return nil
}

// resume continues playback of the already-loaded track.
func (e *Engine) resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case PhasePlaying, PhasePaused:
		if err := e.device.Play(); err != nil {
			return fmt.Errorf("failed to resume playback: %w", err)
		}
		e.state.Phase = PhasePlaying
		e.publishLocked()
		e.pushRemoteLocked()
		return nil
	default:
		return ErrNoTrack
	}
}

// Pause suspends playback, keeping the position. A no-op outside the playing phase.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase != PhasePlaying {
		return nil
	}

	if err := e.device.Pause(); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}

	e.state.Phase = PhasePaused
	e.publishLocked()
	e.pushRemoteLocked()
	return nil
}

// Stop cancels the sampler, releases the device, clears the current track
// and resets to idle. Idempotent: stopping an idle engine is a no-op.
func (e *Engine) Stop() error {
	e.teardownSampler()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase == PhaseIdle {
		return nil
	}

	e.device.Release()
	e.state = State{Phase: PhaseIdle}
	e.artwork, e.artworkURL, e.artworkPending = nil, "", false
	e.publishLocked()

	e.logger.Info("playback stopped")
	return nil
}

// SeekTo jumps to an absolute position, clamped at zero. The published
// position updates optimistically; the next sample reconciles it with the
// device.
func (e *Engine) SeekTo(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seekLocked(seconds)
}

// SeekBy seeks relative to the current device position.
func (e *Engine) SeekBy(offset float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase != PhasePlaying && e.state.Phase != PhasePaused {
		return ErrNoTrack
	}
	return e.seekLocked(e.device.Position() + offset)
}

func (e *Engine) seekLocked(seconds float64) error {
	if e.state.Phase != PhasePlaying && e.state.Phase != PhasePaused {
		return ErrNoTrack
	}

	if seconds < 0 {
		seconds = 0
	}

	if err := e.device.Seek(seconds); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	e.state.Position = seconds
	e.publishLocked()
	e.pushRemoteLocked()
	return nil
}

// HandleCommand applies a remote-control command. Commands are equivalent to
// the corresponding engine calls, so remote- and UI-issued intents go through
// the same transition table.
func (e *Engine) HandleCommand(cmd Command) error {
	switch cmd {
	case CommandPlay:
		return e.Play(nil)
	case CommandPause:
		return e.Pause()
	case CommandSeekForward:
		return e.SeekBy(remoteSeekOffset)
	case CommandSeekBackward:
		return e.SeekBy(-remoteSeekOffset)
	default:
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, cmd)
	}
}

// State returns the current playback snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe returns a channel receiving playback snapshots. Intermediate
// samples are dropped rather than blocking a slow subscriber; sampling is
// idempotent so last-wins is safe.
func (e *Engine) Subscribe() <-chan State {
	ch := make(chan State, 8)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) publishLocked() {
	for _, ch := range e.subs {
		select {
		case ch <- e.state:
		default:
		}
	}
}

func (e *Engine) pushRemoteLocked() {
	if e.remote == nil || e.state.Track == nil {
		return
	}

	rate := 0.0
	if e.state.Phase == PhasePlaying {
		rate = 1.0
	}

	e.remote.SetNowPlaying(NowPlaying{
		Title:    e.state.Track.Title,
		Artist:   e.state.Track.User.Username,
		Duration: e.state.Duration,
		Elapsed:  e.state.Position,
		Rate:     rate,
		Artwork:  e.artwork,
	})
}

// startSamplerLocked launches the periodic position sampler for the loaded track.
func (e *Engine) startSamplerLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancelSampler = cancel
	e.samplerDone = done

	go e.sampleLoop(ctx, done)
}

// teardownSampler cancels the sampler and waits for it to exit. Must be
// called without the engine mutex held.
func (e *Engine) teardownSampler() {
	e.mu.Lock()
	cancel := e.cancelSampler
	done := e.samplerDone
	e.cancelSampler = nil
	e.samplerDone = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (e *Engine) sampleLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sample(ctx)
		}
	}
}

// sample reads position and duration from the device and republishes state.
// It is the sole writer of those fields outside of optimistic seeks.
func (e *Engine) sample(ctx context.Context) {
	pos := e.device.Position()
	dur := e.device.Duration()

	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx.Err() != nil || e.state.Track == nil {
		return
	}

	e.state.Position = pos
	if dur > 0 {
		e.state.Duration = dur
	}

	e.publishLocked()
	e.pushRemoteLocked()
	e.maybeFetchArtworkLocked(ctx)
}

// maybeFetchArtworkLocked kicks off an asynchronous artwork fetch for the
// loaded track. The fetch never blocks snapshot publication; the artwork is
// merged into the next remote push once it arrives.
func (e *Engine) maybeFetchArtworkLocked(ctx context.Context) {
	track := e.state.Track
	if track.ArtworkURL == "" || e.artworkPending || e.artworkURL == track.ArtworkURL {
		return
	}

	e.artworkPending = true
	artworkURL := track.ArtworkURL

	go func() {
		data, err := fetchArtwork(ctx, e.httpClient, artworkURL)

		e.mu.Lock()
		defer e.mu.Unlock()

		e.artworkPending = false
		e.artworkURL = artworkURL
		if err != nil {
			e.logger.Warn("artwork fetch failed", "url", artworkURL, "err", err)
			return
		}
		if e.state.Track == nil || e.state.Track.ArtworkURL != artworkURL {
			// track changed while the fetch was in flight
			return
		}

		e.artwork = data
		e.pushRemoteLocked()
	}()
}
