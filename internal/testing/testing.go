// package testing contains shared testing utilities
package testing

import (
	"errors"
	"sync"

	"github.com/desertthunder/scx/internal/auth"
	"github.com/desertthunder/scx/internal/player"
)

// MemoryTokenStore is an in-memory [auth.TokenStore] test double.
type MemoryTokenStore struct {
	mu      sync.Mutex
	token   string
	present bool

	PutErr    error
	DeleteErr error
	Deletes   int
}

func (s *MemoryTokenStore) Put(token string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.present = true
	return nil
}

func (s *MemoryTokenStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return "", auth.ErrTokenNotFound
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.token = ""
	s.present = false
	return nil
}

// FakeDevice is a scriptable [player.Device] test double. All fields are
// guarded by an internal mutex so the sampler goroutine can read them safely.
type FakeDevice struct {
	mu sync.Mutex

	LoadedURL string
	Playing   bool
	Released  bool
	Pos       float64
	Dur       float64

	LoadErr error
	PlayErr error
	SeekErr error

	Loads int
	Seeks []float64
}

func (d *FakeDevice) Load(streamURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LoadErr != nil {
		return d.LoadErr
	}
	d.LoadedURL = streamURL
	d.Released = false
	d.Loads++
	d.Pos = 0
	return nil
}

func (d *FakeDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.PlayErr != nil {
		return d.PlayErr
	}
	d.Playing = true
	return nil
}

func (d *FakeDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Playing = false
	return nil
}

func (d *FakeDevice) Seek(seconds float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SeekErr != nil {
		return d.SeekErr
	}
	d.Seeks = append(d.Seeks, seconds)
	d.Pos = seconds
	return nil
}

func (d *FakeDevice) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Pos
}

func (d *FakeDevice) Duration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Dur
}

func (d *FakeDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Released = true
	d.Playing = false
	d.LoadedURL = ""
}

// SetPosition scripts the playhead for sampler assertions.
func (d *FakeDevice) SetPosition(pos, dur float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Pos = pos
	d.Dur = dur
}

// Snapshot returns a copy of the device state.
func (d *FakeDevice) Snapshot() FakeDevice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return FakeDevice{
		LoadedURL: d.LoadedURL,
		Playing:   d.Playing,
		Released:  d.Released,
		Pos:       d.Pos,
		Dur:       d.Dur,
		Loads:     d.Loads,
		Seeks:     append([]float64(nil), d.Seeks...),
	}
}

// FakeRemote records now-playing pushes from the engine.
type FakeRemote struct {
	mu     sync.Mutex
	pushes []player.NowPlaying
}

func (r *FakeRemote) SetNowPlaying(info player.NowPlaying) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, info)
}

// Pushes returns a copy of all recorded now-playing snapshots.
func (r *FakeRemote) Pushes() []player.NowPlaying {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]player.NowPlaying(nil), r.pushes...)
}

// Last returns the most recent push, if any.
func (r *FakeRemote) Last() (player.NowPlaying, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pushes) == 0 {
		return player.NowPlaying{}, false
	}
	return r.pushes[len(r.pushes)-1], true
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
