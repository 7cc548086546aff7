package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// NowPlaying is the point-in-time summary pushed to the remote-control
// surface on every sample. Artwork arrives in a follow-up push once its
// asynchronous fetch completes.
type NowPlaying struct {
	Title    string
	Artist   string
	Duration float64 // seconds
	Elapsed  float64 // seconds
	Rate     float64 // 1.0 while playing, 0.0 otherwise
	Artwork  []byte
}

// RemoteSurface is the system-level remote-control capability. It receives
// now-playing snapshots; the commands it emits are delivered back to the
// engine via [Engine.HandleCommand].
type RemoteSurface interface {
	SetNowPlaying(info NowPlaying)
}

// Command is a remote-control command, equivalent to the corresponding
// engine call.
type Command int

const (
	CommandPlay Command = iota
	CommandPause
	CommandSeekForward  // +15s
	CommandSeekBackward // -15s
)

const remoteSeekOffset = 15.0

func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandSeekForward:
		return "seek-forward"
	case CommandSeekBackward:
		return "seek-backward"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// fetchArtwork downloads artwork bytes for merging into a now-playing push.
func fetchArtwork(ctx context.Context, client *http.Client, artworkURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create artwork request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artwork fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork body: %w", err)
	}
	return data, nil
}
