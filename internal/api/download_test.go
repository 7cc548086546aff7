package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/mix.mp3":
			fmt.Fprint(w, "audio-bytes")
		case "/media/missing.mp3":
			http.NotFound(w, r)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)

	t.Run("writes the file into the destination directory", func(t *testing.T) {
		dir := t.TempDir()

		dest, err := client.DownloadTrack(context.Background(), server.URL+"/media/mix.mp3", dir)
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		if dest != filepath.Join(dir, "mix.mp3") {
			t.Errorf("dest = %q, want %q", dest, filepath.Join(dir, "mix.mp3"))
		}

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("failed to read downloaded file: %v", err)
		}
		if string(data) != "audio-bytes" {
			t.Errorf("file content = %q, want %q", data, "audio-bytes")
		}
	})

	t.Run("replaces a prior file at the destination", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "mix.mp3")
		if err := os.WriteFile(dest, []byte("stale"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := client.DownloadTrack(context.Background(), server.URL+"/media/mix.mp3", dir); err != nil {
			t.Fatalf("download failed: %v", err)
		}

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "audio-bytes" {
			t.Errorf("file content = %q, want %q", data, "audio-bytes")
		}
	})

	t.Run("creates the destination directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "downloads", "music")

		if _, err := client.DownloadTrack(context.Background(), server.URL+"/media/mix.mp3", dir); err != nil {
			t.Fatalf("download failed: %v", err)
		}
	})

	t.Run("no staging file survives a failure", func(t *testing.T) {
		dir := t.TempDir()

		_, err := client.DownloadTrack(context.Background(), server.URL+"/media/missing.mp3", dir)
		if !errors.Is(err, ErrNetwork) {
			t.Errorf("got %v, want ErrNetwork", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("destination dir has %d leftover entries, want 0", len(entries))
		}
	})

	t.Run("rejects a URL without a file name", func(t *testing.T) {
		if _, err := client.DownloadTrack(context.Background(), server.URL+"/", t.TempDir()); !errors.Is(err, ErrNetwork) {
			t.Errorf("got %v, want ErrNetwork", err)
		}
	})
}
