package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// staticCreds is a fixed-credential [CredentialSource].
type staticCreds struct {
	token   string
	present bool
}

func (s staticCreds) Credential() (string, bool) {
	return s.token, s.present
}

func TestClientAuthentication(t *testing.T) {
	t.Run("no credential short-circuits without a request", func(t *testing.T) {
		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer server.Close()

		client := NewClient(server.URL, staticCreds{}, nil, nil)

		_, err := client.SearchTracks(context.Background(), "ambient", 10)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got %v, want ErrUnauthorized", err)
		}
		if n := requests.Load(); n != 0 {
			t.Errorf("server saw %d requests, want 0", n)
		}
	})

	t.Run("credential travels as a query parameter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("oauth_token"); got != "tok-123" {
				t.Errorf("oauth_token = %q, want %q", got, "tok-123")
			}
			fmt.Fprint(w, "[]")
		}))
		defer server.Close()

		client := NewClient(server.URL, staticCreds{token: "tok-123", present: true}, nil, nil)

		if _, err := client.SearchTracks(context.Background(), "ambient", 10); err != nil {
			t.Fatalf("search failed: %v", err)
		}
	})
}

func TestSearchTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks" {
			t.Errorf("path = %q, want /tracks", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "deep house" {
			t.Errorf("q = %q, want %q", got, "deep house")
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("limit = %q, want %q", got, "3")
		}
		fmt.Fprint(w, `[
			{"id": 1, "title": "One", "permalink_url": "https://example.com/1"},
			{"id": 2, "title": "Two", "permalink_url": "https://example.com/2"},
			{"id": 3, "title": "Three", "permalink_url": "https://example.com/3"}
		]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)

	tracks, err := client.SearchTracks(context.Background(), "deep house", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}
	for i, want := range []string{"One", "Two", "Three"} {
		if tracks[i].Title != want {
			t.Errorf("track %d title = %q, want %q", i, tracks[i].Title, want)
		}
	}
}

func TestSearchTracksDefaultLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit = %q, want %q", got, "20")
		}
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)
	if _, err := client.SearchTracks(context.Background(), "x", 0); err != nil {
		t.Fatal(err)
	}
}

func TestGetTrackDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/42" {
			t.Errorf("path = %q, want /tracks/42", r.URL.Path)
		}
		fmt.Fprint(w, `{"id": 42, "title": "Answer", "duration": 180000, "permalink_url": "https://example.com/42"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)

	track, err := client.GetTrackDetails(context.Background(), 42)
	if err != nil {
		t.Fatalf("get track failed: %v", err)
	}
	if track.ID != 42 || track.Title != "Answer" {
		t.Errorf("got track %+v", track)
	}
}

func TestGetUserProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7" {
			t.Errorf("path = %q, want /users/7", r.URL.Path)
		}
		fmt.Fprint(w, `{"id": 7, "username": "dj", "permalink_url": "https://example.com/dj"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)

	user, err := client.GetUserProfile(context.Background(), 7)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if user.Username != "dj" {
		t.Errorf("username = %q, want %q", user.Username, "dj")
	}
}

func TestGetUserTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7/tracks" {
			t.Errorf("path = %q, want /users/7/tracks", r.URL.Path)
		}
		fmt.Fprint(w, `[{"id": 1, "title": "Set", "permalink_url": "https://example.com/1"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)

	tracks, err := client.GetUserTracks(context.Background(), 7, 5)
	if err != nil {
		t.Fatalf("get user tracks failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Errorf("got %d tracks, want 1", len(tracks))
	}
}

func TestErrorClassification(t *testing.T) {
	var status atomic.Int64
	var body atomic.Value
	body.Store("")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		fmt.Fprint(w, body.Load().(string))
	}))
	defer server.Close()

	client := NewClient(server.URL, staticCreds{token: "tok", present: true}, nil, nil)

	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"401 maps to unauthorized", http.StatusUnauthorized, `{"error": "invalid token"}`, ErrUnauthorized},
		{"404 maps to not found", http.StatusNotFound, `{"error": "no such track"}`, ErrNotFound},
		{"500 maps to server", http.StatusInternalServerError, "boom", ErrServer},
		{"503 maps to server", http.StatusServiceUnavailable, "maintenance", ErrServer},
		{"418 maps to unknown", http.StatusTeapot, "", ErrUnknown},
		{"2xx with a broken body maps to decoding", http.StatusOK, `{"id": `, ErrDecoding},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status.Store(int64(tc.status))
			body.Store(tc.body)

			_, err := client.GetTrackDetails(context.Background(), 1)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	t.Run("connection failure maps to network", func(t *testing.T) {
		closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		closed.Close()

		dead := NewClient(closed.URL, staticCreds{token: "tok", present: true}, nil, nil)
		if _, err := dead.GetTrackDetails(context.Background(), 1); !errors.Is(err, ErrNetwork) {
			t.Errorf("got %v, want ErrNetwork", err)
		}
	})
}
