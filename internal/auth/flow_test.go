package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/scx/internal/auth"
	"github.com/desertthunder/scx/internal/shared"
	scxtest "github.com/desertthunder/scx/internal/testing"
)

// scriptedConsenter resolves the consent step with whatever the script
// returns, handing it the presented authorization URL.
type scriptedConsenter struct {
	script func(authURL string) (string, error)
}

func (c scriptedConsenter) Present(ctx context.Context, authURL, callbackScheme string) (string, error) {
	return c.script(authURL)
}

// approve builds a consenter that redirects back with the code and the state
// nonce carried by the authorization URL.
func approve(code string) scriptedConsenter {
	return scriptedConsenter{script: func(authURL string) (string, error) {
		parsed, err := url.Parse(authURL)
		if err != nil {
			return "", err
		}
		state := parsed.Query().Get("state")
		return fmt.Sprintf("http://127.0.0.1:3000/callback?code=%s&state=%s", code, state), nil
	}}
}

func flowConfig(tokenURL string) shared.SoundCloudConfig {
	return shared.SoundCloudConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://127.0.0.1:3000/callback",
		AuthURL:      "https://soundcloud.example/connect",
		TokenURL:     tokenURL,
	}
}

func newFlow(t *testing.T, conf shared.SoundCloudConfig, consenter auth.Consenter, store auth.TokenStore) (*auth.Flow, *auth.Session) {
	t.Helper()
	session := auth.NewSession(store, nil)
	flow, err := auth.NewFlow(conf, consenter, session, store, nil)
	if err != nil {
		t.Fatalf("failed to build flow: %v", err)
	}
	return flow, session
}

func TestNewFlow(t *testing.T) {
	store := &scxtest.MemoryTokenStore{}
	session := auth.NewSession(store, nil)

	t.Run("rejects blank client identity", func(t *testing.T) {
		conf := flowConfig("https://soundcloud.example/oauth2/token")
		conf.ClientID = ""

		if _, err := auth.NewFlow(conf, approve("c"), session, store, nil); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("got %v, want ErrMissingCredentials", err)
		}
	})

	t.Run("rejects blank redirect", func(t *testing.T) {
		conf := flowConfig("https://soundcloud.example/oauth2/token")
		conf.RedirectURI = ""

		if _, err := auth.NewFlow(conf, approve("c"), session, store, nil); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("got %v, want ErrMissingCredentials", err)
		}
	})
}

func TestFlowAuthenticate(t *testing.T) {
	t.Run("success persists token and commits session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse token request: %v", err)
			}
			if got := r.FormValue("code"); got != "auth-code" {
				t.Errorf("token request code = %q, want %q", got, "auth-code")
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "tok-xyz", "token_type": "bearer"}`)
		}))
		defer server.Close()

		store := &scxtest.MemoryTokenStore{}
		flow, session := newFlow(t, flowConfig(server.URL), approve("auth-code"), store)

		token, err := flow.Authenticate(context.Background())
		if err != nil {
			t.Fatalf("authenticate failed: %v", err)
		}
		if token != "tok-xyz" {
			t.Errorf("token = %q, want %q", token, "tok-xyz")
		}

		if snap := session.State(); snap.State != auth.StateAuthenticated {
			t.Errorf("session state = %v, want authenticated", snap.State)
		}
		persisted, err := store.Get()
		if err != nil || persisted != "tok-xyz" {
			t.Errorf("persisted token = (%q, %v), want (tok-xyz, nil)", persisted, err)
		}
	})

	t.Run("cancelled consent fails the session", func(t *testing.T) {
		consenter := scriptedConsenter{script: func(string) (string, error) {
			return "", auth.ErrCancelled
		}}
		store := &scxtest.MemoryTokenStore{}
		flow, session := newFlow(t, flowConfig("https://soundcloud.example/oauth2/token"), consenter, store)

		_, err := flow.Authenticate(context.Background())
		if !errors.Is(err, auth.ErrCancelled) {
			t.Errorf("got %v, want ErrCancelled", err)
		}
		if snap := session.State(); snap.State != auth.StateFailed {
			t.Errorf("session state = %v, want failed", snap.State)
		}
	})

	t.Run("callback without a code", func(t *testing.T) {
		consenter := scriptedConsenter{script: func(authURL string) (string, error) {
			parsed, _ := url.Parse(authURL)
			return "http://127.0.0.1:3000/callback?state=" + parsed.Query().Get("state"), nil
		}}
		store := &scxtest.MemoryTokenStore{}
		flow, _ := newFlow(t, flowConfig("https://soundcloud.example/oauth2/token"), consenter, store)

		if _, err := flow.Authenticate(context.Background()); !errors.Is(err, auth.ErrMissingCode) {
			t.Errorf("got %v, want ErrMissingCode", err)
		}
	})

	t.Run("state mismatch is rejected before exchange", func(t *testing.T) {
		consenter := scriptedConsenter{script: func(string) (string, error) {
			return "http://127.0.0.1:3000/callback?code=auth-code&state=forged", nil
		}}
		store := &scxtest.MemoryTokenStore{}
		flow, _ := newFlow(t, flowConfig("https://soundcloud.example/oauth2/token"), consenter, store)

		if _, err := flow.Authenticate(context.Background()); !errors.Is(err, auth.ErrStateMismatch) {
			t.Errorf("got %v, want ErrStateMismatch", err)
		}
	})

	t.Run("token endpoint rejection maps to malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		store := &scxtest.MemoryTokenStore{}
		flow, _ := newFlow(t, flowConfig(server.URL), approve("auth-code"), store)

		if _, err := flow.Authenticate(context.Background()); !errors.Is(err, auth.ErrMalformedResponse) {
			t.Errorf("got %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("empty access token maps to malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "", "token_type": "bearer"}`)
		}))
		defer server.Close()

		store := &scxtest.MemoryTokenStore{}
		flow, _ := newFlow(t, flowConfig(server.URL), approve("auth-code"), store)

		if _, err := flow.Authenticate(context.Background()); !errors.Is(err, auth.ErrMalformedResponse) {
			t.Errorf("got %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("unreachable token endpoint maps to transport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // connection refused from here on

		store := &scxtest.MemoryTokenStore{}
		flow, _ := newFlow(t, flowConfig(server.URL), approve("auth-code"), store)

		if _, err := flow.Authenticate(context.Background()); !errors.Is(err, auth.ErrTransport) {
			t.Errorf("got %v, want ErrTransport", err)
		}
	})

	t.Run("store failure fails the flow", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "tok-xyz", "token_type": "bearer"}`)
		}))
		defer server.Close()

		store := &scxtest.MemoryTokenStore{PutErr: errors.New("disk full")}
		flow, session := newFlow(t, flowConfig(server.URL), approve("auth-code"), store)

		if _, err := flow.Authenticate(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("got %v, want ErrAuthFailed", err)
		}
		if snap := session.State(); snap.State != auth.StateFailed {
			t.Errorf("session state = %v, want failed", snap.State)
		}
	})
}
