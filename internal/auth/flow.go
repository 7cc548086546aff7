package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/shared"
	"golang.org/x/oauth2"
)

// Authorization flow errors, wrapped into whatever each step reports.
var (
	ErrCancelled         = fmt.Errorf("authorization cancelled")
	ErrMissingCode       = fmt.Errorf("callback missing authorization code")
	ErrStateMismatch     = fmt.Errorf("callback state mismatch")
	ErrMalformedResponse = fmt.Errorf("malformed token response")
	ErrTransport         = fmt.Errorf("token exchange transport failure")
)

// Consenter is the interactive-consent capability: it presents the
// authorization URL to the user and resolves with the full callback URL once
// the service redirects back. Implementations return [ErrCancelled] when the
// user abandons the flow.
type Consenter interface {
	Present(ctx context.Context, authURL, callbackScheme string) (string, error)
}

// Flow drives the OAuth2 authorization-code exchange. A successful run
// persists the token and commits the session; any failure moves the session
// to failed. The flow never retries; retry is a caller decision.
type Flow struct {
	config    *oauth2.Config
	consenter Consenter
	session   *Session
	store     TokenStore
	logger    *log.Logger
}

// NewFlow builds a flow from the configured client identity. The client id
// and secret are operator-provisioned; blank values fail fast rather than
// falling back to a default.
func NewFlow(conf shared.SoundCloudConfig, consenter Consenter, session *Session, store TokenStore, logger *log.Logger) (*Flow, error) {
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret must be configured", shared.ErrMissingCredentials)
	}
	if conf.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect_uri must be configured", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		RedirectURL:  conf.RedirectURI,
		Scopes:       []string{"non-expiring"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  conf.AuthURL,
			TokenURL: conf.TokenURL,
		},
	}

	return &Flow{
		config:    config,
		consenter: consenter,
		session:   session,
		store:     store,
		logger:    logger,
	}, nil
}

// Authenticate runs the full authorization-code flow and returns the bearer
// token. The session ends up authenticated on success and failed otherwise;
// it is never left mid-flight.
func (f *Flow) Authenticate(ctx context.Context) (string, error) {
	if err := f.session.Begin(); err != nil {
		return "", err
	}

	token, err := f.run(ctx)
	if err != nil {
		f.session.Fail(err)
		return "", err
	}

	f.session.Complete(token)
	f.logger.Info("authorization complete")
	return token, nil
}

func (f *Flow) run(ctx context.Context) (string, error) {
	state := shared.GenerateState()
	authURL := f.config.AuthCodeURL(state)

	redirect, err := url.Parse(f.config.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect URI: %v", shared.ErrInvalidConfig, err)
	}

	callbackURL, err := f.consenter.Present(ctx, authURL, redirect.Scheme)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled) {
			return "", fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		return "", fmt.Errorf("consent step failed: %w", err)
	}

	code, err := extractCode(callbackURL, state)
	if err != nil {
		return "", err
	}

	token, err := f.exchange(ctx, code)
	if err != nil {
		return "", err
	}

	if err := f.store.Put(token); err != nil {
		return "", fmt.Errorf("%w: could not persist token: %v", shared.ErrAuthFailed, err)
	}

	return token, nil
}

// extractCode pulls the authorization code out of the callback URL, checking
// the state nonce first.
func extractCode(callbackURL, expectedState string) (string, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable callback URL: %v", ErrMissingCode, err)
	}

	query := parsed.Query()
	if state := query.Get("state"); state != expectedState {
		return "", fmt.Errorf("%w: got %q", ErrStateMismatch, state)
	}

	code := query.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}

// exchange swaps the authorization code for a bearer token via the
// form-encoded token endpoint.
func (f *Flow) exchange(ctx context.Context, code string) (string, error) {
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The endpoint answered but rejected the exchange or returned an
			// undecodable body.
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrMalformedResponse)
	}
	return token.AccessToken, nil
}
