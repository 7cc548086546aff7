package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
)

const defaultBaseURL = "https://api.soundcloud.com"

// Pipeline errors. Wrapped causes are attached with fmt.Errorf("%w: ...") so
// callers classify with errors.Is.
var (
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrNotFound     = fmt.Errorf("not found")
	ErrServer       = fmt.Errorf("server error")
	ErrDecoding     = fmt.Errorf("failed to decode response")
	ErrNetwork      = fmt.Errorf("network failure")
	ErrUnknown      = fmt.Errorf("unknown API failure")
)

// CredentialSource supplies the latest committed bearer credential. The
// second return is false when no credential is present.
type CredentialSource interface {
	Credential() (string, bool)
}

// Client performs authenticated GET requests against the remote API.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a pipeline client. baseURL defaults to the public API
// endpoint and client to [http.DefaultClient].
func NewClient(baseURL string, creds CredentialSource, client *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: client,
		logger:     logger,
	}
}

// perform issues a single authenticated GET against endpoint and decodes the
// body into T. With no credential present it fails immediately, before any
// HTTP request is made.
func perform[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (T, error) {
	var result T

	token, ok := c.creds.Credential()
	if !ok {
		return result, fmt.Errorf("%w: no credential present", ErrUnauthorized)
	}

	params := url.Values{}
	for key, values := range query {
		params[key] = values
	}
	params.Set("oauth_token", token)

	fullURL := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return result, fmt.Errorf("%w: %v", ErrDecoding, err)
		}
		return result, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return result, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return result, ErrNotFound
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return result, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	default:
		return result, fmt.Errorf("%w: status %d", ErrUnknown, resp.StatusCode)
	}
}

// SearchTracks searches tracks matching query, capped at limit results.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	return perform[[]models.Track](ctx, c, "/tracks", params)
}

// GetTrackDetails fetches a single track by id.
func (c *Client) GetTrackDetails(ctx context.Context, id int64) (*models.Track, error) {
	track, err := perform[models.Track](ctx, c, fmt.Sprintf("/tracks/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// GetUserProfile fetches a user profile by id.
func (c *Client) GetUserProfile(ctx context.Context, id int64) (*models.User, error) {
	user, err := perform[models.User](ctx, c, fmt.Sprintf("/users/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserTracks lists a user's tracks, capped at limit results.
func (c *Client) GetUserTracks(ctx context.Context, userID int64, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	return perform[[]models.Track](ctx, c, fmt.Sprintf("/users/%d/tracks", userID), params)
}
