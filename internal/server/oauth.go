package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/auth"
	"github.com/desertthunder/scx/internal/shared"
)

// CallbackResult contains the outcome of an OAuth authorization redirect.
type CallbackResult struct {
	CallbackURL string
	err         error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the OAuth2 redirect for the authorization code flow.
// Implements the [Handler] interface for registration with a [Router].
//
// The handler captures the full callback URL; extracting and exchanging the
// code is the authorization flow's job.
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state parameter, captures the callback URL, and sends the
// result through the result channel. Only the first callback is processed.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if state := query.Get("state"); state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if query.Get("code") == "" {
		errParam := query.Get("error")
		errDesc := query.Get("error_description")
		if errParam == "access_denied" {
			h.Send(CallbackResult{err: auth.ErrCancelled})
		} else {
			h.Send(CallbackResult{err: fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)})
		}
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{CallbackURL: r.URL.String()})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #ff5500; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// The channel receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// LoopbackConsenter implements [auth.Consenter] by serving the redirect
// target on a loopback address and opening the system browser.
type LoopbackConsenter struct {
	addr    string
	logger  *log.Logger
	openURL func(string) error
}

// NewLoopbackConsenter creates a consenter bound to host:port.
func NewLoopbackConsenter(host string, port int, logger *log.Logger) *LoopbackConsenter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LoopbackConsenter{
		addr:    fmt.Sprintf("%s:%d", host, port),
		logger:  logger,
		openURL: shared.OpenBrowser,
	}
}

// Present serves the callback route, opens the browser at authURL, and waits
// for the redirect or context cancellation. Returns the full callback URL.
// The expected state nonce is read from the authorization URL itself.
func (c *LoopbackConsenter) Present(ctx context.Context, authURL, callbackScheme string) (string, error) {
	if callbackScheme != "http" {
		return "", fmt.Errorf("%w: loopback consent requires an http redirect, got %q", shared.ErrInvalidConfig, callbackScheme)
	}

	parsed, err := url.Parse(authURL)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable authorization URL: %v", shared.ErrInvalidConfig, err)
	}

	handler := NewCallbackHandler(parsed.Query().Get("state"))
	router := NewBasicRouter()
	router.Use(RequestLogger(c.logger))
	router.Handler(handler)

	listener, err := net.Listen("tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", c.addr, err)
	}

	srv := &http.Server{Handler: router}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			c.logger.Warn("callback server error", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := c.openURL(authURL); err != nil {
		// Not fatal: the user can still open the URL manually.
		c.logger.Warn("failed to open browser", "err", err)
		c.logger.Info("open this URL to continue", "url", authURL)
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", auth.ErrCancelled, ctx.Err())
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return "", err
		}
		return result.CallbackURL, nil
	}
}
