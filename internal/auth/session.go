package auth

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/shared"
)

// State is the discrete phase of the authentication lifecycle.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a point-in-time view of the session published to observers.
type Snapshot struct {
	State  State
	Reason string // failure reason, set only when State is StateFailed
}

// Session is the single owner of the bearer credential and serializes all
// lifecycle transitions. Invariant: the credential is non-empty iff the state
// is StateAuthenticated.
type Session struct {
	mu         sync.Mutex
	state      State
	reason     string
	credential string
	store      TokenStore
	logger     *log.Logger
	subs       []chan Snapshot
}

// NewSession creates a session in the unauthenticated state.
func NewSession(store TokenStore, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Session{store: store, logger: logger}
}

// Restore loads a previously persisted credential and, when one exists,
// moves the session straight to authenticated. Absence is not an error.
func (s *Session) Restore() error {
	token, err := s.store.Get()
	if err != nil {
		if err == ErrTokenNotFound {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.credential = token
	s.reason = ""
	s.mu.Unlock()
	s.publish()
	return nil
}

// Begin marks the start of an authorization flow. Allowed from the
// unauthenticated and failed states only; a flow already in progress or an
// authenticated session rejects the transition.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateUnauthenticated, StateFailed:
		s.state = StateAuthenticating
		s.reason = ""
	case StateAuthenticating:
		return fmt.Errorf("%w: authorization already in progress", shared.ErrInvalidInput)
	case StateAuthenticated:
		return fmt.Errorf("%w: already authenticated, sign out first", shared.ErrInvalidInput)
	}

	s.publishLocked()
	return nil
}

// Complete commits a successful authorization flow.
func (s *Session) Complete(token string) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.credential = token
	s.reason = ""
	s.mu.Unlock()
	s.publish()
}

// Fail records a failed authorization flow. The session never stays in the
// authenticating state after a flow returns.
func (s *Session) Fail(reason error) {
	s.mu.Lock()
	s.state = StateFailed
	s.credential = ""
	if reason != nil {
		s.reason = reason.Error()
	}
	s.mu.Unlock()
	s.publish()
}

// SignOut clears the credential and transitions to unauthenticated. The
// persisted token is deleted unconditionally; a store failure is logged and
// does not block the in-memory transition. No network I/O happens here.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.state = StateUnauthenticated
	s.credential = ""
	s.reason = ""
	s.mu.Unlock()

	if err := s.store.Delete(); err != nil {
		s.logger.Warn("failed to delete persisted token", "err", err)
	}
	s.publish()
}

// HandleUnauthorized purges the credential after the pipeline observes a 401.
// A no-op unless the session is currently authenticated.
func (s *Session) HandleUnauthorized() {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return
	}
	s.state = StateUnauthenticated
	s.credential = ""
	s.mu.Unlock()

	s.logger.Warn("credential rejected by service, signing out")
	if err := s.store.Delete(); err != nil {
		s.logger.Warn("failed to delete persisted token", "err", err)
	}
	s.publish()
}

// Credential returns the latest committed credential. The second return is
// false when the session is not authenticated.
func (s *Session) Credential() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential, s.state == StateAuthenticated
}

// State returns the current snapshot.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Reason: s.reason}
}

// Subscribe returns a channel receiving state snapshots. Snapshots are
// dropped rather than blocking when a subscriber falls behind.
func (s *Session) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Session) publish() {
	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()
}

func (s *Session) publishLocked() {
	snap := Snapshot{State: s.state, Reason: s.reason}
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
