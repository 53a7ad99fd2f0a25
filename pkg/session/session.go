package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"educycle_backend/pkg/client"

	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by RefreshCredits outside the Authenticated state.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// ErrStopped is returned when the event loop is no longer running.
var ErrStopped = errors.New("session: event loop stopped")

const defaultProfileTimeout = 10 * time.Second

var _ client.TokenSource = (*Session)(nil)

// ProfileFetcher reads the caller's backend profile. *client.Client satisfies it.
type ProfileFetcher interface {
	Me(ctx context.Context) (*client.Profile, error)
}

type event struct {
	apply func(ctx context.Context) error
	done  chan error
}

// Session is the process-wide sign-in state. Create one with New, start Run in its
// own goroutine and pass the pointer around.
type Session struct {
	profiles       ProfileFetcher
	logger         *zap.Logger
	profileTimeout time.Duration

	events  chan event
	stopped chan struct{}

	mu     sync.RWMutex
	state  State
	subs   map[int]func(State)
	nextID int
}

type Option func(*Session)

// WithProfileTimeout bounds each profile fetch.
func WithProfileTimeout(d time.Duration) Option {
	return func(s *Session) { s.profileTimeout = d }
}

// New returns a session in the Loading state. profiles is usually an API client
// built with WithTokenSource(session); SetProfileFetcher covers that cycle.
func New(profiles ProfileFetcher, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		profiles:       profiles,
		logger:         logger,
		profileTimeout: defaultProfileTimeout,
		events:         make(chan event),
		stopped:        make(chan struct{}),
		state:          Loading{},
		subs:           make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetProfileFetcher must be called before Run.
func (s *Session) SetProfileFetcher(p ProfileFetcher) { s.profiles = p }

// Run processes identity events until ctx is done. Only one Run may be active.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			ev.done <- ev.apply(ctx)
		}
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every later state change. fn runs on the event loop
// and must not call back into IdentityChanged or RefreshCredits.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Token implements client.TokenSource. It asks the current identity every time and
// returns an empty token when nobody is signed in.
func (s *Session) Token(ctx context.Context) (string, error) {
	u := UserOf(s.State())
	if u == nil {
		return "", nil
	}
	return u.IDToken(ctx)
}

// IdentityChanged reports a sign-in (u != nil) or sign-out (u == nil). It returns once
// the event has been handled, including the profile fetch of a sign-in.
func (s *Session) IdentityChanged(ctx context.Context, u User) error {
	if u == nil {
		return s.submit(ctx, func(context.Context) error {
			s.set(Anonymous{})
			return nil
		})
	}
	return s.submit(ctx, func(loopCtx context.Context) error {
		s.set(Loading{User: u})
		s.set(s.loadProfile(loopCtx, u))
		return nil
	})
}

// RefreshCredits re-reads the profile and updates only the credit balance.
func (s *Session) RefreshCredits(ctx context.Context) (int, error) {
	if _, ok := s.State().(Authenticated); !ok {
		return 0, ErrNotAuthenticated
	}
	p, err := s.profiles.Me(ctx)
	if err != nil {
		return 0, err
	}
	var credits int
	err = s.submit(ctx, func(context.Context) error {
		cur, ok := s.State().(Authenticated)
		if !ok || cur.User.UID() != p.UID {
			return ErrNotAuthenticated
		}
		cur.Profile.EduCredits = p.EduCredits
		credits = p.EduCredits
		s.set(cur)
		return nil
	})
	return credits, err
}

func (s *Session) loadProfile(ctx context.Context, u User) State {
	if s.profiles == nil {
		return Roleless{User: u, Err: errors.New("session: no profile fetcher")}
	}
	ctx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()
	p, err := s.profiles.Me(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch profile after sign-in", zap.String("uid", u.UID()), zap.Error(err))
		return Roleless{User: u, Err: err}
	}
	return Authenticated{User: u, Profile: *p}
}

func (s *Session) submit(ctx context.Context, apply func(context.Context) error) error {
	ev := event{apply: apply, done: make(chan error, 1)}
	select {
	case s.events <- ev:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ev.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) set(st State) {
	s.mu.Lock()
	s.state = st
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}
