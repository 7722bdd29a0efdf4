package session

import (
	"context"
	"log"
	"sync"

	"tableside/internal/api"
	"tableside/internal/domain"
	"tableside/internal/storage"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// AuthAPI is the slice of the REST client the session store depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResult, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

// Store is the single source of truth for who the current user is and for
// the bearer credential's lifecycle. Token persistence goes only through the
// shared TokenAccessor.
type Store struct {
	mu          sync.Mutex
	api         AuthAPI
	tokens      *storage.TokenAccessor
	state       State
	user        *domain.User
	initialized bool
	listeners   []func()
}

func NewStore(authAPI AuthAPI, tokens *storage.TokenAccessor) *Store {
	return &Store{api: authAPI, tokens: tokens, state: StateUninitialized}
}

// OnChange registers a listener invoked after every committed state change.
// This is the reactivity seam the UI hangs off; the store knows nothing
// about rendering.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateLoading
}

// Initialize restores the session from the persisted token. It runs the
// startup sequence exactly once; duplicate invocations return immediately,
// even while the first one is still in flight.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true

	_, ok, err := s.tokens.Token(ctx)
	if err != nil {
		log.Printf("[session] token storage unavailable: %v", err)
	}
	if !ok {
		// No token means no network call: straight to anonymous.
		s.state = StateAnonymous
		s.mu.Unlock()
		s.notify()
		return
	}

	s.state = StateLoading
	s.mu.Unlock()
	s.notify()

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		// A dead token at startup is recovered locally, never surfaced.
		log.Printf("[session] stored token rejected, starting anonymous: %v", err)
		if cerr := s.tokens.ClearToken(ctx); cerr != nil {
			log.Printf("[session] failed to clear token: %v", cerr)
		}
		s.commit(StateAnonymous, nil)
		return
	}
	s.commit(StateAuthenticated, user)
}

func (s *Store) Login(ctx context.Context, creds api.Credentials) error {
	result, err := s.api.Login(ctx, creds)
	if err != nil {
		return err
	}
	if err := s.tokens.SetToken(ctx, result.Token); err != nil {
		log.Printf("[session] failed to persist token: %v", err)
	}
	user := result.User
	s.commit(StateAuthenticated, &user)
	return nil
}

func (s *Store) Register(ctx context.Context, reg api.Registration) error {
	result, err := s.api.Register(ctx, reg)
	if err != nil {
		return err
	}
	if err := s.tokens.SetToken(ctx, result.Token); err != nil {
		log.Printf("[session] failed to persist token: %v", err)
	}
	user := result.User
	s.commit(StateAuthenticated, &user)
	return nil
}

// Logout clears local state unconditionally, before the server call is even
// attempted, so a dead network can never hold the clear hostage. The remote
// revocation is best-effort with the captured token.
func (s *Store) Logout(ctx context.Context) {
	token, _, err := s.tokens.Token(ctx)
	if err != nil {
		log.Printf("[session] token storage unavailable: %v", err)
	}

	if err := s.tokens.ClearToken(ctx); err != nil {
		log.Printf("[session] failed to clear token: %v", err)
	}
	s.commit(StateAnonymous, nil)

	if err := s.api.Logout(ctx, token); err != nil {
		log.Printf("[session] remote logout failed (ignored): %v", err)
	}
}

// RefreshUser re-fetches the profile with the held token. Failure demotes to
// anonymous and is re-raised to the caller.
func (s *Store) RefreshUser(ctx context.Context) error {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		if cerr := s.tokens.ClearToken(ctx); cerr != nil {
			log.Printf("[session] failed to clear token: %v", cerr)
		}
		s.commit(StateAnonymous, nil)
		return err
	}
	s.commit(StateAuthenticated, user)
	return nil
}

// HandleAuthExpired is the global-logout hook the API client fires when a
// silent refresh fails. The client has already cleared the token.
func (s *Store) HandleAuthExpired() {
	log.Printf("[session] session expired, forcing logout")
	s.commit(StateAnonymous, nil)
}

func (s *Store) commit(state State, user *domain.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
