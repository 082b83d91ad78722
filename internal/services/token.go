package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pldiff/internal/shared"
	"golang.org/x/oauth2"
)

// TokenStore holds the current credential and its single pending refresh.
//
// Readers never block on a refresh: [TokenStore.Current] loads the credential atomically,
// so a request always sees either the previous or the next token in full.
type TokenStore struct {
	current atomic.Pointer[oauth2.Token]

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	refresh    RefreshFunc
	stopped    bool

	logger *log.Logger
}

// NewTokenStore creates an empty store.
func NewTokenStore(logger *log.Logger) *TokenStore {
	return &TokenStore{logger: shared.WithLogger(logger, "component", "tokens")}
}

// OnExpire registers the routine run when the current credential expires.
func (s *TokenStore) OnExpire(fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = fn
}

// Current returns the credential in effect, if any.
func (s *TokenStore) Current() (*oauth2.Token, bool) {
	tok := s.current.Load()
	return tok, tok != nil
}

// Token implements [oauth2.TokenSource] over the current credential.
func (s *TokenStore) Token() (*oauth2.Token, error) {
	tok, ok := s.Current()
	if !ok {
		return nil, shared.ErrNoCredential
	}
	return tok, nil
}

// Set replaces the current credential and reschedules the refresh.
//
// Any previously armed refresh is cancelled; at most one refresh is pending afterwards.
// A non-positive ttl stores the credential without scheduling a refresh.
func (s *TokenStore) Set(tok *oauth2.Token, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.current.Store(tok)

	if s.stopped || s.refresh == nil || ttl <= 0 {
		return
	}

	gen := s.generation
	s.timer = time.AfterFunc(ttl, func() { s.fire(gen) })
	s.logger.Debug("refresh scheduled", "in", ttl)
}

// Pending reports whether a refresh is armed.
func (s *TokenStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels the pending refresh and disables future scheduling. The current credential stays readable.
func (s *TokenStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *TokenStore) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	refresh := s.refresh
	s.mu.Unlock()

	if refresh == nil {
		return
	}

	s.logger.Debug("credential expired, refreshing")
	if err := refresh(context.Background()); err != nil {
		s.logger.Error("background refresh failed", "error", err)
	}
}
