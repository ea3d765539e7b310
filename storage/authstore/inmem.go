package authstore

import (
	"context"
	"sync"
	"time"

	"github.com/dams-project/backend/core/auth"
)

// In-memory stores for dev and tests. Expired entries are reaped lazily on
// read and periodically by an optional janitor.

type sessionEntry struct {
	principal auth.Principal
	expiresAt time.Time
}

type InmemSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

var _ auth.SessionStore = (*InmemSessionStore)(nil)

func NewInmemSessionStore() *InmemSessionStore {
	return &InmemSessionStore{sessions: make(map[string]sessionEntry)}
}

func (s *InmemSessionStore) Save(_ context.Context, token string, p auth.Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sessionEntry{principal: p, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InmemSessionStore) Get(_ context.Context, token string) (auth.Principal, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return auth.Principal{}, auth.ErrNoSession
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return auth.Principal{}, auth.ErrNoSession
	}
	return entry.principal, nil
}

func (s *InmemSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Sweep removes expired sessions every interval until ctx is done.
func (s *InmemSessionStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, entry := range s.sessions {
				if now.After(entry.expiresAt) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		}
	}
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

type InmemOTPStore struct {
	mu    sync.Mutex
	codes map[string]otpEntry
}

var _ auth.OTPStore = (*InmemOTPStore)(nil)

func NewInmemOTPStore() *InmemOTPStore {
	return &InmemOTPStore{codes: make(map[string]otpEntry)}
}

func (s *InmemOTPStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = otpEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InmemOTPStore) Take(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[email]
	if !ok {
		return "", nil
	}
	delete(s.codes, email)
	if time.Now().After(entry.expiresAt) {
		return "", nil
	}
	return entry.code, nil
}
