package auth

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/domain/shared"
)

const sweepInterval = time.Minute

// Session binds an opaque token to exactly one account for a bounded lifetime.
type Session struct {
	Token         string    `json:"token"`
	AccountNumber string    `json:"account_number"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// SessionManager issues and validates in-memory sessions. Sessions do not
// survive a process restart; clients re-authenticate.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	logger   *slog.Logger
	done     chan struct{}
}

// NewSessionManager creates a session manager and starts the background sweep
// that evicts expired sessions. Call Close on shutdown.
func NewSessionManager(logger *slog.Logger, ttl time.Duration) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Issue creates a session bound to the account and returns it.
func (m *SessionManager) Issue(accountNumber string) Session {
	session := Session{
		Token:         uuid.NewString(),
		AccountNumber: accountNumber,
		ExpiresAt:     time.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	return session
}

// Validate resolves a token to its bound account number. Expired or unknown
// tokens surface as ErrInvalidCredentials.
func (m *SessionManager) Validate(token string) (string, error) {
	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return "", shared.ErrInvalidCredentials
	}
	if time.Now().After(session.ExpiresAt) {
		m.Revoke(token)
		return "", shared.ErrInvalidCredentials
	}

	return session.AccountNumber, nil
}

// Revoke removes a single session.
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// RevokeAccount removes every session bound to the account. Used when the
// password changes or the account is deactivated.
func (m *SessionManager) RevokeAccount(accountNumber string) {
	m.mu.Lock()
	for token, session := range m.sessions {
		if session.AccountNumber == accountNumber {
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
}

// Close stops the background sweep.
func (m *SessionManager) Close() {
	close(m.done)
}

func (m *SessionManager) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for token, session := range m.sessions {
				if now.After(session.ExpiresAt) {
					delete(m.sessions, token)
				}
			}
			m.mu.Unlock()
		}
	}
}
