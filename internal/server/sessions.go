package server

import (
	"context"
	"log/slog"
	"sync"

	"reverie/internal/session"
)

// sessionManager owns one session per signed-in user. Sessions are created
// lazily on the first authenticated request and torn down at logout.
type sessionManager struct {
	mu       sync.Mutex
	gateway  session.Gateway
	logger   *slog.Logger
	sessions map[uint]*session.Session
}

func newSessionManager(gateway session.Gateway, logger *slog.Logger) *sessionManager {
	return &sessionManager{
		gateway:  gateway,
		logger:   logger,
		sessions: make(map[uint]*session.Session),
	}
}

// acquire returns the user's session, starting one if none exists yet.
func (m *sessionManager) acquire(ctx context.Context, userID uint) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		return sess, nil
	}

	sess := session.New(userID, m.gateway, m.logger)
	if err := sess.Start(ctx); err != nil {
		return nil, err
	}
	m.sessions[userID] = sess
	return sess, nil
}

// end tears down the user's session. Sign-out path.
func (m *sessionManager) end(userID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		sess.End()
		delete(m.sessions, userID)
	}
}

func (m *sessionManager) endAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		sess.End()
		delete(m.sessions, id)
	}
}
