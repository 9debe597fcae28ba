package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reverie/internal/feed"
)

// privatizeDelay is how long the detail view stays open after a dream is
// made private, so the author sees the toggle land before the view closes.
const privatizeDelay = 300 * time.Millisecond

// Session is the top-level scope owning a signed-in user's mutable state.
// It is created at sign-in, shared by reference with every consumer, and
// torn down at sign-out.
type Session struct {
	UserID uint

	gateway Gateway
	blocks  *BlockList
	store   *feed.Store
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}

	// privatizeDelay is overridable in tests.
	privatizeDelay time.Duration
}

// New creates a session for the given user. Call Start to populate the
// block list before serving renders.
func New(userID uint, gateway Gateway, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		UserID:         userID,
		gateway:        gateway,
		blocks:         NewBlockList(),
		store:          feed.NewStore(),
		logger:         logger,
		pending:        make(map[string]struct{}),
		privatizeDelay: privatizeDelay,
	}
}

// Start populates the block list from the gateway. Sign-in path.
func (s *Session) Start(ctx context.Context) error {
	ids, err := s.gateway.BlockedIDs(ctx, s.UserID)
	if err != nil {
		return err
	}
	s.blocks.Populate(ids)
	return nil
}

// End clears all session state. Sign-out path.
func (s *Session) End() {
	s.blocks.Clear()
	s.store.Clear()
	s.mu.Lock()
	s.pending = make(map[string]struct{})
	s.mu.Unlock()
}

// Blocks exposes the block list for read-time filtering.
func (s *Session) Blocks() *BlockList {
	return s.blocks
}

// Store exposes the reconciliation store holding the client-visible list.
func (s *Session) Store() *feed.Store {
	return s.store
}

// VisibleRecords returns the held records with blocked authors filtered
// out. The block list is consulted at render time, so a just-blocked
// author disappears without a refetch.
func (s *Session) VisibleRecords() []feed.DreamRecord {
	records := s.store.Records()
	out := make([]feed.DreamRecord, 0, len(records))
	for _, record := range records {
		if s.blocks.IsBlocked(record.AuthorID) {
			continue
		}
		out = append(out, record)
	}
	return out
}

// begin marks a mutation target pending. Returns false when an earlier
// mutation on the same target has not settled.
func (s *Session) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, inFlight := s.pending[key]; inFlight {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *Session) settle(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}
