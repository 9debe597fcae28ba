package feed

import "sync"

// Store holds the client-visible record list for one feed slot and
// reconciles fresh fetches against in-flight optimistic mutations so
// counters do not flicker back before the server confirms.
//
// The merge rule is a deliberately lossy anti-flicker heuristic, not a
// CRDT: under rare interleavings it can keep a stale inflated count for
// one refetch cycle (a server-side like removal looks identical to an
// unconfirmed local increment).
type Store struct {
	mu      sync.RWMutex
	records []DreamRecord
}

// NewStore creates an empty reconciliation store.
func NewStore() *Store {
	return &Store{}
}

// Apply reconciles a fetch result into the store.
//
// A length mismatch means a structural change (pagination boundary,
// deletion, new item) that invalidates local optimistic deltas, so the held
// list is replaced wholesale. When lengths match, records present in both
// lists merge by identifier: the larger like count wins, and a locally
// diverged viewerHasLiked flag is preserved.
func (s *Store) Apply(fetched []DreamRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(fetched) != len(s.records) {
		s.records = append([]DreamRecord(nil), fetched...)
		return
	}

	held := make(map[string]DreamRecord, len(s.records))
	for _, record := range s.records {
		held[record.ID] = record
	}

	merged := make([]DreamRecord, len(fetched))
	for i, fresh := range fetched {
		local, ok := held[fresh.ID]
		if !ok {
			merged[i] = fresh
			continue
		}
		if local.LikeCount > fresh.LikeCount {
			fresh.LikeCount = local.LikeCount
		}
		if local.ViewerHasLiked != fresh.ViewerHasLiked {
			fresh.ViewerHasLiked = local.ViewerHasLiked
		}
		merged[i] = fresh
	}
	s.records = merged
}

// Records returns a copy of the held list.
func (s *Store) Records() []DreamRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]DreamRecord(nil), s.records...)
}

// Get returns the held record with the given ID.
func (s *Store) Get(id string) (DreamRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return DreamRecord{}, false
}

// Update applies fn to the held record with the given ID, if present.
func (s *Store) Update(id string, fn func(*DreamRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			fn(&s.records[i])
			return true
		}
	}
	return false
}

// Len returns the number of held records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear drops all held records. Called at sign-out.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}
