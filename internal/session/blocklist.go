// Package session holds the per-user long-lived state: who the user is,
// whom they have blocked, the reconciliation store for their feed slots,
// and the optimistic mutators that write through both.
package session

import "sync"

// BlockList is the session-scoped set of blocked user IDs. It is populated
// at sign-in, updated synchronously on every block/unblock, and cleared at
// sign-out. Every list-producing component consults it as a filter
// predicate, so membership changes take effect on the next render without
// a refetch.
type BlockList struct {
	mu  sync.RWMutex
	ids map[uint]struct{}
}

// NewBlockList creates an empty block list.
func NewBlockList() *BlockList {
	return &BlockList{ids: make(map[uint]struct{})}
}

// Populate replaces the set wholesale. Called at sign-in with the
// authoritative relation set.
func (b *BlockList) Populate(ids []uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		b.ids[id] = struct{}{}
	}
}

// Add inserts a user into the set.
func (b *BlockList) Add(id uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids[id] = struct{}{}
}

// Remove deletes a user from the set.
func (b *BlockList) Remove(id uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.ids, id)
}

// IsBlocked reports membership. Satisfies feed.BlockChecker.
func (b *BlockList) IsBlocked(id uint) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[id]
	return ok
}

// IDs returns a snapshot of the set.
func (b *BlockList) IDs() []uint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]uint, 0, len(b.ids))
	for id := range b.ids {
		out = append(out, id)
	}
	return out
}

// Clear empties the set. Called at sign-out.
func (b *BlockList) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = make(map[uint]struct{})
}
