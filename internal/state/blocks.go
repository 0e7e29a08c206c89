package state

import "sync"

// BlockSet tracks the two block relationship directions for the viewer:
// users who blocked the viewer, and users the viewer blocked. Reads gate the
// message-sending UI.
type BlockSet struct {
	mu        sync.RWMutex
	blockedBy map[string]struct{} // users who blocked me
	blocked   map[string]struct{} // users I blocked
}

// NewBlockSet creates an empty block set.
func NewBlockSet() *BlockSet {
	return &BlockSet{
		blockedBy: make(map[string]struct{}),
		blocked:   make(map[string]struct{}),
	}
}

// ApplyBlockedByUser records that userID blocked the viewer.
func (b *BlockSet) ApplyBlockedByUser(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blockedBy[userID] = struct{}{}
}

// ApplyUnblockedByUser records that userID unblocked the viewer.
func (b *BlockSet) ApplyUnblockedByUser(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blockedBy, userID)
}

// ApplyBlockedUser records that the viewer blocked userID.
func (b *BlockSet) ApplyBlockedUser(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked[userID] = struct{}{}
}

// ApplyUnblockedUser records that the viewer unblocked userID.
func (b *BlockSet) ApplyUnblockedUser(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blocked, userID)
}

// IsBlockedBy reports whether userID has blocked the viewer.
func (b *BlockSet) IsBlockedBy(userID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blockedBy[userID]
	return ok
}

// HasBlocked reports whether the viewer has blocked userID.
func (b *BlockSet) HasBlocked(userID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blocked[userID]
	return ok
}

// CanMessage reports whether no block exists in either direction.
func (b *BlockSet) CanMessage(userID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.blockedBy[userID]; ok {
		return false
	}
	_, ok := b.blocked[userID]
	return !ok
}
