package state

import (
	"sync"

	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// PresenceMap tracks per-user online state and last-seen timestamps.
//
// LastSeen always comes verbatim from the server payload; it is never
// computed locally, so clock skew between client and server cannot produce
// bogus "last seen" values. It is cleared on the online transition.
type PresenceMap struct {
	mu      sync.RWMutex
	entries map[string]model.PresenceEntry

	// onChange, when set, propagates presence flips into the chat list
	// (DM online flags and embedded member profiles).
	onChange func(userID string, online bool)
}

// NewPresenceMap creates an empty presence map.
func NewPresenceMap() *PresenceMap {
	return &PresenceMap{entries: make(map[string]model.PresenceEntry)}
}

// OnChange registers the chat-list side-effect callback. It runs outside the
// map's lock, after the entry is updated.
func (p *PresenceMap) OnChange(fn func(userID string, online bool)) {
	p.onChange = fn
}

// SetOnline marks userID online and clears its last-seen.
func (p *PresenceMap) SetOnline(userID string) {
	p.mu.Lock()
	p.entries[userID] = model.PresenceEntry{Online: true}
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(userID, true)
	}
}

// SetOffline marks userID offline, storing the server-provided lastSeen.
func (p *PresenceMap) SetOffline(userID string, lastSeen int64) {
	p.mu.Lock()
	p.entries[userID] = model.PresenceEntry{Online: false, LastSeen: lastSeen}
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(userID, false)
	}
}

// BulkInit seeds the map from a normalized presence query response.
// Existing entries for the listed users are replaced; others are untouched.
func (p *PresenceMap) BulkInit(entries map[string]model.PresenceEntry) {
	p.mu.Lock()
	for userID, e := range entries {
		if e.Online {
			e.LastSeen = 0
		}
		p.entries[userID] = e
	}
	p.mu.Unlock()
	if p.onChange != nil {
		for userID, e := range entries {
			p.onChange(userID, e.Online)
		}
	}
}

// IsOnline reports whether userID is currently online.
func (p *PresenceMap) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries[userID].Online
}

// LastSeenOf returns userID's last-seen timestamp. ok is false when the user
// is online or has never been observed offline.
func (p *PresenceMap) LastSeenOf(userID string) (lastSeen int64, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, present := p.entries[userID]
	if !present || e.Online || e.LastSeen == 0 {
		return 0, false
	}
	return e.LastSeen, true
}

// Snapshot returns a copy of all entries.
func (p *PresenceMap) Snapshot() map[string]model.PresenceEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]model.PresenceEntry, len(p.entries))
	for k, v := range p.entries {
		out[k] = v
	}
	return out
}
