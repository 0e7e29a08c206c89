package state

import (
	"context"
	"strings"
	"sync"

	"github.com/MrJorjinio/simpchat-client/internal/api"
	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// PermissionLoader is the transport slice the permission cache needs.
type PermissionLoader interface {
	FetchPermissions(ctx context.Context, chatID, userID string) ([]string, error)
}

// ChatLookup resolves a cached chat summary by id. Implemented by ChatStore.
type ChatLookup interface {
	Chat(chatID string) (model.ChatSummary, bool)
}

// PermissionCache holds the permission names granted to the viewer per chat.
// It never stores other users' permissions.
//
// Has evaluates layered rules before consulting the cached set, so for chat
// creators and admins no permission fetch is ever needed.
type PermissionCache struct {
	mu       sync.RWMutex
	viewerID string
	chats    ChatLookup
	loader   PermissionLoader
	perms    map[string]map[string]struct{} // chatID -> permission set
	err      string
}

// NewPermissionCache creates a cache for the given viewer.
func NewPermissionCache(viewerID string, chats ChatLookup, loader PermissionLoader) *PermissionCache {
	return &PermissionCache{
		viewerID: viewerID,
		chats:    chats,
		loader:   loader,
		perms:    make(map[string]map[string]struct{}),
	}
}

// Load fetches and replaces the viewer's permission set for chatID.
// On failure the previous set is kept and Err reports a friendly message.
func (p *PermissionCache) Load(ctx context.Context, chatID string) {
	names, err := p.loader.FetchPermissions(ctx, chatID, p.viewerID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.err = api.FriendlyMessage(err)
		return
	}
	p.err = ""
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	p.perms[chatID] = set
}

// Has reports whether the viewer holds permission in chatID.
//
// Evaluation order:
//  1. direct chats: SendMessage and PinMessages are always allowed,
//     management permissions never, regardless of cache contents;
//  2. the chat's creator holds everything;
//  3. admins and owners (role compared case-insensitively) hold everything;
//  4. otherwise the cached set decides, defaulting to false when unloaded.
func (p *PermissionCache) Has(chatID, permission string) bool {
	if chat, ok := p.chats.Chat(chatID); ok {
		if chat.Kind == model.KindDirect {
			return permission == model.PermSendMessage || permission == model.PermPinMessages
		}
		if chat.CreatorID == p.viewerID {
			return true
		}
		if m := chat.Member(p.viewerID); m != nil {
			switch strings.ToLower(string(m.Role)) {
			case "admin", "owner":
				return true
			}
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	set, ok := p.perms[chatID]
	if !ok {
		return false
	}
	_, granted := set[permission]
	return granted
}

// GrantLocal optimistically adds a single permission for chatID.
func (p *PermissionCache) GrantLocal(chatID, permission string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.perms[chatID]
	if !ok {
		set = make(map[string]struct{})
		p.perms[chatID] = set
	}
	set[permission] = struct{}{}
}

// RevokeLocal optimistically removes a single permission for chatID.
func (p *PermissionCache) RevokeLocal(chatID, permission string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if set, ok := p.perms[chatID]; ok {
		delete(set, permission)
	}
}

// RevokeAllLocal empties the permission set for chatID.
func (p *PermissionCache) RevokeAllLocal(chatID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.perms[chatID] = make(map[string]struct{})
}

// Clear drops one chat's entry, or everything when chatID is "".
func (p *PermissionCache) Clear(chatID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if chatID == "" {
		p.perms = make(map[string]map[string]struct{})
		return
	}
	delete(p.perms, chatID)
}

// ViewerID returns the id this cache was built for. Realtime grant/revoke
// events naming any other user must be discarded before reaching the cache.
func (p *PermissionCache) ViewerID() string {
	return p.viewerID
}

// Err returns the last load failure message, or "".
func (p *PermissionCache) Err() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}
