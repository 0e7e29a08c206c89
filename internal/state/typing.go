package state

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTypingTTL is how long a typing flag lives without a fresh event.
const DefaultTypingTTL = 3 * time.Second

// TypingRegistry tracks short-lived per-(chat, user) typing flags.
//
// A repeated typing event overwrites the entry, which restarts its expiry
// window; there is no debounce beyond that.
type TypingRegistry struct {
	ttl   time.Duration
	flags *gocache.Cache
}

// NewTypingRegistry creates a registry. ttl <= 0 selects DefaultTypingTTL.
func NewTypingRegistry(ttl time.Duration) *TypingRegistry {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	cleanup := ttl
	if cleanup > time.Second {
		cleanup = time.Second
	}
	return &TypingRegistry{
		ttl:   ttl,
		flags: gocache.New(ttl, cleanup),
	}
}

// SetTyping records that user is typing in chat, restarting the expiry window.
func (t *TypingRegistry) SetTyping(chatID, userID string) {
	t.flags.SetDefault(typingKey(chatID, userID), time.Now())
}

// ClearTyping removes the flag before its natural expiry.
func (t *TypingRegistry) ClearTyping(chatID, userID string) {
	t.flags.Delete(typingKey(chatID, userID))
}

// IsTyping reports whether user currently has an unexpired flag in chat.
func (t *TypingRegistry) IsTyping(chatID, userID string) bool {
	_, ok := t.flags.Get(typingKey(chatID, userID))
	return ok
}

// TypingUsers returns the ids of users currently typing in chat.
func (t *TypingRegistry) TypingUsers(chatID string) []string {
	prefix := chatID + keySep
	var users []string
	for key := range t.flags.Items() {
		if strings.HasPrefix(key, prefix) {
			users = append(users, strings.TrimPrefix(key, prefix))
		}
	}
	return users
}

// keySep cannot appear in server-issued ids.
const keySep = "\x00"

func typingKey(chatID, userID string) string {
	return chatID + keySep + userID
}
