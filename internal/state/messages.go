package state

import (
	"context"
	"sync"

	"github.com/MrJorjinio/simpchat-client/internal/api"
	"github.com/MrJorjinio/simpchat-client/internal/bus"
	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// MessageLoader is the transport slice the message store needs.
type MessageLoader interface {
	FetchChat(ctx context.Context, chatID string) (*api.ChatWithMessages, error)
}

// MessageStore holds the message list of the currently open chat, in arrival
// order, plus a chat-scoped side list of pinned messages so the UI can render
// pinned shortcuts without scanning history.
//
// Events referencing an id not in the list are silently ignored: a deleted
// message is terminal, and an edit arriving before its insert is treated as
// a benign race corrected by the next full load.
type MessageStore struct {
	mu     sync.RWMutex
	chatID string
	list   []model.Message
	pinned map[string][]model.Message // chatID -> pinned side list
	loader MessageLoader
	bus    *bus.Bus
	err    string
}

// NewMessageStore creates an empty message store.
func NewMessageStore(loader MessageLoader, b *bus.Bus) *MessageStore {
	return &MessageStore{
		pinned: make(map[string][]model.Message),
		loader: loader,
		bus:    b,
	}
}

// Load replaces the active list with chatID's history from the server.
// On failure the previous list is kept and Err reports a friendly message.
func (s *MessageStore) Load(ctx context.Context, chatID string) {
	resp, err := s.loader.FetchChat(ctx, chatID)
	s.mu.Lock()
	if err != nil {
		s.err = api.FriendlyMessage(err)
		s.mu.Unlock()
		return
	}
	s.err = ""
	s.chatID = chatID
	s.list = append([]model.Message(nil), resp.Messages...)

	// Rebuild the pinned side list from the authoritative history.
	var pins []model.Message
	for _, m := range resp.Messages {
		if m.Pinned {
			pins = append(pins, m)
		}
	}
	s.pinned[chatID] = pins
	s.mu.Unlock()
	s.notify()
}

// Reset installs an already-fetched list, used when the chat fetch happened
// elsewhere (opening a chat loads summary and history in one call).
func (s *MessageStore) Reset(chatID string, msgs []model.Message) {
	s.mu.Lock()
	s.chatID = chatID
	s.list = append([]model.Message(nil), msgs...)
	var pins []model.Message
	for _, m := range msgs {
		if m.Pinned {
			pins = append(pins, m)
		}
	}
	s.pinned[chatID] = pins
	s.mu.Unlock()
	s.notify()
}

// Insert appends msg iff no message with its id is present. Duplicate
// realtime delivery is safely ignored.
func (s *MessageStore) Insert(msg model.Message) bool {
	s.mu.Lock()
	if s.indexOf(msg.ID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.list = append(s.list, msg)
	s.mu.Unlock()
	s.notify()
	return true
}

// EditInPlace replaces only the content field. Edit events never carry pin
// state or reactions, so nothing else is touched.
func (s *MessageStore) EditInPlace(id, content string) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.list[i].Content = content
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveByID drops the message from the list and the pinned side list.
func (s *MessageStore) RemoveByID(id string) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.list = append(s.list[:i:i], s.list[i+1:]...)
	}
	s.removePinLocked(s.chatID, id)
	s.mu.Unlock()
	s.notify()
}

// ReplaceID swaps a locally assigned id for the server-confirmed one,
// keeping the message's position. Used by the optimistic send pipeline.
func (s *MessageStore) ReplaceID(oldID string, confirmed model.Message) {
	s.mu.Lock()
	if i := s.indexOf(oldID); i >= 0 {
		s.list[i] = confirmed
	}
	s.mu.Unlock()
	s.notify()
}

// AddReaction records (userID, kind) on the message with set semantics:
// a duplicate add, including a re-delivered event, is a no-op.
func (s *MessageStore) AddReaction(id, userID, kind string) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 && !s.list[i].HasReaction(userID, kind) {
		s.list[i].Reactions = append(s.list[i].Reactions, model.Reaction{UserID: userID, Kind: kind})
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveReaction removes (userID, kind) from the message by value match;
// the realtime payload carries no stable reaction row id.
func (s *MessageStore) RemoveReaction(id, userID, kind string) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		rs := s.list[i].Reactions
		for j, r := range rs {
			if r.UserID == userID && r.Kind == kind {
				s.list[i].Reactions = append(rs[:j:j], rs[j+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// MarkPinned sets pin metadata on the message and appends it to the chat's
// pinned side list.
func (s *MessageStore) MarkPinned(id, pinnedBy string, pinnedAt int64) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.list[i].Pinned = true
	s.list[i].PinnedBy = pinnedBy
	s.list[i].PinnedAt = pinnedAt

	chatID := s.chatID
	already := false
	for _, m := range s.pinned[chatID] {
		if m.ID == id {
			already = true
			break
		}
	}
	if !already {
		s.pinned[chatID] = append(s.pinned[chatID], s.list[i])
	}
	s.mu.Unlock()
	s.notify()
}

// MarkUnpinned clears pin metadata and removes the side-list entry.
func (s *MessageStore) MarkUnpinned(id string) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.list[i].Pinned = false
		s.list[i].PinnedBy = ""
		s.list[i].PinnedAt = 0
	}
	s.removePinLocked(s.chatID, id)
	s.mu.Unlock()
	s.notify()
}

// MarkSeenBatch flips the seen flag for the given ids. Ids not present
// (scrolled out of the loaded page) are ignored here; callers only submit
// visible ids.
func (s *MessageStore) MarkSeenBatch(ids []string, seenAt int64) {
	s.mu.Lock()
	for _, id := range ids {
		if i := s.indexOf(id); i >= 0 {
			s.list[i].Seen = true
			s.list[i].SeenAt = seenAt
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Clear empties the active list, keeping pinned side lists of other chats.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	s.chatID = ""
	s.list = nil
	s.mu.Unlock()
	s.notify()
}

// ChatID returns the id of the chat the active list belongs to.
func (s *MessageStore) ChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatID
}

// Messages returns a copy of the active list.
func (s *MessageStore) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.list...)
}

// Get returns the message with the given id from the active list.
func (s *MessageStore) Get(id string) (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.list[i], true
	}
	return model.Message{}, false
}

// PinnedMessages returns a copy of the pinned side list for chatID.
func (s *MessageStore) PinnedMessages(chatID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.pinned[chatID]...)
}

// Err returns the last load failure message, or "".
func (s *MessageStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *MessageStore) indexOf(id string) int {
	for i := range s.list {
		if s.list[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MessageStore) removePinLocked(chatID, id string) {
	pins := s.pinned[chatID]
	for i, m := range pins {
		if m.ID == id {
			s.pinned[chatID] = append(pins[:i:i], pins[i+1:]...)
			return
		}
	}
}

func (s *MessageStore) notify() {
	if s.bus != nil {
		s.bus.Emit("state.messages_changed", nil)
	}
}
