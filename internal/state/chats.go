package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJorjinio/simpchat-client/internal/api"
	"github.com/MrJorjinio/simpchat-client/internal/bus"
	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// ChatTransport is the transport slice the chat store needs.
type ChatTransport interface {
	FetchChats(ctx context.Context) ([]model.ChatSummary, error)
	FetchChat(ctx context.Context, chatID string) (*api.ChatWithMessages, error)
	SendMessage(ctx context.Context, req api.SendMessageRequest) (*api.SendMessageResponse, error)
}

// ChatStore is the top-level aggregate: the chat list, the current chat
// selection, and the send pipeline with optimistic local inserts.
//
// Denormalized preview fields (last message, unread) are refreshed by a full
// list reload rather than recomputed locally: recomputing them across DM,
// group and channel variants is error-prone, so one extra round trip buys
// guaranteed correctness.
type ChatStore struct {
	mu        sync.RWMutex
	viewerID  string
	transport ChatTransport
	messages  *MessageStore
	bus       *bus.Bus
	logger    *zap.Logger

	chats     []model.ChatSummary
	currentID string
	loading   bool
	err       string
}

// NewChatStore creates an empty chat store for the given viewer.
func NewChatStore(viewerID string, transport ChatTransport, messages *MessageStore, b *bus.Bus, logger *zap.Logger) *ChatStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatStore{
		viewerID:  viewerID,
		transport: transport,
		messages:  messages,
		bus:       b,
		logger:    logger,
	}
}

// LoadAll replaces the entire chat list from a full server fetch. Temporary
// DM placeholders survive the replace until reconciled. A fetch failure
// leaves the previous list intact and sets Err.
func (s *ChatStore) LoadAll(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.notify()

	chats, err := s.transport.FetchChats(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = api.FriendlyMessage(err)
		s.mu.Unlock()
		s.logger.Warn("chat list reload failed", zap.Error(err))
		s.notify()
		return
	}
	s.err = ""
	var placeholders []model.ChatSummary
	for _, c := range s.chats {
		if model.IsTempDMID(c.ID) {
			placeholders = append(placeholders, c)
		}
	}
	s.chats = append(chats, placeholders...)
	s.mu.Unlock()
	s.notify()
}

// Select sets the current chat pointer. It does not fetch messages; Open
// coordinates selection with the message load.
func (s *ChatStore) Select(chatID string) {
	s.mu.Lock()
	s.currentID = chatID
	s.mu.Unlock()
	s.notify()
}

// Open selects chatID, loads its messages, and zeroes its unread counter.
func (s *ChatStore) Open(ctx context.Context, chatID string) {
	s.Select(chatID)
	if model.IsTempDMID(chatID) {
		s.messages.Reset(chatID, nil)
		return
	}
	resp, err := s.transport.FetchChat(ctx, chatID)
	if err != nil {
		s.setErr(err)
		return
	}
	s.UpsertChat(resp.Chat)
	s.messages.Reset(chatID, resp.Messages)
	s.ResetUnread(chatID)
}

// ApplyIncomingMessage handles a realtime message push: an idempotent insert
// into the open chat's list when applicable, then always a full list reload
// so last-message and unread denormalization stays correct.
func (s *ChatStore) ApplyIncomingMessage(ctx context.Context, msg model.Message) {
	if msg.ChatID == s.CurrentID() {
		s.messages.Insert(msg)
	}
	s.LoadAll(ctx)
}

// ResetUnread zeroes the unread counter for chatID locally, independent of
// server confirmation.
func (s *ChatStore) ResetUnread(chatID string) {
	s.mu.Lock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats[i].UnreadCount = 0
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplySeenReceipt handles a messages-seen push. Receipts by other users do
// not change the viewer's unread counters.
func (s *ChatStore) ApplySeenReceipt(chatID string, messageIDs []string, seenBy string, seenAt int64) {
	if seenBy != s.viewerID {
		return
	}
	s.mu.Lock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats[i].UnreadCount -= len(messageIDs)
			if s.chats[i].UnreadCount < 0 {
				s.chats[i].UnreadCount = 0
			}
			break
		}
	}
	current := s.currentID == chatID
	s.mu.Unlock()

	if current {
		s.messages.MarkSeenBatch(messageIDs, seenAt)
	}
	s.notify()
}

// RemoveChat drops chatID from the list. If it was selected, the selection
// and the open message list are cleared.
func (s *ChatStore) RemoveChat(chatID string) {
	s.mu.Lock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats = append(s.chats[:i:i], s.chats[i+1:]...)
			break
		}
	}
	wasCurrent := s.currentID == chatID
	if wasCurrent {
		s.currentID = ""
	}
	s.mu.Unlock()

	if wasCurrent {
		s.messages.Clear()
	}
	s.notify()
}

// UpsertChat replaces the list entry with chat's id, or appends it.
func (s *ChatStore) UpsertChat(chat model.ChatSummary) {
	s.mu.Lock()
	replaced := false
	for i := range s.chats {
		if s.chats[i].ID == chat.ID {
			s.chats[i] = chat
			replaced = true
			break
		}
	}
	if !replaced {
		s.chats = append(s.chats, chat)
	}
	s.mu.Unlock()
	s.notify()
}

// CreateTemporaryDM synthesizes a placeholder direct chat with a sentinel id
// derived from userID, so the first message to a not-yet-existing DM can be
// composed immediately instead of waiting on a round trip.
func (s *ChatStore) CreateTemporaryDM(userID string, seed model.Profile) model.ChatSummary {
	id := model.TempDMID(userID)

	s.mu.Lock()
	for _, c := range s.chats {
		if c.ID == id {
			s.mu.Unlock()
			return c
		}
	}
	now := time.Now().UnixMilli()
	chat := model.ChatSummary{
		ID:        id,
		Name:      seed.Username,
		Kind:      model.KindDirect,
		AvatarURL: seed.AvatarURL,
		Privacy:   model.PrivacyPrivate,
		Members: []model.Membership{
			{ChatID: id, UserID: s.viewerID, Role: model.RoleMember},
			{ChatID: id, UserID: userID, Role: model.RoleMember, Profile: seed},
		},
		IsOnline:  seed.IsOnline,
		CreatorID: s.viewerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats = append(s.chats, chat)
	s.mu.Unlock()
	s.notify()
	return chat
}

// ReconcileTemporaryDM replaces the placeholder selection for userID with
// the real direct chat once the reloaded list contains one whose membership
// includes userID. First membership match wins. The current-selection
// recheck guards against a stale reconcile applying after the user has
// navigated elsewhere.
func (s *ChatStore) ReconcileTemporaryDM(userID string) (string, bool) {
	tempID := model.TempDMID(userID)

	s.mu.Lock()
	if s.currentID != tempID {
		s.mu.Unlock()
		return "", false
	}
	realID := ""
	for _, c := range s.chats {
		if model.IsTempDMID(c.ID) || c.Kind != model.KindDirect {
			continue
		}
		if c.Member(userID) != nil {
			realID = c.ID
			break
		}
	}
	if realID == "" {
		s.mu.Unlock()
		return "", false
	}
	s.currentID = realID
	for i := range s.chats {
		if s.chats[i].ID == tempID {
			s.chats = append(s.chats[:i:i], s.chats[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	return realID, true
}

// SendText sends a text message to the current chat with an optimistic local
// insert. A failed send leaves the optimistic entry in place (no rollback);
// the next full load restores the authoritative list.
func (s *ChatStore) SendText(ctx context.Context, content, replyToID string) {
	chatID := s.CurrentID()
	if chatID == "" {
		return
	}

	clientID := uuid.NewString()
	optimistic := model.Message{
		ID:        clientID,
		ChatID:    chatID,
		SenderID:  s.viewerID,
		Content:   content,
		ReplyToID: replyToID,
		SentAt:    time.Now().UnixMilli(),
		FromMe:    true,
	}
	s.messages.Insert(optimistic)

	req := api.SendMessageRequest{
		ClientMsgID: clientID,
		Content:     content,
		ReplyToID:   replyToID,
	}
	if target := model.TempDMTarget(chatID); target != "" {
		req.TargetUserID = target
	} else {
		req.ChatID = chatID
	}

	resp, err := s.transport.SendMessage(ctx, req)
	if err != nil {
		s.setErr(err)
		s.logger.Warn("send failed", zap.String("client_msg_id", clientID), zap.Error(err))
		return
	}

	s.messages.ReplaceID(clientID, resp.Message)
	s.LoadAll(ctx)
	if target := model.TempDMTarget(chatID); target != "" {
		if realID, ok := s.ReconcileTemporaryDM(target); ok {
			s.messages.Load(ctx, realID)
		}
	}
}

// ApplyPresence updates the online flag of direct chats with userID and the
// embedded profile of every membership referencing userID. Registered as the
// PresenceMap change callback.
//
// Affected Members slices are rebuilt and swapped in rather than written
// through, since snapshots handed out by Chats/Chat share their backing
// arrays with the store.
func (s *ChatStore) ApplyPresence(userID string, online bool) {
	s.mu.Lock()
	for i := range s.chats {
		member := false
		for j := range s.chats[i].Members {
			if s.chats[i].Members[j].UserID == userID {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		members := append([]model.Membership(nil), s.chats[i].Members...)
		for j := range members {
			if members[j].UserID == userID {
				members[j].Profile.IsOnline = online
			}
		}
		s.chats[i].Members = members
		if s.chats[i].Kind == model.KindDirect {
			s.chats[i].IsOnline = online
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Chats returns a copy of the chat list.
func (s *ChatStore) Chats() []model.ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatSummary(nil), s.chats...)
}

// Chat returns the cached summary for chatID. Implements ChatLookup.
func (s *ChatStore) Chat(chatID string) (model.ChatSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chats {
		if c.ID == chatID {
			return c, true
		}
	}
	return model.ChatSummary{}, false
}

// Current returns the selected chat, if any.
func (s *ChatStore) Current() (model.ChatSummary, bool) {
	s.mu.RLock()
	id := s.currentID
	s.mu.RUnlock()
	if id == "" {
		return model.ChatSummary{}, false
	}
	return s.Chat(id)
}

// CurrentID returns the selected chat id, or "".
func (s *ChatStore) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Loading reports whether a list reload is in flight.
func (s *ChatStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last operation failure message, or "".
func (s *ChatStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *ChatStore) setErr(err error) {
	s.mu.Lock()
	s.err = api.FriendlyMessage(err)
	s.mu.Unlock()
	s.notify()
}

func (s *ChatStore) notify() {
	if s.bus != nil {
		s.bus.Emit("state.chats_changed", nil)
	}
}
