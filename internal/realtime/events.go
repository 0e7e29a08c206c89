package realtime

import "github.com/MrJorjinio/simpchat-client/internal/model"

// Bus kinds for decoded server pushes. The dispatcher routes on these.
const (
	KindMessageReceived     = "rt.message"
	KindMessageEdited       = "rt.message_edited"
	KindMessageDeleted      = "rt.message_deleted"
	KindReactionAdded       = "rt.reaction_added"
	KindReactionRemoved     = "rt.reaction_removed"
	KindUserOnline          = "rt.user_online"
	KindUserOffline         = "rt.user_offline"
	KindTypingStarted       = "rt.typing_started"
	KindTypingStopped       = "rt.typing_stopped"
	KindMessagePinned       = "rt.message_pinned"
	KindMessageUnpinned     = "rt.message_unpinned"
	KindAddedToChat         = "rt.added_to_chat"
	KindNewConversation     = "rt.new_conversation"
	KindConversationCreated = "rt.conversation_created"
	KindPermissionGranted   = "rt.permission_granted"
	KindPermissionRevoked   = "rt.permission_revoked"
	KindPermissionsCleared  = "rt.permissions_cleared"
	KindBlockedByUser       = "rt.blocked_by_user"
	KindUnblockedByUser     = "rt.unblocked_by_user"
	KindBlockedUser         = "rt.blocked_user"
	KindUnblockedUser       = "rt.unblocked_user"
	KindChatDeleted         = "rt.chat_deleted"
	KindRemovedFromChat     = "rt.removed_from_chat"
	KindMessagesSeen        = "rt.messages_seen"
)

// MessageReceived carries a full message pushed into a chat.
type MessageReceived struct {
	Message model.Message `json:"message"`
}

// MessageEdited carries only the new content. Pin state and reactions are
// never present on edit pushes, so the cache patches content alone.
type MessageEdited struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

// MessageDeleted removes a message from the open chat.
type MessageDeleted struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

// ReactionChanged covers both the added and removed pushes. The server does
// not send a stable reaction row id, only the (user, kind) value pair.
type ReactionChanged struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	Reaction  string `json:"reaction"`
}

// UserOnline marks a user online.
type UserOnline struct {
	UserID string `json:"userId"`
}

// UserOffline marks a user offline with the server-computed last-seen.
type UserOffline struct {
	UserID   string `json:"userId"`
	LastSeen int64  `json:"lastSeen"`
}

// TypingChanged covers both typing start and stop pushes.
type TypingChanged struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// MessagePinned carries pin metadata.
type MessagePinned struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	PinnedBy  string `json:"pinnedBy"`
	PinnedAt  int64  `json:"pinnedAt"`
}

// MessageUnpinned clears pin state.
type MessageUnpinned struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

// ChatMembershipChanged covers added-to-chat, new-conversation, chat-deleted
// and removed-from-chat pushes. Only the chat id is reliable across them;
// structural deltas are resolved by a full chat list reload.
type ChatMembershipChanged struct {
	ChatID string `json:"chatId"`
}

// ConversationCreated names the real id of a conversation the viewer may
// have been holding a temporary placeholder for.
type ConversationCreated struct {
	ChatID     string `json:"chatId"`
	WithUserID string `json:"withUserId"`
}

// PermissionChanged covers single-permission grant and revoke pushes.
type PermissionChanged struct {
	ChatID     string `json:"chatId"`
	UserID     string `json:"userId"`
	Permission string `json:"permission"`
}

// PermissionsCleared revokes every permission of a user in a chat.
type PermissionsCleared struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// BlockChanged covers the four block relationship pushes.
type BlockChanged struct {
	UserID string `json:"userId"`
}

// MessagesSeen marks a batch of messages seen by one user.
type MessagesSeen struct {
	ChatID     string   `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
	SeenBy     string   `json:"seenBy"`
	SeenAt     int64    `json:"seenAt"`
}
