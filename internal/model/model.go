package model

// ChatKind distinguishes the three conversation flavors the server exposes.
type ChatKind string

const (
	KindDirect  ChatKind = "direct"
	KindGroup   ChatKind = "group"
	KindChannel ChatKind = "channel"
)

// ChatPrivacy controls discoverability of group chats and channels.
type ChatPrivacy string

const (
	PrivacyPublic  ChatPrivacy = "public"
	PrivacyPrivate ChatPrivacy = "private"
)

// Role is a member's role within a chat.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Permission names granted per chat. The server sends these as plain strings;
// the constants cover the names the client gates UI on.
const (
	PermSendMessage    = "SendMessage"
	PermPinMessages    = "PinMessages"
	PermManageUsers    = "ManageUsers"
	PermManageChat     = "ManageChat"
	PermDeleteMessages = "DeleteMessages"
)

// Profile is the denormalized user snippet embedded in memberships and messages.
type Profile struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	IsOnline  bool   `json:"isOnline"`
}

// Membership ties a user to a chat with a role. Unique per (chat, user).
type Membership struct {
	ChatID  string  `json:"chatId"`
	UserID  string  `json:"userId"`
	Role    Role    `json:"role"`
	Profile Profile `json:"profile"`
}

// LastMessage is the denormalized preview snapshot carried on a ChatSummary.
type LastMessage struct {
	MessageID string `json:"messageId"`
	SenderID  string `json:"senderId"`
	Preview   string `json:"preview"`
	SentAt    int64  `json:"sentAt"`
}

// ChatSummary is one entry of the chat list.
type ChatSummary struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        ChatKind     `json:"kind"`
	AvatarURL   string       `json:"avatarUrl"`
	Privacy     ChatPrivacy  `json:"privacy"`
	Members     []Membership `json:"members"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
	IsOnline    bool         `json:"isOnline"` // direct chats only
	CreatorID   string       `json:"creatorId"`
	CreatedAt   int64        `json:"createdAt"`
	UpdatedAt   int64        `json:"updatedAt"`
}

// Member returns the membership for userID, or nil if absent.
func (c *ChatSummary) Member(userID string) *Membership {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return &c.Members[i]
		}
	}
	return nil
}

// Reaction is one user's reaction of one kind on a message.
// Unique per (message, user, kind); the client enforces set semantics
// because the realtime payload carries no stable reaction row id.
type Reaction struct {
	UserID string `json:"userId"`
	Kind   string `json:"kind"`
}

// Attachment references an uploaded file carried by a message.
type Attachment struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Message is one entry of the open chat's message list.
type Message struct {
	ID           string      `json:"id"`
	ChatID       string      `json:"chatId"`
	SenderID     string      `json:"senderId"`
	SenderName   string      `json:"senderName"`
	SenderAvatar string      `json:"senderAvatar"`
	Content      string      `json:"content"`
	Attachment   *Attachment `json:"attachment,omitempty"`
	ReplyToID    string      `json:"replyToId,omitempty"`
	SentAt       int64       `json:"sentAt"`
	Seen         bool        `json:"seen"`
	SeenAt       int64       `json:"seenAt"`
	Pinned       bool        `json:"pinned"`
	PinnedBy     string      `json:"pinnedBy,omitempty"`
	PinnedAt     int64       `json:"pinnedAt"`
	Reactions    []Reaction  `json:"reactions"`
	FromMe       bool        `json:"fromMe"`
}

// HasReaction reports whether (userID, kind) is already present.
func (m *Message) HasReaction(userID, kind string) bool {
	for _, r := range m.Reactions {
		if r.UserID == userID && r.Kind == kind {
			return true
		}
	}
	return false
}

// PresenceEntry is the per-user presence record.
// LastSeen is only ever set on the offline transition, from the server's
// payload, and is cleared the moment the user comes online.
type PresenceEntry struct {
	Online   bool
	LastSeen int64 // unix ms; 0 means unknown
}
