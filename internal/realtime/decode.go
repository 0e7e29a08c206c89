package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Frame is the wire envelope of one server push.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decoded is a server push normalized into one canonical variant.
// Payload holds one of the typed structs in events.go.
type Decoded struct {
	Kind    string
	Payload any
}

// Decode normalizes one wire frame into a canonical event. All shape
// tolerance lives here; downstream handlers see exactly one representation
// per event kind.
func Decode(f Frame) (Decoded, error) {
	switch f.Event {
	case "ReceiveMessage":
		return unmarshalAs[MessageReceived](KindMessageReceived, f.Data)
	case "MessageEdited":
		return unmarshalAs[MessageEdited](KindMessageEdited, f.Data)
	case "MessageDeleted":
		return unmarshalAs[MessageDeleted](KindMessageDeleted, f.Data)
	case "ReactionAdded":
		return unmarshalAs[ReactionChanged](KindReactionAdded, f.Data)
	case "ReactionRemoved":
		return unmarshalAs[ReactionChanged](KindReactionRemoved, f.Data)
	case "UserOnline":
		return unmarshalAs[UserOnline](KindUserOnline, f.Data)
	case "UserOffline":
		return decodeUserOffline(f.Data)
	case "TypingStarted":
		return unmarshalAs[TypingChanged](KindTypingStarted, f.Data)
	case "TypingStopped":
		return unmarshalAs[TypingChanged](KindTypingStopped, f.Data)
	case "MessagePinned":
		return unmarshalAs[MessagePinned](KindMessagePinned, f.Data)
	case "MessageUnpinned":
		return unmarshalAs[MessageUnpinned](KindMessageUnpinned, f.Data)
	case "AddedToChat":
		return unmarshalAs[ChatMembershipChanged](KindAddedToChat, f.Data)
	case "NewConversation":
		return unmarshalAs[ChatMembershipChanged](KindNewConversation, f.Data)
	case "ConversationCreated":
		return unmarshalAs[ConversationCreated](KindConversationCreated, f.Data)
	case "PermissionGranted":
		return unmarshalAs[PermissionChanged](KindPermissionGranted, f.Data)
	case "PermissionRevoked":
		return unmarshalAs[PermissionChanged](KindPermissionRevoked, f.Data)
	case "AllPermissionsRevoked":
		return unmarshalAs[PermissionsCleared](KindPermissionsCleared, f.Data)
	case "UserBlockedYou":
		return unmarshalAs[BlockChanged](KindBlockedByUser, f.Data)
	case "UserUnblockedYou":
		return unmarshalAs[BlockChanged](KindUnblockedByUser, f.Data)
	case "YouBlockedUser":
		return unmarshalAs[BlockChanged](KindBlockedUser, f.Data)
	case "YouUnblockedUser":
		return unmarshalAs[BlockChanged](KindUnblockedUser, f.Data)
	case "ChatDeleted":
		return unmarshalAs[ChatMembershipChanged](KindChatDeleted, f.Data)
	case "RemovedFromChat":
		return unmarshalAs[ChatMembershipChanged](KindRemovedFromChat, f.Data)
	case "MessagesSeen":
		return decodeMessagesSeen(f.Data)
	default:
		return Decoded{}, fmt.Errorf("unknown realtime event %q", f.Event)
	}
}

func unmarshalAs[T any](kind string, data json.RawMessage) (Decoded, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return Decoded{}, fmt.Errorf("decode %s: %w", kind, err)
	}
	return Decoded{Kind: kind, Payload: v}, nil
}

// decodeUserOffline tolerates lastSeen arriving as a number, a numeric
// string, or missing entirely (older servers omit it).
func decodeUserOffline(data json.RawMessage) (Decoded, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, fmt.Errorf("decode %s: %w", KindUserOffline, err)
	}
	evt := UserOffline{
		UserID:   cast.ToString(raw["userId"]),
		LastSeen: cast.ToInt64(raw["lastSeen"]),
	}
	if evt.UserID == "" {
		return Decoded{}, fmt.Errorf("decode %s: missing userId", KindUserOffline)
	}
	return Decoded{Kind: KindUserOffline, Payload: evt}, nil
}

// decodeMessagesSeen tolerates seenAt as number or numeric string and a
// single messageId in place of the messageIds array.
func decodeMessagesSeen(data json.RawMessage) (Decoded, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, fmt.Errorf("decode %s: %w", KindMessagesSeen, err)
	}
	evt := MessagesSeen{
		ChatID: cast.ToString(raw["chatId"]),
		SeenBy: cast.ToString(raw["seenBy"]),
		SeenAt: cast.ToInt64(raw["seenAt"]),
	}
	if ids := raw["messageIds"]; ids != nil {
		evt.MessageIDs = cast.ToStringSlice(ids)
	} else if id := cast.ToString(raw["messageId"]); id != "" {
		evt.MessageIDs = []string{id}
	}
	if evt.ChatID == "" || evt.SeenBy == "" {
		return Decoded{}, fmt.Errorf("decode %s: missing chatId or seenBy", KindMessagesSeen)
	}
	return Decoded{Kind: KindMessagesSeen, Payload: evt}, nil
}
