package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/MrJorjinio/simpchat-client/internal/bus"
	"github.com/MrJorjinio/simpchat-client/internal/realtime"
	"github.com/MrJorjinio/simpchat-client/internal/state"
)

// Dispatcher routes decoded realtime events into the state containers.
//
// It subscribes losslessly to "rt." and applies every event to completion on
// a single goroutine, so handlers observe events in server-send order and no
// partial-update races are possible across containers.
type Dispatcher struct {
	bus      *bus.Bus
	chats    *state.ChatStore
	messages *state.MessageStore
	presence *state.PresenceMap
	perms    *state.PermissionCache
	blocks   *state.BlockSet
	typing   *state.TypingRegistry
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// New creates a dispatcher over the given containers.
func New(b *bus.Bus, chats *state.ChatStore, messages *state.MessageStore, presence *state.PresenceMap,
	perms *state.PermissionCache, blocks *state.BlockSet, typing *state.TypingRegistry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		bus:      b,
		chats:    chats,
		messages: messages,
		presence: presence,
		perms:    perms,
		blocks:   blocks,
		typing:   typing,
		logger:   logger,
	}
}

// Start subscribes to realtime events and begins applying them.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	ch, unsub := d.bus.Subscribe("rt.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				d.handle(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the dispatch loop.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Dispatcher) handle(ctx context.Context, evt bus.Event) {
	switch p := evt.Payload.(type) {
	case realtime.MessageReceived:
		d.chats.ApplyIncomingMessage(ctx, p.Message)

	case realtime.MessageEdited:
		if p.ChatID == d.chats.CurrentID() {
			d.messages.EditInPlace(p.MessageID, p.Content)
		}

	case realtime.MessageDeleted:
		if p.ChatID == d.chats.CurrentID() {
			d.messages.RemoveByID(p.MessageID)
		}

	case realtime.ReactionChanged:
		if p.ChatID != d.chats.CurrentID() {
			return
		}
		if evt.Kind == realtime.KindReactionAdded {
			d.messages.AddReaction(p.MessageID, p.UserID, p.Reaction)
		} else {
			d.messages.RemoveReaction(p.MessageID, p.UserID, p.Reaction)
		}

	case realtime.UserOnline:
		d.presence.SetOnline(p.UserID)

	case realtime.UserOffline:
		d.presence.SetOffline(p.UserID, p.LastSeen)

	case realtime.TypingChanged:
		if evt.Kind == realtime.KindTypingStarted {
			d.typing.SetTyping(p.ChatID, p.UserID)
		} else {
			d.typing.ClearTyping(p.ChatID, p.UserID)
		}

	case realtime.MessagePinned:
		if p.ChatID == d.chats.CurrentID() {
			d.messages.MarkPinned(p.MessageID, p.PinnedBy, p.PinnedAt)
		}

	case realtime.MessageUnpinned:
		if p.ChatID == d.chats.CurrentID() {
			d.messages.MarkUnpinned(p.MessageID)
		}

	case realtime.ChatMembershipChanged:
		switch evt.Kind {
		case realtime.KindAddedToChat, realtime.KindNewConversation:
			// The precise delta is not locally derivable; reload the list.
			d.chats.LoadAll(ctx)
		case realtime.KindChatDeleted, realtime.KindRemovedFromChat:
			d.chats.RemoveChat(p.ChatID)
			d.perms.Clear(p.ChatID)
		}

	case realtime.ConversationCreated:
		d.chats.LoadAll(ctx)
		if realID, ok := d.chats.ReconcileTemporaryDM(p.WithUserID); ok {
			d.messages.Load(ctx, realID)
		}

	case realtime.PermissionChanged:
		// The cache only ever tracks the viewer's permissions.
		if p.UserID != d.perms.ViewerID() {
			return
		}
		if evt.Kind == realtime.KindPermissionGranted {
			d.perms.GrantLocal(p.ChatID, p.Permission)
		} else {
			d.perms.RevokeLocal(p.ChatID, p.Permission)
		}

	case realtime.PermissionsCleared:
		if p.UserID == d.perms.ViewerID() {
			d.perms.RevokeAllLocal(p.ChatID)
		}

	case realtime.BlockChanged:
		switch evt.Kind {
		case realtime.KindBlockedByUser:
			d.blocks.ApplyBlockedByUser(p.UserID)
		case realtime.KindUnblockedByUser:
			d.blocks.ApplyUnblockedByUser(p.UserID)
		case realtime.KindBlockedUser:
			d.blocks.ApplyBlockedUser(p.UserID)
		case realtime.KindUnblockedUser:
			d.blocks.ApplyUnblockedUser(p.UserID)
		}

	case realtime.MessagesSeen:
		d.chats.ApplySeenReceipt(p.ChatID, p.MessageIDs, p.SeenBy, p.SeenAt)

	default:
		d.logger.Warn("unhandled realtime event", zap.String("kind", evt.Kind))
	}
}
