package app

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/MrJorjinio/simpchat-client/internal/api"
	"github.com/MrJorjinio/simpchat-client/internal/bus"
	"github.com/MrJorjinio/simpchat-client/internal/config"
	"github.com/MrJorjinio/simpchat-client/internal/dispatch"
	"github.com/MrJorjinio/simpchat-client/internal/lock"
	"github.com/MrJorjinio/simpchat-client/internal/logging"
	"github.com/MrJorjinio/simpchat-client/internal/model"
	"github.com/MrJorjinio/simpchat-client/internal/realtime"
	"github.com/MrJorjinio/simpchat-client/internal/session"
	"github.com/MrJorjinio/simpchat-client/internal/state"
	"github.com/MrJorjinio/simpchat-client/internal/status"
	"github.com/MrJorjinio/simpchat-client/internal/store"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
}

// Containers groups the state containers the UI layer reads from.
type Containers struct {
	Chats    *state.ChatStore
	Messages *state.MessageStore
	Presence *state.PresenceMap
	Perms    *state.PermissionCache
	Blocks   *state.BlockSet
	Typing   *state.TypingRegistry
}

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("simpchatd",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideIdentity,
			provideAPIClient,
			provideContainers,
			provideDispatcher,
			provideSource,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	return config.Load(session.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

// provideIdentity loads the persisted identity. A nil identity means no one
// has signed in yet; the daemon then waits in AUTH_REQUIRED.
func provideIdentity(db *store.DB) (*store.Identity, error) {
	return db.LoadIdentity()
}

func provideAPIClient(cfg *config.Config, identity *store.Identity) *api.Client {
	token := ""
	if identity != nil {
		token = identity.Token
	}
	return api.NewClient(cfg.ServerURL, token)
}

func provideContainers(cfg *config.Config, identity *store.Identity, client *api.Client, b *bus.Bus, logger *zap.Logger) *Containers {
	viewerID := ""
	if identity != nil {
		viewerID = identity.UserID
	}

	messages := state.NewMessageStore(client, b)
	chats := state.NewChatStore(viewerID, client, messages, b, logger)
	presence := state.NewPresenceMap()
	presence.OnChange(chats.ApplyPresence)

	return &Containers{
		Chats:    chats,
		Messages: messages,
		Presence: presence,
		Perms:    state.NewPermissionCache(viewerID, chats, client),
		Blocks:   state.NewBlockSet(),
		Typing:   state.NewTypingRegistry(time.Duration(cfg.TypingTTLMillis) * time.Millisecond),
	}
}

func provideDispatcher(b *bus.Bus, c *Containers, logger *zap.Logger) *dispatch.Dispatcher {
	return dispatch.New(b, c.Chats, c.Messages, c.Presence, c.Perms, c.Blocks, c.Typing, logger)
}

func provideSource(cfg *config.Config, identity *store.Identity, b *bus.Bus, machine *status.Machine, logger *zap.Logger) (*realtime.Source, error) {
	token := ""
	if identity != nil {
		token = identity.Token
	}
	return realtime.NewSource(cfg.ServerURL, cfg.RealtimePath, token, b, machine, logger)
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, db *store.DB, identity *store.Identity, client *api.Client,
	c *Containers, d *dispatch.Dispatcher, source *realtime.Source, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Seed the chat list from the last persisted snapshot so the
			// first paint does not wait on the network.
			if snapshot, err := db.LoadChatSnapshot(); err != nil {
				logger.Warn("snapshot load failed", zap.Error(err))
			} else if len(snapshot) > 0 {
				for _, chat := range snapshot {
					c.Chats.UpsertChat(chat)
				}
				logger.Info("chat snapshot restored", zap.Int("chats", len(snapshot)))
			}

			d.Start(context.Background())

			if identity == nil {
				logger.Info("no credentials found, auth required")
				_ = machine.Transition(status.AuthRequired)
				return nil
			}

			source.Start(context.Background())

			// Initial sync: authoritative chat list, then presence for
			// every direct-chat counterpart.
			go func() {
				ctx := context.Background()
				c.Chats.LoadAll(ctx)
				seedPresence(ctx, client, c, identity.UserID, logger)
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			source.Stop()
			d.Stop()
			if err := db.SaveChatSnapshot(c.Chats.Chats()); err != nil {
				logger.Warn("snapshot save failed", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			_ = db.Close()
			logger.Info("daemon stopped")
			return nil
		},
	})
}

// seedPresence queries presence for all DM counterparts in one call.
func seedPresence(ctx context.Context, client *api.Client, c *Containers, viewerID string, logger *zap.Logger) {
	seen := make(map[string]struct{})
	var userIDs []string
	for _, chat := range c.Chats.Chats() {
		if chat.Kind != model.KindDirect {
			continue
		}
		for _, m := range chat.Members {
			if m.UserID == viewerID {
				continue
			}
			if _, ok := seen[m.UserID]; !ok {
				seen[m.UserID] = struct{}{}
				userIDs = append(userIDs, m.UserID)
			}
		}
	}
	if len(userIDs) == 0 {
		return
	}

	entries, err := client.FetchPresence(ctx, userIDs)
	if err != nil {
		logger.Warn("presence seed failed", zap.Error(err))
		return
	}
	c.Presence.BulkInit(entries)
}
