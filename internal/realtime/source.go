package realtime

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MrJorjinio/simpchat-client/internal/bus"
	"github.com/MrJorjinio/simpchat-client/internal/status"
)

const redialDelay = 5 * time.Second

// Source connects to the server's realtime hub and publishes every decoded
// push as an "rt.*" bus event. It owns the connection lifecycle (dial, read
// loop, redial); the state containers downstream never see transport details.
type Source struct {
	hubURL  string
	token   string
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSource creates a realtime source for the given hub endpoint.
// serverURL is the http(s) API base; path is the hub path on it.
func NewSource(serverURL, path, token string, b *bus.Bus, machine *status.Machine, logger *zap.Logger) (*Source, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	return &Source{
		hubURL:  u.String(),
		token:   token,
		bus:     b,
		machine: machine,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start begins the dial/read/redial loop in the background.
func (s *Source) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

// Stop tears down the connection and waits for the loop to exit.
func (s *Source) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Source) run(ctx context.Context) {
	defer close(s.done)
	for {
		if err := s.connectAndRead(ctx); err != nil {
			s.logger.Warn("realtime connection lost", zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
		_ = s.machine.Transition(status.Reconnecting)
		s.bus.Emit("session.disconnected", nil)

		select {
		case <-time.After(redialDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Source) connectAndRead(ctx context.Context) error {
	_ = s.machine.Transition(status.Connecting)

	header := http.Header{"Authorization": {"Bearer " + s.token}}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.hubURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			_ = s.machine.Transition(status.AuthRequired)
			s.bus.Emit("session.auth_required", nil)
		}
		return err
	}
	defer func() { _ = conn.Close() }()

	_ = s.machine.Transition(status.Connected)
	s.bus.Emit("session.connected", nil)
	s.logger.Info("realtime hub connected", zap.String("url", s.hubURL))

	// Close the socket when the context is canceled so ReadJSON unblocks.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return err
		}
		decoded, err := Decode(frame)
		if err != nil {
			// Unknown or malformed pushes are logged and skipped; the
			// next full reload corrects any divergence they caused.
			s.logger.Warn("dropping realtime frame", zap.String("event", frame.Event), zap.Error(err))
			continue
		}
		s.bus.Emit(decoded.Kind, decoded.Payload)
	}
}
