// Package websocket maintains a persistent streaming connection to the OKX
// websocket API and routes inbound frames to per-subscription delivery
// queues.
//
// A Session owns one logical connection and drives it through an explicit
// state machine: Disconnected, Connecting, Connected, Authenticating, Ready,
// Reconnecting and the terminal Closed. Subscriptions are recorded as intent
// in a Registry decoupled from connection state; every time a connection
// reaches Ready the session replays the registry snapshot in a single
// subscribe frame, so transient disconnects recover transparently without
// losing or duplicating subscriptions.
//
// Only two failure classes surface to the caller: the initial Connect
// failing outright, and a permanent authentication rejection (where retrying
// the same login would fail identically). Everything else is handled inside
// the state machine with bounded exponential backoff and jitter.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"
	"github.com/veiloq/okx-connector/pkg/auth"
	"github.com/veiloq/okx-connector/pkg/logging"
)

// State is the lifecycle phase of a streaming session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Authenticating
	Ready
	Reconnecting
	Closed
)

// String returns the string representation of a session state
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Authenticating:
		return "authenticating"
	case Ready:
		return "ready"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config holds streaming session configuration.
type Config struct {
	// URL of the websocket endpoint (public or private).
	URL string

	// PingInterval is how often a text "ping" is sent while connected.
	// Defaults to 15s.
	PingInterval time.Duration

	// ReadTimeout bounds the silence tolerated on the transport. No frame
	// (including "pong") for this long counts as a dead connection.
	// Defaults to 30s.
	ReadTimeout time.Duration

	// DialTimeout bounds the websocket handshake. Defaults to 10s.
	DialTimeout time.Duration

	// LoginTimeout bounds the wait for a login acknowledgement. Defaults
	// to 10s.
	LoginTimeout time.Duration

	// ReconnectDelay is the initial backoff between reconnect attempts;
	// successive delays grow exponentially with jitter up to
	// MaxReconnectDelay. Defaults: 1s initial, 30s cap.
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration

	// MaxReconnectAttempts bounds attempts per disconnect before the
	// session gives up and closes. Defaults to 10.
	MaxReconnectAttempts uint

	// Optional logger
	Logger logging.Logger
}

func (c Config) withDefaults() Config {
	if c.PingInterval <= 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = 10 * time.Second
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = time.Second
	}
	if c.MaxReconnectDelay <= 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = 10
	}
	if c.Logger == nil {
		c.Logger = logging.NewLogger()
	}
	return c
}

const writeTimeout = 5 * time.Second

// Session owns one streaming connection and its subscription state.
// Sessions are independent; any number may run concurrently in a process.
type Session struct {
	cfg    Config
	creds  *auth.Credentials
	logger logging.Logger

	registry *Registry
	router   *router

	mu    sync.Mutex // guards conn, state, fatal
	conn  *websocket.Conn
	state State
	fatal error

	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewPublicSession creates a session for unauthenticated channels.
func NewPublicSession(cfg Config) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		cfg:      cfg,
		logger:   cfg.Logger,
		registry: NewRegistry(),
		router:   newRouter(cfg.Logger),
		state:    Disconnected,
		done:     make(chan struct{}),
	}
}

// NewPrivateSession creates a session that authenticates with the given
// credentials before subscribing.
func NewPrivateSession(cfg Config, creds auth.Credentials) *Session {
	s := NewPublicSession(cfg)
	s.creds = &creds
	return s
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the session reaches the terminal Closed state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session closed on its own: a permanent authentication
// rejection or an exhausted reconnect budget. It is nil after a caller
// initiated Close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

// Subscriptions returns a copy of the current subscription intent in
// insertion order. Mutation goes through Subscribe and Unsubscribe only, so
// the registry and the router can never disagree about a subscription.
func (s *Session) Subscriptions() []Channel {
	return s.registry.Snapshot()
}

// Connect establishes the transport, authenticates when credentials are
// present, replays recorded subscriptions and starts the session loop.
// A failure here is surfaced to the caller and is not retried — including
// transient login rejections and login timeouts, which only enter the
// reconnect loop once a session has been Ready. The session stays usable
// for another Connect attempt unless it was closed.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return ErrSessionClosed
	case Disconnected:
	default:
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if s.creds != nil {
		if err := s.creds.Validate(); err != nil {
			return err
		}
	}

	if err := s.establish(ctx); err != nil {
		s.setState(Disconnected)
		return err
	}

	go s.run()
	return nil
}

// Subscribe records the intent to receive a channel and returns its delivery
// queue. When the session is Ready the subscribe frame is sent immediately;
// otherwise it is sent on the next transition to Ready. Subscribing twice to
// the same channel returns the same queue.
func (s *Session) Subscribe(c Channel) (<-chan Message, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	added := s.registry.Add(c)
	q := s.router.open(c)

	if added && s.State() == Ready {
		if err := s.send(request{Op: opSubscribe, Args: []interface{}{c}}); err != nil {
			// Intent is recorded; the Ready entry action replays it after
			// the reconnect this failure is about to trigger.
			s.logger.Warn("subscribe send failed, will replay after reconnect",
				logging.String("channel", c.Name),
				logging.Error(err),
			)
		}
	}
	return q, nil
}

// Unsubscribe removes the subscription intent and closes its delivery queue.
func (s *Session) Unsubscribe(c Channel) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	removed := s.registry.Remove(c)
	s.router.close(c)

	if removed && s.State() == Ready {
		if err := s.send(request{Op: opUnsubscribe, Args: []interface{}{c}}); err != nil {
			s.logger.Warn("unsubscribe send failed",
				logging.String("channel", c.Name),
				logging.Error(err),
			)
		}
	}
	return nil
}

// Close drives the session to the terminal Closed state from any state,
// releasing the transport and all delivery queues. It is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = Closed
		conn := s.conn
		s.conn = nil
		s.mu.Unlock()

		close(s.done)

		if conn != nil {
			s.writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed"),
				time.Now().Add(writeTimeout))
			s.writeMu.Unlock()
			_ = conn.Close()
		}

		s.router.closeAll()
		s.logger.Info("session closed")
	})
	return nil
}

func (s *Session) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// setState moves the machine to the given state unless it is already Closed;
// Closed is terminal and never overwritten.
func (s *Session) setState(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed || s.state == next {
		return
	}
	s.logger.Debug("session state change",
		logging.String("from", s.state.String()),
		logging.String("to", next.String()),
	)
	s.state = next
}

// establish performs one full connection attempt: dial, optional login,
// transition to Ready and replay of the subscription snapshot.
func (s *Session) establish(ctx context.Context) error {
	s.setState(Connecting)

	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}
	s.setState(Connected)

	if s.creds != nil {
		s.setState(Authenticating)
		if err := s.login(conn); err != nil {
			_ = conn.Close()
			return err
		}
	}

	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		_ = conn.Close()
		return ErrSessionClosed
	}
	s.conn = conn
	s.state = Ready
	s.mu.Unlock()

	s.logger.Info("session ready",
		logging.String("url", s.cfg.URL),
		logging.Int("subscriptions", s.registry.Len()),
	)

	// Ready entry action: reconcile intent with the wire in one frame.
	if err := s.resubscribe(); err != nil {
		s.logger.Warn("resubscribe failed", logging.Error(err))
	}
	return nil
}

// login sends the signed login frame and waits for the acknowledgement,
// reading the connection inline since the session loop is not running yet.
func (s *Session) login(conn *websocket.Conn) error {
	timestamp := auth.LoginTimestamp()
	frame := request{Op: opLogin, Args: []interface{}{loginArgs{
		APIKey:     s.creds.APIKey,
		Passphrase: s.creds.Passphrase,
		Timestamp:  timestamp,
		Sign:       auth.LoginSignature(s.creds.APISecret, timestamp),
	}}}

	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode login frame: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("send login frame: %w", err)
	}

	deadline := time.Now().Add(s.cfg.LoginTimeout)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await login ack: %w", err)
		}
		if string(raw) == "pong" {
			continue
		}

		var f inboundFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		switch f.Event {
		case eventLogin:
			if f.Code == "" || f.Code == "0" {
				s.logger.Debug("login acknowledged")
				return nil
			}
			return &AuthError{Code: f.Code, Message: f.Msg}
		case eventError:
			return &AuthError{Code: f.Code, Message: f.Msg}
		default:
			// Stray frame from before the drop; ignore.
		}
	}
}

// resubscribe replays the registry snapshot in a single subscribe frame.
func (s *Session) resubscribe() error {
	snapshot := s.registry.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}
	args := make([]interface{}, len(snapshot))
	for i, c := range snapshot {
		args[i] = c
	}
	return s.send(request{Op: opSubscribe, Args: args})
}

// run is the session loop: read until the transport dies, then reconnect
// with backoff, until the session closes or recovery becomes impossible.
func (s *Session) run() {
	for {
		conn := s.currentConn()
		if conn == nil {
			return
		}

		err := s.readLoop(conn)
		if s.isClosed() {
			return
		}
		s.logger.Warn("transport lost", logging.Error(err))

		if err := s.reconnect(); err != nil {
			// A caller-initiated Close surfaces here either as
			// ErrSessionClosed or as context.Canceled when the done
			// watcher cancels a backoff sleep. Neither is a session
			// failure, so neither is recorded.
			if s.isClosed() || errors.Is(err, ErrSessionClosed) || errors.Is(err, context.Canceled) {
				return
			}
			s.mu.Lock()
			s.fatal = err
			s.mu.Unlock()
			s.logger.Error("abandoning session", logging.Error(err))
			_ = s.Close()
			return
		}
	}
}

// maxDecodeFailures bounds consecutive undecodable frames tolerated on one
// connection. A burst of garbage means the stream itself is corrupt, not a
// single mangled frame, so the connection is recycled.
const maxDecodeFailures = 5

// readLoop pumps frames from one connection until it fails. A ping loop
// runs alongside it for the lifetime of the connection.
func (s *Session) readLoop(conn *websocket.Conn) error {
	stopPing := make(chan struct{})
	go s.pingLoop(conn, stopPing)
	defer close(stopPing)
	defer conn.Close()

	decodeFailures := 0
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if s.handleFrame(raw) {
			decodeFailures = 0
			continue
		}
		decodeFailures++
		if decodeFailures >= maxDecodeFailures {
			return fmt.Errorf("%d consecutive undecodable frames", decodeFailures)
		}
	}
}

// pingLoop sends the OKX text heartbeat at the configured interval. Any
// inbound frame (the "pong" included) refreshes the read deadline, so a
// silent transport trips the deadline and the read loop reports it.
func (s *Session) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		case <-s.done:
			return
		}
	}
}

// handleFrame decodes one inbound frame and dispatches it, reporting
// whether the frame decoded. An isolated failure drops the frame; the read
// loop escalates a consecutive burst into a reconnect.
func (s *Session) handleFrame(raw []byte) bool {
	if string(raw) == "pong" {
		return true
	}

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.logger.Warn("dropping undecodable frame", logging.Error(err))
		return false
	}

	if frame.Event != "" {
		s.handleEvent(frame)
		return true
	}
	s.router.route(frame, time.Now())
	return true
}

func (s *Session) handleEvent(frame inboundFrame) {
	switch frame.Event {
	case eventSubscribe, eventUnsubscribe:
		channel := ""
		if frame.Arg != nil {
			channel = frame.Arg.Name
		}
		s.logger.Debug("subscription acknowledged",
			logging.String("event", frame.Event),
			logging.String("channel", channel),
		)
	case eventError:
		// Per-frame errors (bad channel name, malformed request) are
		// diagnostics, not session failures.
		s.logger.Warn("server error event",
			logging.String("code", frame.Code),
			logging.String("msg", frame.Msg),
		)
	default:
		s.logger.Debug("server event", logging.String("event", frame.Event))
	}
}

// reconnect re-establishes the connection with bounded exponential backoff
// and jitter. It returns nil once the session is Ready again, or the final
// error when recovery is abandoned: session closed, permanent auth
// rejection, or attempt budget exhausted.
func (s *Session) reconnect() error {
	s.setState(Reconnecting)

	// close() must cancel a reconnect that is sleeping in backoff.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	return retry.Do(
		func() error {
			if s.isClosed() {
				return retry.Unrecoverable(ErrSessionClosed)
			}
			err := s.establish(ctx)
			if err == nil {
				return nil
			}
			var authErr *AuthError
			if errors.As(err, &authErr) && authErr.Permanent() {
				return retry.Unrecoverable(err)
			}
			s.setState(Reconnecting)
			return err
		},
		retry.Attempts(s.cfg.MaxReconnectAttempts),
		retry.Delay(s.cfg.ReconnectDelay),
		retry.MaxDelay(s.cfg.MaxReconnectDelay),
		retry.MaxJitter(s.cfg.ReconnectDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("reconnect attempt failed",
				logging.Int("attempt", int(n+1)),
				logging.Error(err),
			)
		}),
	)
}

func (s *Session) currentConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// send marshals and writes one frame on the current connection.
func (s *Session) send(v interface{}) error {
	conn := s.currentConn()
	if conn == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
