// Package websocket owns the transport connection to the game server.
//
// A Manager keeps at most one socket open, answers heartbeats itself and
// reconnects with exponential backoff until a fixed number of attempts is
// used up.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/pkg/logger"
	"github.com/levanminh04/Network-Programming/protocol/wire"
)

var (
	// ErrNotConnected is returned by Send when no socket is open.
	ErrNotConnected = errors.New("websocket not connected")
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("connection manager closed")
)

// State is the transport state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config controls dialing and the reconnect policy.
type Config struct {
	URL              string
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	MaxAttempts      int
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Header           http.Header
}

func (c Config) withDefaults() Config {
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 10 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	return c
}

// Dialer opens WebSocket connections. *gws.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*gws.Conn, *http.Response, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the default gorilla dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithScheduler replaces the timer source used for reconnect backoff.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

// WithSessionID supplies the session id stamped on heartbeat replies.
func WithSessionID(fn func() string) Option {
	return func(m *Manager) { m.sessionID = fn }
}

// Manager maintains one logical connection to the server.
type Manager struct {
	cfg       Config
	dialer    Dialer
	sched     Scheduler
	sessionID func() string
	log       *logger.Logger

	mu         sync.Mutex
	state      State
	conn       *gws.Conn
	gen        uint64
	attempts   int
	exhausted  bool
	retry      Timer
	dialCancel context.CancelFunc
	closed     bool

	onConnect    func()
	onDisconnect func(reason string)
	onEnvelope   func(wire.Envelope)
	onExhausted  func(attempts int)

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewManager creates a Manager. Nothing is dialed until Start.
func NewManager(cfg Config, opts ...Option) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		cfg:       cfg,
		dialer:    &gws.Dialer{HandshakeTimeout: cfg.HandshakeTimeout, Proxy: http.ProxyFromEnvironment},
		sched:     actor.RealScheduler{},
		sessionID: func() string { return "" },
		log:       logger.Named("ws"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnConnect registers the callback invoked each time a socket opens.
func (m *Manager) OnConnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnect = fn
}

// OnDisconnect registers the callback invoked when a socket closes or a dial
// attempt fails.
func (m *Manager) OnDisconnect(fn func(reason string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnect = fn
}

// OnEnvelope registers the callback for decoded inbound envelopes. It runs on
// the reader goroutine, in arrival order.
func (m *Manager) OnEnvelope(fn func(wire.Envelope)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnvelope = fn
}

// OnExhausted registers the callback invoked once the reconnect attempts are
// spent.
func (m *Manager) OnExhausted(fn func(attempts int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExhausted = fn
}

// Start dials the server.
func (m *Manager) Start() {
	m.connect()
}

// Reconnect is the explicit trigger after retries are exhausted. It resets the
// attempt counter, cancels any pending retry and dials immediately.
func (m *Manager) Reconnect() {
	m.mu.Lock()
	m.attempts = 0
	m.exhausted = false
	m.mu.Unlock()
	m.connect()
}

// State returns the current transport state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsOpen reports whether a socket is open.
func (m *Manager) IsOpen() bool {
	return m.State() == StateOpen
}

// Exhausted reports whether automatic retries have stopped.
func (m *Manager) Exhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exhausted
}

// Send writes env to the open socket.
func (m *Manager) Send(env wire.Envelope) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	conn := m.conn
	if m.state != StateOpen || conn == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	m.mu.Unlock()

	if err := m.write(conn, env); err != nil {
		return fmt.Errorf("send %s: %w", env.Type, err)
	}
	m.log.Debugf("sent %s (%s)", env.Type, env.CorrelationID)
	return nil
}

// Close cancels any pending retry or dial, closes the socket and waits for
// the manager's goroutines to exit. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.stopRetryLocked()
	if m.dialCancel != nil {
		m.dialCancel()
		m.dialCancel = nil
	}
	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	var err error
	if conn != nil {
		msg := gws.FormatCloseMessage(gws.CloseNormalClosure, "client closing")
		_ = conn.WriteControl(gws.CloseMessage, msg, time.Now().Add(time.Second))
		err = conn.Close()
	}
	m.wg.Wait()
	return err
}

func (m *Manager) stopRetryLocked() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
}

// connect starts a dial unless the manager is closed or a socket is already
// open or being dialed.
func (m *Manager) connect() {
	m.mu.Lock()
	if m.closed || m.state != StateDisconnected {
		m.mu.Unlock()
		return
	}
	m.stopRetryLocked()
	m.gen++
	gen := m.gen
	m.state = StateConnecting
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	m.dialCancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	m.log.Debugf("dialing %s (gen %d)", m.cfg.URL, gen)
	go m.dial(ctx, cancel, gen)
}

func (m *Manager) dial(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer m.wg.Done()
	defer cancel()

	conn, resp, err := m.dialer.DialContext(ctx, m.cfg.URL, m.cfg.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		m.handleDown(gen, fmt.Sprintf("dial: %v", err))
		return
	}

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.state = StateOpen
	m.attempts = 0
	m.exhausted = false
	m.dialCancel = nil
	onConnect := m.onConnect
	m.wg.Add(1)
	m.mu.Unlock()

	m.log.Infof("connected to %s", m.cfg.URL)
	if onConnect != nil {
		onConnect()
	}
	go m.readLoop(conn, gen)
}

func (m *Manager) readLoop(conn *gws.Conn, gen uint64) {
	defer m.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			m.handleDown(gen, closeReason(err))
			return
		}

		env, err := wire.Decode(data)
		if err != nil {
			m.log.Debugf("dropping frame: %v", err)
			continue
		}
		if env.Type == wire.TypePing {
			m.replyPong(conn)
			continue
		}

		m.log.Tracef("recv %s", env.Type)
		m.mu.Lock()
		fn := m.onEnvelope
		m.mu.Unlock()
		if fn != nil {
			fn(env)
		}
	}
}

func (m *Manager) replyPong(conn *gws.Conn) {
	env, err := wire.Encode(wire.TypePong, wire.Pong{}, m.sessionID())
	if err != nil {
		m.log.Errorf("encode pong: %v", err)
		return
	}
	if err := m.write(conn, env); err != nil {
		m.log.Warnf("pong: %v", err)
		return
	}
	m.log.Tracef("ping answered")
}

func (m *Manager) write(conn *gws.Conn, env wire.Envelope) error {
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
	return conn.WriteMessage(gws.TextMessage, data)
}

// handleDown records the loss of connection generation gen and schedules the
// next attempt, or reports exhaustion.
func (m *Manager) handleDown(gen uint64, reason string) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = StateDisconnected
	m.dialCancel = nil
	onDisconnect := m.onDisconnect

	var (
		onExhausted func(int)
		attempts    int
		delay       time.Duration
	)
	if m.attempts >= m.cfg.MaxAttempts {
		m.exhausted = true
		onExhausted = m.onExhausted
		attempts = m.attempts
	} else {
		m.attempts++
		attempts = m.attempts
		delay = BackoffDelay(m.attempts, m.cfg.BackoffBase, m.cfg.BackoffCap)
		m.stopRetryLocked()
		m.retry = m.sched.AfterFunc(delay, m.connect)
	}
	m.mu.Unlock()

	if onDisconnect != nil {
		onDisconnect(reason)
	}
	if onExhausted != nil {
		m.log.Errorf("giving up after %d reconnect attempts: %s", attempts, reason)
		onExhausted(attempts)
		return
	}
	m.log.Warnf("connection down (%s); retry %d/%d in %s", reason, attempts, m.cfg.MaxAttempts, delay)
}

func closeReason(err error) string {
	var ce *gws.CloseError
	if errors.As(err, &ce) {
		if ce.Text != "" {
			return fmt.Sprintf("closed %d: %s", ce.Code, ce.Text)
		}
		return fmt.Sprintf("closed %d", ce.Code)
	}
	return err.Error()
}
