// Package session assembles the client: connection, router, state machine,
// effect runtime, send gateway, round timer and persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/auth"
	"github.com/levanminh04/Network-Programming/internal/config"
	"github.com/levanminh04/Network-Programming/internal/dispatch"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/internal/gateway"
	"github.com/levanminh04/Network-Programming/internal/roundtimer"
	"github.com/levanminh04/Network-Programming/internal/storage"
	"github.com/levanminh04/Network-Programming/internal/websocket"
	"github.com/levanminh04/Network-Programming/pkg/logger"
)

// Snapshot is what presentation layers render.
type Snapshot struct {
	State      game.State `json:"state"`
	Countdown  int        `json:"countdown"`
	Connection string     `json:"connection"`
}

// Options configures a Manager. Config is required; the rest default.
type Options struct {
	Config *config.Config
	// Store persists sessions and history. Nil uses a MemoryStore.
	Store storage.Store
	// Clock stamps requests and drives the round countdown. When it also
	// implements actor.Scheduler it runs the state machine's named timers.
	Clock actor.Clock

	// Dialer and Scheduler override the connection manager's defaults.
	Dialer    websocket.Dialer
	Scheduler websocket.Scheduler
}

// Manager owns one client session.
type Manager struct {
	cfg   *config.Config
	clock actor.Clock
	store storage.Store
	log   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	conn    *websocket.Manager
	router  *dispatch.Router
	runtime *game.Runtime
	actor   *actor.Actor[game.State]
	gateway *gateway.Gateway
	timer   *roundtimer.Timer

	mu        sync.Mutex
	countdown int
	subs      map[int]chan Snapshot
	nextSub   int

	closeOnce sync.Once
	closeErr  error
}

// New builds a Manager. Nothing runs until Start.
func New(opts Options) (*Manager, error) {
	if opts.Config == nil {
		return nil, errors.New("session: config is required")
	}
	cfg := opts.Config
	if opts.Clock == nil {
		opts.Clock = actor.RealClock{}
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:    cfg,
		clock:  opts.Clock,
		store:  opts.Store,
		log:    logger.Named("session"),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[int]chan Snapshot),
	}

	connOpts := []websocket.Option{websocket.WithSessionID(m.sessionID)}
	if opts.Dialer != nil {
		connOpts = append(connOpts, websocket.WithDialer(opts.Dialer))
	}
	if opts.Scheduler != nil {
		connOpts = append(connOpts, websocket.WithScheduler(opts.Scheduler))
	}
	m.conn = websocket.NewManager(websocket.Config{
		URL:              cfg.Server.URL,
		BackoffBase:      cfg.Reconnect.BaseDelay,
		BackoffCap:       cfg.Reconnect.MaxDelay,
		MaxAttempts:      cfg.Reconnect.MaxAttempts,
		HandshakeTimeout: cfg.Server.HandshakeTimeout,
	}, connOpts...)

	m.router = dispatch.New(dispatch.WithNow(m.clock.Now))
	m.gateway = gateway.New(m.conn, m.sessionID, func(ev game.Event) {
		if m.actor != nil {
			_ = m.actor.Enqueue(ev)
		}
	})
	timers, _ := m.clock.(actor.Scheduler)
	m.runtime = game.NewRuntime(game.RuntimeConfig{
		Sender:      m.gateway,
		Reconnector: m.conn,
		Persister:   storePersister{store: m.store, clock: m.clock},
		Clock:       m.clock,
		Scheduler:   timers,
	})

	reducer := game.NewReducer(game.Settings{
		ReturnToLobbyDelay: cfg.Game.ReturnToLobbyDelay,
		LeaderboardLimit:   cfg.Game.LeaderboardLimit,
	})
	m.actor = actor.New[game.State](game.Initial(), reducer.Reduce, m.runtime,
		actor.WithHooks(actor.Hooks[game.State]{
			OnTransition: m.onTransition,
			OnPanic: func(r any) {
				m.log.Errorf("state machine panic: %v", r)
			},
		}),
	)
	m.timer = roundtimer.New(m.clock, cfg.Game.CountdownInterval, m.onTick)

	wireActorToSocket(m.ctx, m.actor, m.conn, m.router)
	return m, nil
}

// Start restores a stored session if configured, then starts the state
// machine and dials the server.
func (m *Manager) Start(ctx context.Context) error {
	if m.cfg.Session.Restore {
		if err := m.restore(ctx); err != nil {
			m.log.Warnf("session restore: %v", err)
		}
	}
	m.actor.Start()
	m.conn.Start()
	return nil
}

// Run starts the manager and blocks until ctx is done, then closes it.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return m.Close()
}

func (m *Manager) restore(ctx context.Context) error {
	rec, err := m.store.LoadSession(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !auth.SessionUsable(rec.Token, rec.ExpiresAt, m.clock.Now()) {
		m.log.Infof("stored session for %s expired; clearing", rec.Username)
		return m.store.ClearSession(ctx)
	}
	m.log.Infof("restoring session for %s", rec.Username)
	if !m.actor.Enqueue(game.SessionRestored{Session: sessionFromRecord(rec)}) {
		return fmt.Errorf("enqueue restored session: %w", actor.ErrMailboxFull)
	}
	return nil
}

// Close tears everything down. It is safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		connErr := m.conn.Close()
		m.cancel()
		m.actor.Stop()
		m.timer.Stop()
		storeErr := m.store.Close()

		m.mu.Lock()
		for id, ch := range m.subs {
			close(ch)
			delete(m.subs, id)
		}
		m.mu.Unlock()

		m.closeErr = errors.Join(connErr, storeErr)
	})
	return m.closeErr
}

// Dispatch offers a user intent to the state machine.
func (m *Manager) Dispatch(in actor.Input) error {
	return m.actor.TryEnqueue(in)
}

// NowMs is the timestamp stamped on match and play requests.
func (m *Manager) NowMs() int64 {
	return m.clock.Now().UnixMilli()
}

// State returns the current application state.
func (m *Manager) State() game.State {
	return m.actor.State()
}

// Snapshot returns the state with the live countdown and transport state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	countdown := m.countdown
	m.mu.Unlock()
	return Snapshot{
		State:      m.actor.State(),
		Countdown:  countdown,
		Connection: m.conn.State().String(),
	}
}

// Connection returns the transport state name.
func (m *Manager) Connection() string {
	return m.conn.State().String()
}

// RecentGames returns stored game history, newest first.
func (m *Manager) RecentGames(ctx context.Context, limit int) ([]storage.GameRecord, error) {
	return m.store.RecentGames(ctx, limit)
}

// Subscribe returns a channel receiving a Snapshot after every transition and
// countdown change. Slow subscribers miss intermediate snapshots, never the
// latest one. The returned func unsubscribes.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			close(c)
			delete(m.subs, id)
		}
	}
}

func (m *Manager) sessionID() string {
	if m.actor == nil {
		return ""
	}
	return m.actor.State().SessionID()
}

func (m *Manager) onTransition(prev, next game.State, _ actor.Input) {
	if next.View != game.ViewGame {
		m.timer.SetDeadline(0)
	} else {
		m.timer.SetDeadline(next.Round.DeadlineMs)
	}
	if prev.View != next.View {
		m.log.Debugf("view %s -> %s", prev.View, next.View)
	}
	m.mu.Lock()
	m.countdown = m.timer.Remaining()
	m.mu.Unlock()
	m.publish(next)
}

func (m *Manager) onTick(remaining int) {
	m.mu.Lock()
	m.countdown = remaining
	m.mu.Unlock()
	m.publish(m.actor.State())
}

func (m *Manager) publish(state game.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{State: state, Countdown: m.countdown, Connection: m.conn.State().String()}
	for _, ch := range m.subs {
		// Replace a stale pending snapshot with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
