package game

import (
	"context"
	"sync"
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/pkg/logger"
)

// Sender transmits one outbound message. The send gateway implements it.
type Sender interface {
	Send(msgType string, payload any) error
}

// Reconnector triggers a manual reconnect.
type Reconnector interface {
	Reconnect()
}

// Persister stores sessions and finished games.
type Persister interface {
	SaveSession(ctx context.Context, s Session) error
	ClearSession(ctx context.Context) error
	RecordGame(ctx context.Context, rec GameRecord, endedAt time.Time) error
}

// RuntimeConfig wires the runtime to its collaborators. Nil collaborators
// turn the matching effects into no-ops (a nil Sender fails every send).
type RuntimeConfig struct {
	Sender         Sender
	Reconnector    Reconnector
	Persister      Persister
	Clock          actor.Clock
	// Scheduler runs named timers. Nil uses time.AfterFunc.
	Scheduler      actor.Scheduler
	OutboxSize     int
	PersistTimeout time.Duration
}

// Runtime interprets the reducer's effects.
//
// Sends run on a single outbox goroutine so they leave in the order the
// reducer produced them without blocking the actor loop.
type Runtime struct {
	cfg RuntimeConfig
	log *logger.Logger

	outbox   chan func()
	stopCh   chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	timers map[string]actor.Timer
}

var _ actor.Runtime = (*Runtime)(nil)

// NewRuntime creates a Runtime and starts its outbox.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.Clock == nil {
		cfg.Clock = actor.RealClock{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = actor.RealScheduler{}
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = 64
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	r := &Runtime{
		cfg:    cfg,
		log:    logger.Named("game"),
		outbox: make(chan func(), cfg.OutboxSize),
		stopCh: make(chan struct{}),
		timers: make(map[string]actor.Timer),
	}
	go r.drain()
	return r
}

func (r *Runtime) drain() {
	for {
		select {
		case <-r.stopCh:
			return
		case fn := <-r.outbox:
			fn()
		}
	}
}

// HandleEffects implements actor.Runtime.
func (r *Runtime) HandleEffects(ctx context.Context, effects []actor.Effect, emit func(actor.Input)) {
	for _, eff := range effects {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch e := eff.(type) {
		case effSend:
			r.enqueueSend(ctx, e, emit)
		case effStartTimer:
			r.startTimer(ctx, e, emit)
		case effCancelTimer:
			r.cancelTimer(e.Name)
		case effReconnect:
			if r.cfg.Reconnector != nil {
				r.cfg.Reconnector.Reconnect()
			}
		case effPersistSession:
			r.persist(ctx, "save session", func(ctx context.Context, p Persister) error {
				return p.SaveSession(ctx, e.Session)
			})
		case effClearSession:
			r.persist(ctx, "clear session", func(ctx context.Context, p Persister) error {
				return p.ClearSession(ctx)
			})
		case effRecordGame:
			endedAt := r.cfg.Clock.Now()
			r.persist(ctx, "record game", func(ctx context.Context, p Persister) error {
				return p.RecordGame(ctx, e.Record, endedAt)
			})
		default:
			r.log.Debugf("ignoring effect %T", eff)
		}
	}
}

// Stop implements actor.Runtime.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range r.timers {
		t.Stop()
		delete(r.timers, name)
	}
}

func (r *Runtime) enqueueSend(ctx context.Context, e effSend, emit func(actor.Input)) {
	job := func() { r.send(ctx, e, emit) }
	select {
	case r.outbox <- job:
	case <-ctx.Done():
	case <-r.stopCh:
	}
}

func (r *Runtime) send(ctx context.Context, e effSend, emit func(actor.Input)) {
	if ctx.Err() != nil {
		return
	}
	events := e.OnSent
	if r.cfg.Sender == nil {
		r.log.Warnf("no sender configured; dropping %s", e.Type)
		events = e.OnFail
	} else if err := r.cfg.Sender.Send(e.Type, e.Payload); err != nil {
		r.log.Debugf("send %s failed: %v", e.Type, err)
		events = e.OnFail
	}
	for _, ev := range events {
		if ctx.Err() != nil {
			return
		}
		emit(ev)
	}
}

// startTimer schedules a single named timer and emits TimerFired when it
// fires. Starting a name that is already scheduled replaces it.
func (r *Runtime) startTimer(ctx context.Context, e effStartTimer, emit func(actor.Input)) {
	if e.Name == "" || e.After <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev := r.timers[e.Name]; prev != nil {
		prev.Stop()
	}
	r.timers[e.Name] = r.cfg.Scheduler.AfterFunc(e.After, func() {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		default:
		}
		emit(TimerFired{Name: e.Name, Gen: e.Gen})
	})
}

func (r *Runtime) cancelTimer(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t := r.timers[name]; t != nil {
		t.Stop()
		delete(r.timers, name)
	}
}

func (r *Runtime) persist(ctx context.Context, what string, fn func(context.Context, Persister) error) {
	p := r.cfg.Persister
	if p == nil {
		return
	}
	// Persistence outlives the actor context so a logout right before
	// shutdown still clears the stored session.
	base := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(base, r.cfg.PersistTimeout)
		defer cancel()
		if err := fn(ctx, p); err != nil {
			r.log.Warnf("%s: %v", what, err)
		}
	}()
}
