package session

import (
	"context"
	"sync"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/pkg/logger"
	"github.com/levanminh04/Network-Programming/protocol/wire"
)

// socketLifecycle is the subset of the connection manager used for wiring.
type socketLifecycle interface {
	OnConnect(fn func())
	OnDisconnect(fn func(reason string))
	OnExhausted(fn func(attempts int))
	OnEnvelope(fn func(wire.Envelope))
}

// actorInbox is the minimal Actor API the wiring needs.
type actorInbox interface {
	Send(ctx context.Context, input actor.Input) error
}

// router maps envelopes to events.
type router interface {
	Route(env wire.Envelope) (game.Event, bool)
}

// wireActorToSocket registers socket callbacks that feed the game actor.
//
// Callbacks never block: inputs go onto an unbounded FIFO drained by one
// goroutine until ctx is done. The socket reader therefore keeps answering
// heartbeats while the actor works through a backlog, and no routed event
// is dropped or reordered against connection signals.
func wireActorToSocket(ctx context.Context, a actorInbox, sock socketLifecycle, r router) {
	if a == nil || sock == nil || r == nil {
		return
	}

	q := newInputQueue()
	go q.drain(ctx, a)

	sock.OnConnect(func() {
		q.push(game.Connected{})
	})
	sock.OnDisconnect(func(reason string) {
		q.push(game.Disconnected{Reason: reason})
	})
	sock.OnExhausted(func(attempts int) {
		q.push(game.ConnectivityExhausted{Attempts: attempts})
	})
	sock.OnEnvelope(func(env wire.Envelope) {
		ev, ok := r.Route(env)
		if !ok {
			return
		}
		q.push(ev)
	})
}

type inputQueue struct {
	mu    sync.Mutex
	items []actor.Input
	wake  chan struct{}
}

func newInputQueue() *inputQueue {
	return &inputQueue{wake: make(chan struct{}, 1)}
}

func (q *inputQueue) push(in actor.Input) {
	q.mu.Lock()
	q.items = append(q.items, in)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *inputQueue) take() []actor.Input {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *inputQueue) drain(ctx context.Context, a actorInbox) {
	for {
		for _, in := range q.take() {
			if err := a.Send(ctx, in); err != nil {
				if ctx.Err() == nil {
					logger.Named("session").Debugf("stop feeding actor: %v", err)
				}
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}
	}
}
