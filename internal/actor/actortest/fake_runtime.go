// Package actortest provides test helpers for the actor package.
package actortest

import (
	"context"
	"sync"

	"github.com/levanminh04/Network-Programming/internal/actor"
)

// FakeRuntime records effects and can synthesize follow-up inputs through
// EmitFn.
type FakeRuntime struct {
	mu sync.Mutex

	effects []actor.Effect
	stopped bool

	// EmitFn, when non-nil, is invoked for each effect during HandleEffects.
	EmitFn func(ctx context.Context, eff actor.Effect, emit func(actor.Input))
}

var _ actor.Runtime = (*FakeRuntime)(nil)

// HandleEffects implements actor.Runtime.
func (r *FakeRuntime) HandleEffects(ctx context.Context, effects []actor.Effect, emit func(actor.Input)) {
	r.mu.Lock()
	r.effects = append(r.effects, effects...)
	emitFn := r.EmitFn
	r.mu.Unlock()

	if emitFn == nil {
		return
	}
	for _, eff := range effects {
		emitFn(ctx, eff, emit)
	}
}

// Stop implements actor.Runtime.
func (r *FakeRuntime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

// Stopped reports whether Stop was called.
func (r *FakeRuntime) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Effects returns a copy of the recorded effects.
func (r *FakeRuntime) Effects() []actor.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]actor.Effect, len(r.effects))
	copy(out, r.effects)
	return out
}

// Reset clears recorded effects.
func (r *FakeRuntime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = nil
}

// EffectsOf returns the recorded effects of type T, in order.
func EffectsOf[T actor.Effect](effects []actor.Effect) []T {
	var out []T
	for _, eff := range effects {
		if v, ok := eff.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
