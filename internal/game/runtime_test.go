package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/actor/actortest"
	"github.com/levanminh04/Network-Programming/protocol/wire"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (s *recordingSender) Send(msgType string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = append(s.types, msgType)
	return s.err
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.types...)
}

type recordingPersister struct {
	saved   chan Session
	cleared chan struct{}
	games   chan GameRecord
	endedAt chan time.Time
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{
		saved:   make(chan Session, 4),
		cleared: make(chan struct{}, 4),
		games:   make(chan GameRecord, 4),
		endedAt: make(chan time.Time, 4),
	}
}

func (p *recordingPersister) SaveSession(_ context.Context, s Session) error {
	p.saved <- s
	return nil
}

func (p *recordingPersister) ClearSession(context.Context) error {
	p.cleared <- struct{}{}
	return nil
}

func (p *recordingPersister) RecordGame(_ context.Context, rec GameRecord, endedAt time.Time) error {
	p.games <- rec
	p.endedAt <- endedAt
	return nil
}

type countingReconnector struct {
	mu    sync.Mutex
	calls int
}

func (r *countingReconnector) Reconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func collect() (func(actor.Input), <-chan actor.Input) {
	ch := make(chan actor.Input, 16)
	return func(in actor.Input) { ch <- in }, ch
}

func await(t *testing.T, ch <-chan actor.Input) actor.Input {
	t.Helper()
	select {
	case in := <-ch:
		return in
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emitted input")
		return nil
	}
}

func TestRuntimeSendEmitsOutcomeEvents(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	rt := NewRuntime(RuntimeConfig{Sender: sender})
	defer rt.Stop()

	emit, got := collect()
	ctx := context.Background()
	rt.HandleEffects(ctx, []actor.Effect{
		effSend{Type: wire.TypeMatchRequest, OnSent: []Event{MatchmakingStarted{}}, OnFail: []Event{ErrorRaised{}}},
		effSend{Type: wire.TypeMatchCancel, OnSent: []Event{MatchmakingCanceled{}}},
	}, emit)

	require.Equal(t, MatchmakingStarted{}, await(t, got))
	require.Equal(t, MatchmakingCanceled{}, await(t, got))
	require.Equal(t, []string{wire.TypeMatchRequest, wire.TypeMatchCancel}, sender.sent())
}

func TestRuntimeSendFailureEmitsOnFail(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{err: errors.New("socket closed")}
	rt := NewRuntime(RuntimeConfig{Sender: sender})
	defer rt.Stop()

	emit, got := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{
		effSend{Type: wire.TypeLogoutRequest, OnSent: []Event{ErrorRaised{}}, OnFail: []Event{LoggedOut{}}},
	}, emit)

	require.Equal(t, LoggedOut{}, await(t, got))
}

func TestRuntimeWithoutSenderFailsSends(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(RuntimeConfig{})
	defer rt.Stop()

	emit, got := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{
		effSend{Type: wire.TypeMatchCancel, OnFail: []Event{MatchmakingCanceled{}}},
	}, emit)

	require.Equal(t, MatchmakingCanceled{}, await(t, got))
}

func TestRuntimeTimerFiresWithGeneration(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(RuntimeConfig{})
	defer rt.Stop()

	emit, got := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{
		effStartTimer{Name: timerReturnToLobby, After: 10 * time.Millisecond, Gen: 7},
	}, emit)

	require.Equal(t, TimerFired{Name: timerReturnToLobby, Gen: 7}, await(t, got))
}

func TestRuntimeCancelledTimerStaysQuiet(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(RuntimeConfig{})
	defer rt.Stop()

	emit, got := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{
		effStartTimer{Name: timerReturnToLobby, After: 30 * time.Millisecond, Gen: 1},
		effCancelTimer{Name: timerReturnToLobby},
	}, emit)

	require.Never(t, func() bool { return len(got) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestRuntimeRestartReplacesTimer(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(RuntimeConfig{})
	defer rt.Stop()

	emit, got := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{
		effStartTimer{Name: timerReturnToLobby, After: 20 * time.Millisecond, Gen: 1},
		effStartTimer{Name: timerReturnToLobby, After: 40 * time.Millisecond, Gen: 2},
	}, emit)

	require.Equal(t, TimerFired{Name: timerReturnToLobby, Gen: 2}, await(t, got))
	require.Never(t, func() bool { return len(got) > 0 }, 60*time.Millisecond, 10*time.Millisecond)
}

func TestRuntimeTimerFollowsScheduler(t *testing.T) {
	t.Parallel()

	clock := actortest.NewFakeClock(time.UnixMilli(t0))
	rt := NewRuntime(RuntimeConfig{Clock: clock, Scheduler: clock})
	defer rt.Stop()

	emit, got := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{
		effStartTimer{Name: timerReturnToLobby, After: 3 * time.Second, Gen: 4},
	}, emit)
	require.Equal(t, 1, clock.Pending())

	clock.Advance(2999 * time.Millisecond)
	require.Empty(t, got)

	clock.Advance(time.Millisecond)
	require.Equal(t, TimerFired{Name: timerReturnToLobby, Gen: 4}, await(t, got))
	require.Zero(t, clock.Pending())

	rt.HandleEffects(context.Background(), []actor.Effect{
		effStartTimer{Name: timerReturnToLobby, After: 3 * time.Second, Gen: 5},
		effCancelTimer{Name: timerReturnToLobby},
	}, emit)
	require.Zero(t, clock.Pending())
	clock.Advance(time.Minute)
	require.Empty(t, got)
}

// TestOpponentLeftReturnsToLobbyAfterDelay runs the grace period end to end
// on a live actor with a fake clock.
func TestOpponentLeftReturnsToLobbyAfterDelay(t *testing.T) {
	t.Parallel()

	clock := actortest.NewFakeClock(time.UnixMilli(t0))
	rt := NewRuntime(RuntimeConfig{Clock: clock, Scheduler: clock})
	a := actor.New[State](roundState(), Reduce, rt)
	a.Start()
	defer a.Stop()

	require.True(t, a.Enqueue(OpponentLeft{}))
	require.Eventually(t, func() bool { return clock.Pending() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, ViewGame, a.State().View)

	clock.Advance(DefaultSettings().ReturnToLobbyDelay)
	require.Eventually(t, func() bool {
		return a.State().View == ViewLobby
	}, 2*time.Second, 5*time.Millisecond)
	require.False(t, a.State().ReturnPending)
}

func TestRuntimePersistence(t *testing.T) {
	t.Parallel()

	ended := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newRecordingPersister()
	rt := NewRuntime(RuntimeConfig{Persister: store, Clock: actortest.NewFakeClock(ended)})
	defer rt.Stop()

	emit, _ := collect()
	sess := Session{ID: "s-1", User: User{ID: "1", Username: "ann"}}
	rec := GameRecord{MatchID: "m-1", Result: OutcomeWin, PlayerScore: 2, OpponentScore: 1}
	rt.HandleEffects(context.Background(), []actor.Effect{
		effPersistSession{Session: sess},
		effRecordGame{Record: rec},
		effClearSession{},
	}, emit)

	require.Equal(t, sess, <-store.saved)
	require.Equal(t, rec, <-store.games)
	require.Equal(t, ended, <-store.endedAt)
	<-store.cleared
}

func TestRuntimeReconnect(t *testing.T) {
	t.Parallel()

	rc := &countingReconnector{}
	rt := NewRuntime(RuntimeConfig{Reconnector: rc})
	defer rt.Stop()

	emit, _ := collect()
	rt.HandleEffects(context.Background(), []actor.Effect{effReconnect{}}, emit)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	require.Equal(t, 1, rc.calls)
}

// TestActorWithRuntimePlaysCard drives the reducer through a live actor so
// the play round-trips through the outbox before CardSelected lands.
func TestActorWithRuntimePlaysCard(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	rt := NewRuntime(RuntimeConfig{Sender: sender})
	a := actor.New[State](roundState(), Reduce, rt)
	a.Start()
	defer a.Stop()

	require.True(t, a.Enqueue(PlayCard("c3", t0)))
	require.Eventually(t, func() bool {
		return a.State().Round.SelectedCardID == "c3"
	}, 2*time.Second, 5*time.Millisecond)

	s := a.State()
	require.False(t, s.Round.PlayPending)
	require.Equal(t, &c3, s.Round.SelectedCard)
	require.Equal(t, []string{wire.TypeCardPlayRequest}, sender.sent())
}
