package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/internal/session"
)

type fakeBackend struct {
	mu       sync.Mutex
	snap     session.Snapshot
	inputs   []actor.Input
	err      error
	snaps    chan session.Snapshot
	unsubbed bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{snaps: make(chan session.Snapshot, 4)}
}

func (b *fakeBackend) Dispatch(in actor.Input) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.inputs = append(b.inputs, in)
	return nil
}

func (b *fakeBackend) NowMs() int64 { return 1234 }

func (b *fakeBackend) Snapshot() session.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

func (b *fakeBackend) Subscribe() (<-chan session.Snapshot, func()) {
	return b.snaps, func() {
		b.mu.Lock()
		b.unsubbed = true
		b.mu.Unlock()
	}
}

func (b *fakeBackend) dispatched() []actor.Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]actor.Input(nil), b.inputs...)
}

func hand() game.Round {
	return game.Round{
		Number: 1,
		Total:  3,
		AvailableCards: []game.Card{
			{ID: "c1", Rank: "A", Suit: "H"},
			{ID: "c2", Rank: "7", Suit: "S"},
		},
	}
}

func newTestREPL(b backend, input string) (*repl, *bytes.Buffer) {
	out := &bytes.Buffer{}
	r := newREPL(b, strings.NewReader(input), out)
	r.readPassword = func(string) (string, error) { return "pw", nil }
	return r, out
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	f, err := parseFlags([]string{"-config", "duel.yaml", "-debug", "-status"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, flags{configPath: "duel.yaml", debug: true, status: true}, f)

	_, err = parseFlags([]string{"extra"}, io.Discard)
	require.Error(t, err)

	_, err = parseFlags([]string{"-nope"}, io.Discard)
	require.Error(t, err)
}

func TestExecuteDispatchesCommands(t *testing.T) {
	tests := []struct {
		line string
		want actor.Input
	}{
		{"login ann", game.Login("ann", "pw")},
		{"register ann ann@example.com Ann Lee", game.Register("ann", "pw", "ann@example.com", "Ann Lee")},
		{"register bob bob@example.com", game.Register("bob", "pw", "bob@example.com", "")},
		{"find", game.FindMatch(1234)},
		{"  CANCEL  ", game.CancelMatch()},
		{"play c2", game.PlayCard("c2", 1234)},
		{"play 1", game.PlayCard("c1", 1234)},
		{"lobby", game.BackToLobby()},
		{"leaderboard", game.RequestLeaderboard()},
		{"logout", game.Logout()},
		{"reconnect", game.Reconnect()},
		{"dismiss", game.DismissError()},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			b := newFakeBackend()
			b.snap.State.Round = hand()
			r, _ := newTestREPL(b, "")

			require.NoError(t, r.execute(tc.line))
			require.Equal(t, []actor.Input{tc.want}, b.dispatched())
		})
	}
}

func TestExecuteRejectsBadInput(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	r, out := newTestREPL(b, "")

	require.ErrorContains(t, r.execute("login"), "usage")
	require.ErrorContains(t, r.execute("register ann"), "usage")
	require.ErrorContains(t, r.execute("play"), "usage")
	require.ErrorContains(t, r.execute("play 1"), "no cards in hand")
	require.ErrorContains(t, r.execute("dance"), "unknown command")
	require.ErrorIs(t, r.execute("quit"), errQuit)
	require.NoError(t, r.execute("   "))
	require.NoError(t, r.execute("help"))
	require.Contains(t, out.String(), "commands:")
	require.Empty(t, b.dispatched())
}

func TestExecuteReportsDispatchFailure(t *testing.T) {
	b := newFakeBackend()
	b.err = actor.ErrStopped
	r, _ := newTestREPL(b, "")

	err := r.execute("find")
	require.ErrorIs(t, err, actor.ErrStopped)
}

func TestExecuteStateDumpsJSON(t *testing.T) {
	b := newFakeBackend()
	b.snap = session.Snapshot{State: game.Initial(), Connection: "OPEN", Countdown: 4}
	r, out := newTestREPL(b, "")

	require.NoError(t, r.execute("state"))
	require.Contains(t, out.String(), `"connection": "OPEN"`)
	require.Contains(t, out.String(), `"view": "AUTH"`)
}

func TestResolveCard(t *testing.T) {
	t.Parallel()

	round := hand()

	id, err := resolveCard(round, "c1")
	require.NoError(t, err)
	require.Equal(t, "c1", id)

	id, err = resolveCard(round, "2")
	require.NoError(t, err)
	require.Equal(t, "c2", id)

	_, err = resolveCard(round, "3")
	require.ErrorContains(t, err, `no card "3"`)

	_, err = resolveCard(round, "0")
	require.Error(t, err)
}

func TestRenderGameProgress(t *testing.T) {
	t.Parallel()

	lobby := game.Initial()
	lobby.View = game.ViewLobby
	lobby.Session = &game.Session{ID: "s1", User: game.User{ID: "42", Username: "ann", Score: 10}}

	inGame := lobby
	inGame.View = game.ViewGame
	inGame.Match = game.Match{Found: true, OpponentUsername: "bob"}
	inGame.Round = hand()
	inGame.Round.DeadlineMs = 99

	var out bytes.Buffer
	render(&out, session.Snapshot{State: lobby, Connection: "OPEN"},
		session.Snapshot{State: inGame, Connection: "OPEN", Countdown: 15})
	got := out.String()
	require.Contains(t, got, "== game vs bob ==")
	require.Contains(t, got, "matched against bob")
	require.Contains(t, got, "round 1/3")
	require.Contains(t, got, "1) A♥  [c1]")
	require.Contains(t, got, "15s left")
	require.NotContains(t, got, "[connection")

	revealed := inGame
	revealed.Round.PlayerCard = &inGame.Round.AvailableCards[0]
	revealed.Round.OpponentCard = &game.Card{ID: "o1", Rank: "K", Suit: "D"}
	revealed.Round.Result = game.OutcomeWin
	revealed.PlayerScore = 1

	out.Reset()
	render(&out, session.Snapshot{State: inGame, Connection: "OPEN", Countdown: 15},
		session.Snapshot{State: revealed, Connection: "OPEN", Countdown: 9})
	got = out.String()
	require.Contains(t, got, "A♥ vs K♦: WIN  (you 1 - 0 them)")
	require.NotContains(t, got, "left")
}

func TestRenderErrorsAndConnection(t *testing.T) {
	t.Parallel()

	prev := session.Snapshot{State: game.Initial(), Connection: "OPEN"}
	next := prev
	next.Connection = "DISCONNECTED"
	next.State.Error = "Connection lost"
	next.State.Unreachable = true

	var out bytes.Buffer
	render(&out, prev, next)
	require.Contains(t, out.String(), "[connection disconnected]")
	require.Contains(t, out.String(), "! Connection lost")
	require.Contains(t, out.String(), "type reconnect")
}

func TestRunExecutesUntilQuit(t *testing.T) {
	b := newFakeBackend()
	r, out := newTestREPL(b, "find\nquit\nlogout\n")

	errc := make(chan error, 1)
	go func() { errc <- r.Run(context.Background()) }()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("repl did not stop on quit")
	}
	require.Equal(t, []actor.Input{game.FindMatch(1234)}, b.dispatched())
	require.Contains(t, out.String(), "== login ==")

	b.mu.Lock()
	defer b.mu.Unlock()
	require.True(t, b.unsubbed)
}

func TestRunStopsOnContext(t *testing.T) {
	b := newFakeBackend()
	pr, pw := io.Pipe()
	defer pw.Close()
	r := newREPL(b, pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("repl ignored cancellation")
	}
}

func TestReadLoopReportsErrors(t *testing.T) {
	b := newFakeBackend()
	b.err = errors.New("mailbox full")
	r, out := newTestREPL(b, "find")

	require.NoError(t, r.readLoop())
	require.Contains(t, out.String(), "error: find: mailbox full")
}
