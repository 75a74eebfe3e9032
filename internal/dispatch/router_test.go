package dispatch

import (
	"testing"
	"time"

	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/protocol/wire"
	"github.com/stretchr/testify/require"
)

func route(t *testing.T, r *Router, raw string) (game.Event, bool) {
	t.Helper()
	env, err := wire.Decode([]byte(raw))
	require.NoError(t, err)
	return r.Route(env)
}

func TestRouteLoginSuccess(t *testing.T) {
	t.Parallel()

	ev, ok := route(t, New(), `{"type":"AUTH.LOGIN_SUCCESS","correlationId":"c-1","sessionId":"sess-1",
		"payload":{"userId":42,"username":"ann","token":"tok","score":10}}`)
	require.True(t, ok)
	require.Equal(t, game.LoginSucceeded{
		SessionID: "sess-1",
		User:      game.User{ID: "42", Username: "ann", Token: "tok", Score: 10},
	}, ev)
}

func TestRouteFailuresUseErrorMessage(t *testing.T) {
	t.Parallel()

	r := New()
	ev, ok := route(t, r, `{"type":"AUTH.LOGIN_FAILURE","correlationId":"c","error":{"code":"AUTH_INVALID","message":"bad password"}}`)
	require.True(t, ok)
	require.Equal(t, game.AuthFailed{Message: "bad password"}, ev)

	ev, ok = route(t, r, `{"type":"AUTH.REGISTER_FAILURE","correlationId":"c"}`)
	require.True(t, ok)
	require.Equal(t, game.AuthFailed{Message: defaultRegisterFailure}, ev)

	ev, ok = route(t, r, `{"type":"GAME.CARD_PLAY_FAILURE","correlationId":"c","error":{"code":"X","message":"too late"}}`)
	require.True(t, ok)
	require.Equal(t, game.CardPlayRejected{Message: "too late"}, ev)

	ev, ok = route(t, r, `{"type":"SYSTEM.ERROR","correlationId":"c","error":{"code":"INTERNAL","message":"boom"}}`)
	require.True(t, ok)
	require.Equal(t, game.SystemError{Code: "INTERNAL", Message: "boom"}, ev)
}

func TestRouteRoundStartNormalizesAlternateFields(t *testing.T) {
	t.Parallel()

	r := New()
	primary, ok := route(t, r, `{"type":"GAME.ROUND_START","correlationId":"c","payload":{
		"gameId":"g-1","roundNumber":2,"deadlineTimestamp":1700000015000,
		"availableCards":[{"cardId":1,"rank":"A","suit":"H"},{"cardId":"c2","rank":10,"suit":"S","displayName":"Ten of spades"}]}}`)
	require.True(t, ok)
	alternate, ok := route(t, r, `{"type":"GAME.ROUND_START","correlationId":"c","payload":{
		"gameId":"g-1","roundNumber":2,"deadline":1700000015000,
		"hand":[{"cardId":"1","rank":"A","suit":"H"},{"cardId":"c2","rank":"10","suit":"S","displayName":"Ten of spades"}]}}`)
	require.True(t, ok)
	require.Equal(t, primary, alternate)

	rs := primary.(game.RoundStarted)
	require.Equal(t, int64(1700000015000), rs.DeadlineMs)
	require.Equal(t, []game.Card{
		{ID: "1", Rank: "A", Suit: "H", DisplayName: "A♥"},
		{ID: "c2", Rank: "10", Suit: "S", DisplayName: "Ten of spades"},
	}, rs.Cards)
	require.Nil(t, rs.PlayerScore)
}

func TestRouteRoundStartDurationFallback(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_000_000)
	r := New(WithNow(func() time.Time { return now }))
	ev, ok := route(t, r, `{"type":"GAME.ROUND_START","correlationId":"c","payload":{"roundNumber":1,"durationMs":15000,"playerScore":2}}`)
	require.True(t, ok)
	rs := ev.(game.RoundStarted)
	require.Equal(t, int64(1_015_000), rs.DeadlineMs)
	require.NotNil(t, rs.PlayerScore)
	require.Equal(t, 2, *rs.PlayerScore)
	require.Empty(t, rs.Cards)
}

func TestRouteGameStartPositionAliases(t *testing.T) {
	t.Parallel()

	r := New()
	a, ok := route(t, r, `{"type":"GAME.START","correlationId":"c","payload":{"matchId":"m-1","yourPosition":2,"opponentUsername":"bob"}}`)
	require.True(t, ok)
	b, ok := route(t, r, `{"type":"GAME.START","correlationId":"c","payload":{"matchId":"m-1","playerPosition":2,"opponent":{"userId":7,"username":"bob"}}}`)
	require.True(t, ok)
	require.Equal(t, a, b)
	require.Equal(t, game.GameStarted{MatchID: "m-1", YourPosition: 2, OpponentUsername: "bob"}, a)

	c, ok := route(t, r, `{"type":"GAME.START","correlationId":"c","payload":{"gameId":99,"yourPosition":1}}`)
	require.True(t, ok)
	require.Equal(t, game.GameStarted{GameID: "99", MatchID: "99", YourPosition: 1}, c)
}

func TestRouteMatchFoundOpponentAliases(t *testing.T) {
	t.Parallel()

	r := New()
	ev, ok := route(t, r, `{"type":"GAME.MATCH_FOUND","correlationId":"c","payload":{"matchId":5,"opponentDisplayName":"Bob"}}`)
	require.True(t, ok)
	require.Equal(t, game.MatchFound{MatchID: "5", OpponentUsername: "Bob"}, ev)
}

func TestRouteOpponentReadyKeepsHandWhenAbsent(t *testing.T) {
	t.Parallel()

	r := New()
	ev, ok := route(t, r, `{"type":"GAME.OPPONENT_READY","correlationId":"c","payload":{"status":"READY"}}`)
	require.True(t, ok)
	require.Nil(t, ev.(game.OpponentReady).Cards)

	ev, ok = route(t, r, `{"type":"GAME.OPPONENT_READY","correlationId":"c","payload":{"availableCards":[]}}`)
	require.True(t, ok)
	require.NotNil(t, ev.(game.OpponentReady).Cards)
	require.Empty(t, ev.(game.OpponentReady).Cards)
}

func TestRouteRevealAndEnd(t *testing.T) {
	t.Parallel()

	r := New()
	ev, ok := route(t, r, `{"type":"GAME.ROUND_REVEAL","correlationId":"c","payload":{"roundNumber":1,
		"playerCard":{"cardId":"c2","rank":"9","suit":"C"},"opponentCard":{"cardId":"c1","rank":"A","suit":"D"},
		"result":"WIN","playerScore":1,"opponentScore":0}}`)
	require.True(t, ok)
	rv := ev.(game.RoundRevealed)
	require.Equal(t, game.OutcomeWin, rv.Result)
	require.Equal(t, "9♣", rv.PlayerCard.DisplayName)
	require.Equal(t, "A♦", rv.OpponentCard.DisplayName)
	require.Equal(t, 1, rv.PlayerScore)

	ev, ok = route(t, r, `{"type":"GAME.END","correlationId":"c","payload":{"matchId":"m-1","player1Score":3,"player2Score":5,"winnerId":42}}`)
	require.True(t, ok)
	require.Equal(t, game.GameEnded{MatchID: "m-1", Player1Score: 3, Player2Score: 5, WinnerID: "42"}, ev)
}

func TestRouteLeaderboard(t *testing.T) {
	t.Parallel()

	ev, ok := route(t, New(), `{"type":"LOBBY.LEADERBOARD_RESPONSE","correlationId":"c","payload":{
		"entries":[{"rank":1,"userId":3,"username":"ann","totalWins":9,"totalGames":10,"score":90,"winRate":0.9}],
		"totalEntries":1,"currentPlayerEntry":{"rank":1,"userId":3,"username":"ann"}}}`)
	require.True(t, ok)
	lb := ev.(game.LeaderboardReceived).Leaderboard
	require.Equal(t, 1, lb.TotalEntries)
	require.Len(t, lb.Entries, 1)
	require.Equal(t, "3", lb.Entries[0].UserID)
	require.Equal(t, 0.9, lb.Entries[0].WinRate)
	require.NotNil(t, lb.Me)
}

func TestRouteDrops(t *testing.T) {
	t.Parallel()

	r := New()
	for _, raw := range []string{
		`{"type":"SYSTEM.PING","correlationId":"c"}`,
		`{"type":"LOBBY.SOMETHING_NEW","correlationId":"c","payload":{}}`,
		`{"type":"GAME.ROUND_START","correlationId":"c","payload":{"roundNumber":"two"}}`,
		`{"type":"GAME.MATCH_FOUND","correlationId":"c","payload":[1,2]}`,
	} {
		ev, ok := route(t, r, raw)
		require.False(t, ok, raw)
		require.Nil(t, ev)
	}
}

func TestRouteSimpleAcks(t *testing.T) {
	t.Parallel()

	r := New()
	tests := map[string]game.Event{
		`{"type":"AUTH.REGISTER_SUCCESS","correlationId":"c","payload":{"message":"welcome aboard"}}`: game.RegisterSucceeded{Message: "welcome aboard"},
		`{"type":"AUTH.LOGOUT_SUCCESS","correlationId":"c"}`:                                           game.LoggedOut{},
		`{"type":"LOBBY.MATCH_REQUEST_ACK","correlationId":"c","payload":{}}`:                          game.MatchRequestAcked{},
		`{"type":"GAME.OPPONENT_LEFT","correlationId":"c","payload":{"reason":"DISCONNECT"}}`:          game.OpponentLeft{},
		`{"type":"SYSTEM.WELCOME","correlationId":"c","payload":{"message":"hi","serverVersion":"2"}}`: game.Welcomed{Message: "hi", ServerVersion: "2"},
		`{"type":"GAME.CARD_PLAY_SUCCESS","correlationId":"c","payload":{"roundNumber":1,"cardId":7}}`: game.CardPlayConfirmed{RoundNumber: 1, CardID: "7"},
	}
	for raw, want := range tests {
		ev, ok := route(t, r, raw)
		require.True(t, ok, raw)
		require.Equal(t, want, ev, raw)
	}
}
