package game

import "github.com/levanminh04/Network-Programming/internal/actor"

// Event is the closed set of observations the state machine reacts to:
// routed server envelopes, transport changes, timer firings and send
// results. Only types declared in this package implement it.
type Event interface {
	actor.Input
	isGameEvent()
}

type eventBase struct{ actor.InputBase }

func (eventBase) isGameEvent() {}

// Transport.

// Connected is emitted when the socket opens.
type Connected struct{ eventBase }

// Disconnected is emitted when the socket closes or a dial fails.
type Disconnected struct {
	eventBase
	Reason string
}

// ConnectivityExhausted is emitted when automatic reconnects stop.
type ConnectivityExhausted struct {
	eventBase
	Attempts int
}

// Auth.

// LoginSucceeded carries the session created by the server.
type LoginSucceeded struct {
	eventBase
	SessionID string
	User      User
}

// RegisterSucceeded acknowledges a registration.
type RegisterSucceeded struct {
	eventBase
	Message string
}

// AuthFailed reports a rejected login or registration.
type AuthFailed struct {
	eventBase
	Message string
}

// LoggedOut resets everything except connectivity.
type LoggedOut struct{ eventBase }

// SessionRestored re-applies a persisted session at startup.
type SessionRestored struct {
	eventBase
	Session Session
}

// Lobby.

// MatchmakingStarted marks a match request as in flight.
type MatchmakingStarted struct{ eventBase }

// MatchmakingCanceled clears the matchmaking flag.
type MatchmakingCanceled struct{ eventBase }

// MatchRequestAcked is the server's acknowledgement of a match request.
type MatchRequestAcked struct{ eventBase }

// MatchFound records the pairing; the view stays in the lobby.
type MatchFound struct {
	eventBase
	MatchID          string
	OpponentUsername string
}

// LeaderboardReceived carries a leaderboard page.
type LeaderboardReceived struct {
	eventBase
	Leaderboard Leaderboard
}

// Game.

// GameStarted moves the client into the game view.
type GameStarted struct {
	eventBase
	GameID           string
	MatchID          string
	YourPosition     int
	OpponentUsername string
	TotalRounds      int
}

// RoundStarted opens a new round. Nil scores mean "keep the current value".
type RoundStarted struct {
	eventBase
	GameID        string
	MatchID       string
	RoundNumber   int
	TotalRounds   int
	Cards         []Card
	DeadlineMs    int64
	PlayerScore   *int
	OpponentScore *int
	Message       string
}

// CardSelected is the local, optimistic record of this client's play.
type CardSelected struct {
	eventBase
	RoundNumber int
	CardID      string
}

// CardPlayConfirmed is the server's acceptance of a play. Nil Cards keeps the
// current hand.
type CardPlayConfirmed struct {
	eventBase
	RoundNumber int
	CardID      string
	Cards       []Card
	Message     string
}

// CardPlayRejected is the server's refusal of a play.
type CardPlayRejected struct {
	eventBase
	Message string
}

// OpponentReady reports that the opponent has played. Nil Cards keeps the
// current hand.
type OpponentReady struct {
	eventBase
	Cards []Card
}

// RoundRevealed carries the server's resolution of a round.
type RoundRevealed struct {
	eventBase
	RoundNumber   int
	PlayerCard    *Card
	OpponentCard  *Card
	PlayerScore   int
	OpponentScore int
	Result        Outcome
	Message       string
}

// GameEnded carries per-seat scores and the winner's user id ("" for a draw).
type GameEnded struct {
	eventBase
	MatchID      string
	Player1Score int
	Player2Score int
	WinnerID     string
	Forfeited    bool
	Message      string
}

// OpponentLeft reports that the opponent abandoned the match.
type OpponentLeft struct {
	eventBase
	Message string
}

// ReturnToLobby leaves the game view and clears match and round state.
type ReturnToLobby struct{ eventBase }

// System.

// Welcomed carries the server greeting.
type Welcomed struct {
	eventBase
	Message       string
	ServerVersion string
}

// SystemError is a generic server-side failure.
type SystemError struct {
	eventBase
	Code    string
	Message string
}

// SendRejected is emitted locally when an outbound message could not be sent.
type SendRejected struct {
	eventBase
	Type    string
	Message string
}

// TimerFired is emitted by the runtime when a named timer elapses.
type TimerFired struct {
	eventBase
	Name string
	Gen  int64
}

// UI.

// ErrorRaised sets the transient error slot.
type ErrorRaised struct {
	eventBase
	Message string
}

// ErrorDismissed clears the transient error slot.
type ErrorDismissed struct{ eventBase }

// MessageDismissed clears the informational message slot.
type MessageDismissed struct{ eventBase }

// LoadingSet sets the loading indicator.
type LoadingSet struct {
	eventBase
	Loading bool
}
