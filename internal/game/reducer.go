package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/version"
	"github.com/levanminh04/Network-Programming/protocol/wire"
)

// User-visible texts set by the reducer.
const (
	MsgConnectionLost    = "Lost connection to server"
	MsgUnreachable       = "Cannot reach server"
	MsgNotConnected      = "Not connected to server"
	MsgMissingLogin      = "Please enter username and password"
	MsgMissingRegister   = "Please fill in username, password and email"
	MsgRegistered        = "Registration successful! Please log in."
	MsgLoginFailed       = "Login failed"
	MsgCardNotInHand     = "That card is not in your hand"
	MsgRoundOver         = "Time is up for this round"
	MsgAlreadyPlayed     = "You already played a card this round"
	MsgWaitingOpponent   = "Card played. Waiting for opponent..."
	MsgPlaySubmitted     = "Card submitted. Waiting for opponent..."
	MsgOpponentReady     = "Your opponent has played!"
	MsgOpponentLeft      = "Your opponent left the match"
	MsgSystemError       = "System error"
	MsgGameWon           = "Congratulations! You won!"
	MsgGameLost          = "Too bad! You lost!"
	MsgGameDrawn         = "The match is a draw!"
	MsgPlayFailedDefault = "Could not play card"
)

// Settings are the reducer's tunables.
type Settings struct {
	// ReturnToLobbyDelay is the grace period after an opponent leaves.
	ReturnToLobbyDelay time.Duration
	// LeaderboardLimit is the page size requested from the server.
	LeaderboardLimit int
	// ClientVersion is reported on login.
	ClientVersion string
}

// DefaultSettings returns the production settings.
func DefaultSettings() Settings {
	return Settings{
		ReturnToLobbyDelay: 3 * time.Second,
		LeaderboardLimit:   100,
		ClientVersion:      version.Version(),
	}
}

// Reducer is the application state machine.
type Reducer struct {
	settings Settings
}

// NewReducer returns a Reducer; zero-valued settings take their defaults.
func NewReducer(s Settings) Reducer {
	def := DefaultSettings()
	if s.ReturnToLobbyDelay <= 0 {
		s.ReturnToLobbyDelay = def.ReturnToLobbyDelay
	}
	if s.LeaderboardLimit <= 0 {
		s.LeaderboardLimit = def.LeaderboardLimit
	}
	if s.ClientVersion == "" {
		s.ClientVersion = def.ClientVersion
	}
	return Reducer{settings: s}
}

// Reduce applies input to state using DefaultSettings.
func Reduce(state State, input actor.Input) (State, []actor.Effect) {
	return NewReducer(Settings{}).Reduce(state, input)
}

// Reduce is the pure transition function. Inputs with no transition for the
// current state return it unchanged.
func (r Reducer) Reduce(state State, input actor.Input) (State, []actor.Effect) {
	switch in := input.(type) {
	// Commands.
	case cmdLogin:
		return r.login(state, in)
	case cmdRegister:
		return r.register(state, in)
	case cmdFindMatch:
		return r.findMatch(state, in)
	case cmdCancelMatch:
		return r.cancelMatch(state)
	case cmdPlayCard:
		return r.playCard(state, in)
	case cmdLogout:
		return r.logout(state)
	case cmdRequestLeaderboard:
		return r.requestLeaderboard(state)
	case cmdReconnect:
		if state.Connected {
			return state, nil
		}
		state.Unreachable = false
		state.Error = ""
		return state, []actor.Effect{effReconnect{}}

	// Transport.
	case Connected:
		state.Connected = true
		state.Unreachable = false
		if state.Error == MsgConnectionLost || state.Error == MsgUnreachable {
			state.Error = ""
		}
		return state, nil
	case Disconnected:
		state.Connected = false
		state.Loading = false
		if !state.Unreachable {
			state.Error = MsgConnectionLost
		}
		return state, nil
	case ConnectivityExhausted:
		state.Connected = false
		state.Unreachable = true
		state.Loading = false
		state.Error = MsgUnreachable
		return state, nil

	// Auth.
	case LoginSucceeded:
		sess := Session{ID: in.SessionID, User: in.User}
		state.Session = &sess
		state.View = ViewLobby
		state.Error = ""
		state.Loading = false
		return state, []actor.Effect{effPersistSession{Session: sess}}
	case RegisterSucceeded:
		state.Message = firstNonEmpty(in.Message, MsgRegistered)
		state.Error = ""
		state.Loading = false
		return state, nil
	case AuthFailed:
		state.Error = firstNonEmpty(in.Message, MsgLoginFailed)
		state.Loading = false
		return state, nil
	case LoggedOut:
		return r.reset(state)
	case SessionRestored:
		if state.Session != nil || in.Session.ID == "" {
			return state, nil
		}
		sess := in.Session
		state.Session = &sess
		state.View = ViewLobby
		return state, nil

	// Lobby.
	case MatchmakingStarted:
		if state.View != ViewLobby {
			return state, nil
		}
		state.Matchmaking = true
		state.Error = ""
		return state, nil
	case MatchmakingCanceled:
		state.Matchmaking = false
		return state, nil
	case MatchRequestAcked:
		if state.View != ViewLobby {
			return state, nil
		}
		state.Matchmaking = true
		state.Loading = false
		return state, nil
	case MatchFound:
		if state.View != ViewLobby {
			return state, nil
		}
		state.Match.Found = true
		state.Match.MatchID = in.MatchID
		state.Match.OpponentUsername = in.OpponentUsername
		state.Message = fmt.Sprintf("Opponent found: %s!", in.OpponentUsername)
		return state, nil
	case LeaderboardReceived:
		lb := in.Leaderboard
		state.Leaderboard = &lb
		state.Loading = false
		return state, nil

	// Game.
	case GameStarted:
		return r.gameStarted(state, in)
	case RoundStarted:
		return r.roundStarted(state, in)
	case CardSelected:
		return r.cardSelected(state, in)
	case CardPlayConfirmed:
		return r.cardPlayConfirmed(state, in)
	case CardPlayRejected:
		state.Error = firstNonEmpty(in.Message, MsgPlayFailedDefault)
		state.Round.PlayPending = false
		state.Loading = false
		return state, nil
	case OpponentReady:
		if state.View != ViewGame {
			return state, nil
		}
		state.Round.OpponentReady = true
		if in.Cards != nil {
			state.Round.AvailableCards = cloneCards(in.Cards)
		}
		state.Message = MsgOpponentReady
		return state, nil
	case RoundRevealed:
		return r.roundRevealed(state, in)
	case GameEnded:
		return r.gameEnded(state, in)
	case OpponentLeft:
		return r.opponentLeft(state, in)
	case ReturnToLobby:
		return r.returnToLobby(state)
	case TimerFired:
		if in.Name == timerReturnToLobby && state.ReturnPending && in.Gen == state.ReturnGen {
			return r.returnToLobby(state)
		}
		return state, nil

	// System.
	case Welcomed:
		state.ServerWelcome = in.Message
		return state, nil
	case SystemError:
		state.Error = firstNonEmpty(in.Message, MsgSystemError)
		state.Loading = false
		state.Round.PlayPending = false
		return state, nil
	case SendRejected:
		state.Error = firstNonEmpty(in.Message, MsgNotConnected)
		state.Loading = false
		if in.Type == wire.TypeCardPlayRequest {
			state.Round.PlayPending = false
		}
		return state, nil

	// UI.
	case ErrorRaised:
		state.Error = in.Message
		return state, nil
	case ErrorDismissed:
		state.Error = ""
		return state, nil
	case MessageDismissed:
		state.Message = ""
		return state, nil
	case LoadingSet:
		state.Loading = in.Loading
		return state, nil

	default:
		return state, nil
	}
}

func (r Reducer) login(state State, in cmdLogin) (State, []actor.Effect) {
	if state.Session != nil || state.Loading {
		return state, nil
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		state.Error = MsgMissingLogin
		return state, nil
	}
	if !state.Connected {
		state.Error = MsgNotConnected
		return state, nil
	}
	state.Error = ""
	state.Loading = true
	return state, []actor.Effect{effSend{
		Type: wire.TypeLoginRequest,
		Payload: wire.LoginRequest{
			Username:      username,
			Password:      in.Password,
			ClientVersion: r.settings.ClientVersion,
		},
	}}
}

func (r Reducer) register(state State, in cmdRegister) (State, []actor.Effect) {
	if state.Session != nil || state.Loading {
		return state, nil
	}
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || in.Password == "" || email == "" {
		state.Error = MsgMissingRegister
		return state, nil
	}
	if !state.Connected {
		state.Error = MsgNotConnected
		return state, nil
	}
	state.Error = ""
	state.Loading = true
	return state, []actor.Effect{effSend{
		Type: wire.TypeRegisterRequest,
		Payload: wire.RegisterRequest{
			Username:    username,
			Password:    in.Password,
			Email:       email,
			DisplayName: firstNonEmpty(strings.TrimSpace(in.DisplayName), username),
		},
	}}
}

func (r Reducer) findMatch(state State, in cmdFindMatch) (State, []actor.Effect) {
	if state.View != ViewLobby || state.Matchmaking {
		return state, nil
	}
	if !state.Connected {
		state.Error = MsgNotConnected
		return state, nil
	}
	state.Error = ""
	return state, []actor.Effect{effSend{
		Type:    wire.TypeMatchRequest,
		Payload: wire.MatchRequest{GameMode: wire.GameModeQuickMatch, Timestamp: in.AtMs},
		OnSent:  []Event{MatchmakingStarted{}},
	}}
}

func (r Reducer) cancelMatch(state State) (State, []actor.Effect) {
	if !state.Matchmaking {
		return state, nil
	}
	cancel := []Event{MatchmakingCanceled{}}
	return state, []actor.Effect{effSend{
		Type:    wire.TypeMatchCancel,
		Payload: wire.MatchCancel{},
		OnSent:  cancel,
		OnFail:  cancel,
	}}
}

func (r Reducer) playCard(state State, in cmdPlayCard) (State, []actor.Effect) {
	round := state.Round
	if state.View != ViewGame || round.Number == 0 || round.Result != OutcomeNone {
		return state, nil
	}
	// First selection wins; later intents in the same round are ignored.
	if round.SelectedCardID != "" || round.PlayPending {
		return state, nil
	}
	if round.PlayerCard != nil {
		state.Error = MsgAlreadyPlayed
		return state, nil
	}
	if round.DeadlineMs > 0 && in.AtMs >= round.DeadlineMs {
		state.Error = MsgRoundOver
		return state, nil
	}
	if _, ok := round.FindCard(in.CardID); !ok {
		state.Error = MsgCardNotInHand
		return state, nil
	}
	if !state.Connected {
		state.Error = MsgNotConnected
		return state, nil
	}

	state.Round.PlayPending = true
	return state, []actor.Effect{effSend{
		Type: wire.TypeCardPlayRequest,
		Payload: wire.CardPlayRequest{
			GameID:      wire.FlexString(firstNonEmpty(state.Match.GameID, state.Match.MatchID)),
			RoundNumber: round.Number,
			CardID:      wire.FlexString(in.CardID),
			Timestamp:   in.AtMs,
		},
		OnSent: []Event{CardSelected{RoundNumber: round.Number, CardID: in.CardID}},
	}}
}

func (r Reducer) logout(state State) (State, []actor.Effect) {
	if state.Session == nil {
		return state, nil
	}
	if !state.Connected {
		return r.reset(state)
	}
	done := []Event{LoggedOut{}}
	return state, []actor.Effect{effSend{
		Type:    wire.TypeLogoutRequest,
		Payload: wire.LogoutRequest{},
		OnSent:  done,
		OnFail:  done,
	}}
}

func (r Reducer) requestLeaderboard(state State) (State, []actor.Effect) {
	if state.Session == nil {
		return state, nil
	}
	if !state.Connected {
		state.Error = MsgNotConnected
		return state, nil
	}
	state.Loading = true
	return state, []actor.Effect{effSend{
		Type: wire.TypeLeaderboardRequest,
		Payload: wire.LeaderboardRequest{
			Limit:     r.settings.LeaderboardLimit,
			Offset:    0,
			SortBy:    "total_wins",
			SortOrder: "DESC",
		},
	}}
}

// reset returns the initial state, keeping connectivity.
func (r Reducer) reset(state State) (State, []actor.Effect) {
	next := Initial()
	next.Connected = state.Connected
	next.Unreachable = state.Unreachable
	next.ReturnGen = state.ReturnGen + 1

	var effects []actor.Effect
	if state.ReturnPending {
		effects = append(effects, effCancelTimer{Name: timerReturnToLobby})
	}
	if state.Session != nil {
		effects = append(effects, effClearSession{})
	}
	return next, effects
}

func (r Reducer) gameStarted(state State, in GameStarted) (State, []actor.Effect) {
	var effects []actor.Effect
	if state.ReturnPending {
		// A new game supersedes the deferred return scheduled by OpponentLeft.
		state.ReturnPending = false
		state.ReturnGen++
		state.Error = ""
		effects = append(effects, effCancelTimer{Name: timerReturnToLobby})
	}

	total := in.TotalRounds
	if total <= 0 {
		total = DefaultTotalRounds
	}
	state.View = ViewGame
	state.Match = Match{
		MatchID:          in.MatchID,
		GameID:           firstNonEmpty(in.GameID, in.MatchID),
		YourPosition:     in.YourPosition,
		OpponentUsername: firstNonEmpty(in.OpponentUsername, state.Match.OpponentUsername),
	}
	state.Matchmaking = false
	state.Round = Round{Total: total}
	state.PlayerScore = 0
	state.OpponentScore = 0
	state.GameResult = nil
	state.Message = ""
	return state, effects
}

func (r Reducer) roundStarted(state State, in RoundStarted) (State, []actor.Effect) {
	if state.View != ViewGame {
		return state, nil
	}
	number := in.RoundNumber
	if number <= 0 {
		number = state.Round.Number + 1
	}
	// Rounds only move forward; a repeated or older ROUND_START is stale.
	if number <= state.Round.Number {
		return state, nil
	}

	total := in.TotalRounds
	if total <= 0 {
		total = state.Round.Total
	}
	if total <= 0 {
		total = DefaultTotalRounds
	}
	state.Round = Round{
		Number:         number,
		Total:          total,
		AvailableCards: cloneCards(in.Cards),
		DeadlineMs:     in.DeadlineMs,
	}
	if in.MatchID != "" {
		state.Match.MatchID = in.MatchID
	}
	if gameID := firstNonEmpty(in.GameID, in.MatchID); gameID != "" {
		state.Match.GameID = gameID
	}
	if in.PlayerScore != nil {
		state.PlayerScore = *in.PlayerScore
	}
	if in.OpponentScore != nil {
		state.OpponentScore = *in.OpponentScore
	}
	state.Message = firstNonEmpty(in.Message, fmt.Sprintf("Round %d - pick your card!", number))
	return state, nil
}

func (r Reducer) cardSelected(state State, in CardSelected) (State, []actor.Effect) {
	round := state.Round
	if state.View != ViewGame || round.Number == 0 || in.CardID == "" {
		return state, nil
	}
	if in.RoundNumber != 0 && in.RoundNumber != round.Number {
		return state, nil
	}
	if round.SelectedCardID != "" {
		return state, nil
	}

	state.Round.SelectedCardID = in.CardID
	if card, ok := round.FindCard(in.CardID); ok {
		state.Round.SelectedCard = &card
	}
	state.Round.PlayPending = false
	state.Message = MsgWaitingOpponent
	return state, nil
}

func (r Reducer) cardPlayConfirmed(state State, in CardPlayConfirmed) (State, []actor.Effect) {
	if state.View != ViewGame {
		return state, nil
	}
	if in.RoundNumber != 0 && in.RoundNumber != state.Round.Number {
		return state, nil
	}
	// The confirmation may overtake the local CardSelected; adopt the
	// server's card without replacing an existing selection.
	if state.Round.SelectedCardID == "" && in.CardID != "" {
		state.Round.SelectedCardID = in.CardID
		if card, ok := state.Round.FindCard(in.CardID); ok {
			state.Round.SelectedCard = &card
		}
	}
	state.Round.PlayPending = false
	if in.Cards != nil {
		state.Round.AvailableCards = cloneCards(in.Cards)
	}
	state.Message = firstNonEmpty(in.Message, MsgPlaySubmitted)
	return state, nil
}

func (r Reducer) roundRevealed(state State, in RoundRevealed) (State, []actor.Effect) {
	if state.View != ViewGame {
		return state, nil
	}
	if in.RoundNumber != 0 && in.RoundNumber != state.Round.Number {
		return state, nil
	}
	state.Round.PlayerCard = cloneCard(in.PlayerCard)
	state.Round.OpponentCard = cloneCard(in.OpponentCard)
	state.Round.Result = in.Result
	state.Round.PlayPending = false
	state.PlayerScore = in.PlayerScore
	state.OpponentScore = in.OpponentScore
	state.Message = in.Message
	return state, nil
}

func (r Reducer) gameEnded(state State, in GameEnded) (State, []actor.Effect) {
	if state.View != ViewGame {
		return state, nil
	}
	mine, theirs := in.Player2Score, in.Player1Score
	if state.Match.YourPosition == 1 {
		mine, theirs = in.Player1Score, in.Player2Score
	}

	var result Outcome
	switch {
	case in.WinnerID == "":
		result = OutcomeDraw
	case in.WinnerID == state.UserID():
		result = OutcomeWin
	default:
		result = OutcomeLoss
	}

	msg := in.Message
	if msg == "" {
		switch result {
		case OutcomeWin:
			msg = MsgGameWon
		case OutcomeLoss:
			msg = MsgGameLost
		default:
			msg = MsgGameDrawn
		}
	}

	state.GameResult = &GameResult{
		Result:        result,
		PlayerScore:   mine,
		OpponentScore: theirs,
		WinnerID:      in.WinnerID,
		Forfeited:     in.Forfeited,
		Message:       msg,
	}
	state.PlayerScore = mine
	state.OpponentScore = theirs
	state.Round.DeadlineMs = 0
	state.Round.PlayPending = false
	state.Message = msg

	return state, []actor.Effect{effRecordGame{Record: GameRecord{
		MatchID:          firstNonEmpty(in.MatchID, state.Match.MatchID),
		OpponentUsername: state.Match.OpponentUsername,
		Result:           result,
		PlayerScore:      mine,
		OpponentScore:    theirs,
		Forfeited:        in.Forfeited,
	}}}
}

func (r Reducer) opponentLeft(state State, in OpponentLeft) (State, []actor.Effect) {
	if state.View != ViewGame {
		return state, nil
	}
	state.Error = firstNonEmpty(in.Message, MsgOpponentLeft)
	state.Round.DeadlineMs = 0
	state.Round.PlayPending = false
	state.ReturnPending = true
	state.ReturnGen++
	return state, []actor.Effect{
		effCancelTimer{Name: timerReturnToLobby},
		effStartTimer{Name: timerReturnToLobby, After: r.settings.ReturnToLobbyDelay, Gen: state.ReturnGen},
	}
}

func (r Reducer) returnToLobby(state State) (State, []actor.Effect) {
	var effects []actor.Effect
	pending := state.ReturnPending
	if pending {
		effects = append(effects, effCancelTimer{Name: timerReturnToLobby})
	}
	state.Matchmaking = false
	state.Match = Match{}
	state.Round = Round{Total: DefaultTotalRounds}
	state.PlayerScore = 0
	state.OpponentScore = 0
	state.GameResult = nil
	state.ReturnPending = false

	// Without a session there is no lobby to go to.
	if state.Session == nil {
		state.View = ViewAuth
		if pending {
			state.ReturnGen++
		}
		return state, effects
	}
	state.View = ViewLobby
	state.Message = ""
	state.Error = ""
	state.ReturnGen++
	return state, effects
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return []Card{}
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

func cloneCard(c *Card) *Card {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
