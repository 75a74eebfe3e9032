// Package dispatch maps decoded server envelopes to state machine events.
//
// The router owns every wire-format quirk: alternate field names, numeric
// versus string identifiers and missing optional fields all stop here.
package dispatch

import (
	"time"

	"github.com/levanminh04/Network-Programming/internal/cards"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/pkg/logger"
	"github.com/levanminh04/Network-Programming/protocol/wire"
)

// Default texts for failure envelopes without an error message.
const (
	defaultLoginFailure    = "Login failed"
	defaultRegisterFailure = "Registration failed"
	defaultPlayFailure     = "Could not play card"
)

// Router translates envelopes. It holds no game state.
type Router struct {
	now func() time.Time
	log *logger.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithNow sets the time source used to turn a relative round duration into
// an absolute deadline.
func WithNow(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// New returns a Router.
func New(opts ...Option) *Router {
	r := &Router{now: time.Now, log: logger.Named("dispatch")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route returns the event for env. ok is false when the envelope is dropped:
// unknown types, heartbeats and undecodable payloads.
func (r *Router) Route(env wire.Envelope) (game.Event, bool) {
	switch env.Type {
	case wire.TypeLoginSuccess:
		var u wire.User
		if !r.decode(env, &u) {
			return nil, false
		}
		return game.LoginSucceeded{SessionID: env.SessionID, User: user(u)}, true
	case wire.TypeLoginFailure:
		return game.AuthFailed{Message: env.ErrorMessage(defaultLoginFailure)}, true
	case wire.TypeRegisterFailure:
		return game.AuthFailed{Message: env.ErrorMessage(defaultRegisterFailure)}, true
	case wire.TypeRegisterSuccess:
		var p struct {
			Message string `json:"message"`
		}
		_ = env.DecodePayload(&p)
		return game.RegisterSucceeded{Message: p.Message}, true
	case wire.TypeLogoutSuccess:
		return game.LoggedOut{}, true

	case wire.TypeMatchRequestAck:
		return game.MatchRequestAcked{}, true
	case wire.TypeLeaderboardResponse:
		var p wire.LeaderboardResponse
		if !r.decode(env, &p) {
			return nil, false
		}
		return game.LeaderboardReceived{Leaderboard: leaderboard(p)}, true

	case wire.TypeMatchFound:
		var p wire.MatchFound
		if !r.decode(env, &p) {
			return nil, false
		}
		return game.MatchFound{
			MatchID:          p.MatchID.String(),
			OpponentUsername: first(p.OpponentUsername, p.OpponentDisplayName, opponentName(p.Opponent)),
		}, true
	case wire.TypeGameStart:
		var p wire.GameStart
		if !r.decode(env, &p) {
			return nil, false
		}
		position := p.YourPosition
		if position == 0 {
			position = p.PlayerPosition
		}
		return game.GameStarted{
			GameID:           p.GameID.String(),
			MatchID:          first(p.MatchID.String(), p.GameID.String()),
			YourPosition:     position,
			OpponentUsername: first(p.OpponentUsername, opponentName(p.Opponent)),
			TotalRounds:      p.TotalRounds,
		}, true
	case wire.TypeRoundStart:
		var p wire.RoundStart
		if !r.decode(env, &p) {
			return nil, false
		}
		hand := p.AvailableCards
		if hand == nil {
			hand = p.Hand
		}
		deadline := p.DeadlineTimestamp
		if deadline == 0 {
			deadline = p.Deadline
		}
		if deadline == 0 && p.DurationMs > 0 {
			deadline = r.now().UnixMilli() + p.DurationMs
		}
		return game.RoundStarted{
			GameID:        p.GameID.String(),
			MatchID:       p.MatchID.String(),
			RoundNumber:   p.RoundNumber,
			TotalRounds:   p.TotalRounds,
			Cards:         convertCards(hand),
			DeadlineMs:    deadline,
			PlayerScore:   p.PlayerScore,
			OpponentScore: p.OpponentScore,
			Message:       p.Message,
		}, true
	case wire.TypeCardPlaySuccess:
		var p wire.CardPlayResult
		if !r.decode(env, &p) {
			return nil, false
		}
		return game.CardPlayConfirmed{
			RoundNumber: p.RoundNumber,
			CardID:      p.CardID.String(),
			Cards:       optionalCards(p.AvailableCards),
			Message:     p.Message,
		}, true
	case wire.TypeCardPlayFailure:
		return game.CardPlayRejected{Message: env.ErrorMessage(defaultPlayFailure)}, true
	case wire.TypeOpponentReady:
		var p wire.OpponentReady
		if !r.decode(env, &p) {
			return nil, false
		}
		return game.OpponentReady{Cards: optionalCards(p.AvailableCards)}, true
	case wire.TypeRoundReveal:
		var p wire.RoundReveal
		if !r.decode(env, &p) {
			return nil, false
		}
		return game.RoundRevealed{
			RoundNumber:   p.RoundNumber,
			PlayerCard:    cardPtr(p.PlayerCard),
			OpponentCard:  cardPtr(p.OpponentCard),
			PlayerScore:   p.PlayerScore,
			OpponentScore: p.OpponentScore,
			Result:        game.ParseOutcome(p.Result),
			Message:       p.Message,
		}, true
	case wire.TypeGameEnd:
		var p wire.GameEnd
		if !r.decode(env, &p) {
			return nil, false
		}
		return game.GameEnded{
			MatchID:      p.MatchID.String(),
			Player1Score: p.Player1Score,
			Player2Score: p.Player2Score,
			WinnerID:     p.WinnerID.String(),
			Forfeited:    p.Forfeited,
			Message:      p.Message,
		}, true
	case wire.TypeOpponentLeft:
		var p wire.OpponentLeft
		_ = env.DecodePayload(&p)
		return game.OpponentLeft{Message: p.Message}, true

	case wire.TypeWelcome:
		var p wire.Welcome
		_ = env.DecodePayload(&p)
		return game.Welcomed{Message: p.Message, ServerVersion: p.ServerVersion}, true
	case wire.TypeError:
		ev := game.SystemError{Message: env.ErrorMessage("")}
		if env.Error != nil {
			ev.Code = env.Error.Code
		}
		return ev, true
	case wire.TypePing:
		r.log.Tracef("heartbeat reached the router; dropping")
		return nil, false
	default:
		r.log.Warnf("dropping unhandled message type %s", env.Type)
		return nil, false
	}
}

func (r *Router) decode(env wire.Envelope, dst any) bool {
	if err := env.DecodePayload(dst); err != nil {
		r.log.Warnf("dropping %s: %v", env.Type, err)
		return false
	}
	return true
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func opponentName(p *wire.PlayerRef) string {
	if p == nil {
		return ""
	}
	return first(p.Username, p.DisplayName)
}

func user(u wire.User) game.User {
	return game.User{
		ID:          u.UserID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Token:       u.Token,
		ExpiresAt:   u.ExpiresAt,
		Score:       u.Score,
		GamesPlayed: u.GamesPlayed,
		GamesWon:    u.GamesWon,
		Rank:        u.Rank,
	}
}

func card(c wire.Card) game.Card {
	rank := c.Rank.String()
	return game.Card{
		ID:          c.CardID.String(),
		Rank:        rank,
		Suit:        c.Suit,
		Value:       c.Value,
		DisplayName: cards.Display(rank, c.Suit, c.DisplayName),
	}
}

func cardPtr(c *wire.Card) *game.Card {
	if c == nil {
		return nil
	}
	out := card(*c)
	return &out
}

func convertCards(in []wire.Card) []game.Card {
	out := make([]game.Card, 0, len(in))
	for _, c := range in {
		out = append(out, card(c))
	}
	return out
}

// optionalCards keeps "absent" distinct from "empty": nil means the sender
// did not include a hand.
func optionalCards(in []wire.Card) []game.Card {
	if in == nil {
		return nil
	}
	return convertCards(in)
}

func leaderboard(p wire.LeaderboardResponse) game.Leaderboard {
	lb := game.Leaderboard{
		Entries:      make([]game.LeaderboardEntry, 0, len(p.Entries)),
		TotalEntries: p.TotalEntries,
	}
	for _, e := range p.Entries {
		lb.Entries = append(lb.Entries, entry(e))
	}
	if p.CurrentPlayerEntry != nil {
		me := entry(*p.CurrentPlayerEntry)
		lb.Me = &me
	}
	return lb
}

func entry(e wire.LeaderboardEntry) game.LeaderboardEntry {
	return game.LeaderboardEntry{
		Rank:        e.Rank,
		UserID:      e.UserID.String(),
		Username:    e.Username,
		DisplayName: e.DisplayName,
		TotalWins:   e.TotalWins,
		TotalGames:  e.TotalGames,
		Score:       e.Score,
		WinRate:     e.WinRate,
	}
}
