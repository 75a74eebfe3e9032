package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/levanminh04/Network-Programming/internal/cards"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/internal/session"
)

// render writes what changed between two snapshots.
func render(w io.Writer, prev, next session.Snapshot) {
	p, n := prev.State, next.State

	if prev.Connection != next.Connection {
		fmt.Fprintf(w, "[connection %s]\n", strings.ToLower(next.Connection))
	}
	if n.Unreachable && !p.Unreachable {
		fmt.Fprintln(w, "server unreachable; type reconnect to try again")
	}
	if n.Error != "" && n.Error != p.Error {
		fmt.Fprintf(w, "! %s\n", n.Error)
	}
	if n.Message != "" && n.Message != p.Message {
		fmt.Fprintf(w, "* %s\n", n.Message)
	}

	if p.View != n.View {
		renderView(w, n)
	}

	if n.Matchmaking != p.Matchmaking {
		if n.Matchmaking {
			fmt.Fprintln(w, "searching for an opponent...")
		} else if n.View == game.ViewLobby {
			fmt.Fprintln(w, "matchmaking stopped")
		}
	}
	if n.Match.Found && !p.Match.Found {
		fmt.Fprintf(w, "matched against %s\n", orDash(n.Match.OpponentUsername))
	}

	if n.View == game.ViewGame {
		renderRound(w, p.Round, n.Round, n)
		if n.Round.Result == game.OutcomeNone && n.Round.PlayerCard == nil &&
			next.Countdown != prev.Countdown && n.Round.DeadlineMs > 0 {
			fmt.Fprintf(w, "  %ds left\n", next.Countdown)
		}
	}

	if n.GameResult != nil && p.GameResult != n.GameResult {
		r := n.GameResult
		fmt.Fprintf(w, "game over: %s %d-%d", r.Result, r.PlayerScore, r.OpponentScore)
		if r.Forfeited {
			fmt.Fprint(w, " (forfeit)")
		}
		fmt.Fprintln(w)
	}

	if n.Leaderboard != nil && n.Leaderboard != p.Leaderboard {
		renderLeaderboard(w, n.Leaderboard)
	}
}

func renderView(w io.Writer, s game.State) {
	switch s.View {
	case game.ViewAuth:
		fmt.Fprintln(w, "== login ==")
	case game.ViewLobby:
		fmt.Fprintln(w, "== lobby ==")
		if s.Session != nil {
			u := s.Session.User
			fmt.Fprintf(w, "%s  score %d  games %d  won %d\n",
				orDash(firstNonEmpty(u.DisplayName, u.Username)), u.Score, u.GamesPlayed, u.GamesWon)
		}
		if s.ServerWelcome != "" {
			fmt.Fprintln(w, s.ServerWelcome)
		}
	case game.ViewGame:
		fmt.Fprintf(w, "== game vs %s ==\n", orDash(s.Match.OpponentUsername))
	}
}

func renderRound(w io.Writer, p, n game.Round, s game.State) {
	if n.Number != p.Number && n.Number > 0 {
		fmt.Fprintf(w, "round %d/%d  (you %d - %d them)\n", n.Number, n.Total, s.PlayerScore, s.OpponentScore)
		for i, c := range n.AvailableCards {
			fmt.Fprintf(w, "  %d) %s  [%s]\n", i+1, cardName(c), c.ID)
		}
	}
	if n.SelectedCard != nil && p.SelectedCardID != n.SelectedCardID {
		fmt.Fprintf(w, "you chose %s\n", cardName(*n.SelectedCard))
	}
	if n.OpponentReady && !p.OpponentReady {
		fmt.Fprintln(w, "opponent has played")
	}
	if n.Result != game.OutcomeNone && p.Result != n.Result {
		mine, theirs := "?", "?"
		if n.PlayerCard != nil {
			mine = cardName(*n.PlayerCard)
		}
		if n.OpponentCard != nil {
			theirs = cardName(*n.OpponentCard)
		}
		fmt.Fprintf(w, "%s vs %s: %s  (you %d - %d them)\n", mine, theirs, n.Result, s.PlayerScore, s.OpponentScore)
	}
}

func renderLeaderboard(w io.Writer, lb *game.Leaderboard) {
	fmt.Fprintf(w, "leaderboard (%d players)\n", lb.TotalEntries)
	for _, e := range lb.Entries {
		fmt.Fprintf(w, "  %3d  %-20s %5d  %d/%d\n", e.Rank, firstNonEmpty(e.DisplayName, e.Username), e.Score, e.TotalWins, e.TotalGames)
	}
	if lb.Me != nil {
		fmt.Fprintf(w, "  you: #%d  %d\n", lb.Me.Rank, lb.Me.Score)
	}
}

func cardName(c game.Card) string {
	return cards.Display(c.Rank, c.Suit, c.DisplayName)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
