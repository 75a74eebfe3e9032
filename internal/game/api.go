package game

import "github.com/levanminh04/Network-Programming/internal/actor"

// Login returns the command that submits credentials.
func Login(username, password string) actor.Input {
	return cmdLogin{Username: username, Password: password}
}

// Register returns the command that creates an account.
func Register(username, password, email, displayName string) actor.Input {
	return cmdRegister{Username: username, Password: password, Email: email, DisplayName: displayName}
}

// FindMatch returns the command that requests a quick match. atMs is the
// request timestamp in Unix milliseconds.
func FindMatch(atMs int64) actor.Input {
	return cmdFindMatch{AtMs: atMs}
}

// CancelMatch returns the command that abandons matchmaking.
func CancelMatch() actor.Input {
	return cmdCancelMatch{}
}

// PlayCard returns the command that plays cardID in the current round.
func PlayCard(cardID string, atMs int64) actor.Input {
	return cmdPlayCard{CardID: cardID, AtMs: atMs}
}

// Logout returns the command that ends the session.
func Logout() actor.Input {
	return cmdLogout{}
}

// RequestLeaderboard returns the command that fetches the leaderboard.
func RequestLeaderboard() actor.Input {
	return cmdRequestLeaderboard{}
}

// Reconnect returns the command that retries the connection after automatic
// retries gave up.
func Reconnect() actor.Input {
	return cmdReconnect{}
}

// BackToLobby returns the input that leaves a finished game.
func BackToLobby() actor.Input {
	return ReturnToLobby{}
}

// DismissError returns the input that clears the error slot.
func DismissError() actor.Input {
	return ErrorDismissed{}
}
