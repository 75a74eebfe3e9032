package wire

import "strings"

// Message types are namespaced as DOMAIN.ACTION.
const (
	DomainAuth   = "AUTH"
	DomainLobby  = "LOBBY"
	DomainGame   = "GAME"
	DomainSystem = "SYSTEM"
)

// AUTH domain.
const (
	TypeRegisterRequest = "AUTH.REGISTER_REQUEST"
	TypeRegisterSuccess = "AUTH.REGISTER_SUCCESS"
	TypeRegisterFailure = "AUTH.REGISTER_FAILURE"
	TypeLoginRequest    = "AUTH.LOGIN_REQUEST"
	TypeLoginSuccess    = "AUTH.LOGIN_SUCCESS"
	TypeLoginFailure    = "AUTH.LOGIN_FAILURE"
	TypeLogoutRequest   = "AUTH.LOGOUT_REQUEST"
	TypeLogoutSuccess   = "AUTH.LOGOUT_SUCCESS"
)

// LOBBY domain.
const (
	TypeMatchRequest        = "LOBBY.MATCH_REQUEST"
	TypeMatchRequestAck     = "LOBBY.MATCH_REQUEST_ACK"
	TypeMatchCancel         = "LOBBY.MATCH_CANCEL"
	TypeLeaderboardRequest  = "LOBBY.LEADERBOARD_REQUEST"
	TypeLeaderboardResponse = "LOBBY.LEADERBOARD_RESPONSE"
)

// GAME domain.
const (
	TypeMatchFound      = "GAME.MATCH_FOUND"
	TypeGameStart       = "GAME.START"
	TypeRoundStart      = "GAME.ROUND_START"
	TypeRoundReveal     = "GAME.ROUND_REVEAL"
	TypeCardPlayRequest = "GAME.CARD_PLAY_REQUEST"
	TypeCardPlaySuccess = "GAME.CARD_PLAY_SUCCESS"
	TypeCardPlayFailure = "GAME.CARD_PLAY_FAILURE"
	TypeOpponentReady   = "GAME.OPPONENT_READY"
	TypeGameEnd         = "GAME.END"
	TypeOpponentLeft    = "GAME.OPPONENT_LEFT"
)

// SYSTEM domain.
const (
	TypeWelcome = "SYSTEM.WELCOME"
	TypePing    = "SYSTEM.PING"
	TypePong    = "SYSTEM.PONG"
	TypeError   = "SYSTEM.ERROR"
)

var knownDomains = map[string]struct{}{
	DomainAuth:   {},
	DomainLobby:  {},
	DomainGame:   {},
	DomainSystem: {},
}

// Domain returns the DOMAIN part of a message type, or "" if t is not
// namespaced.
func Domain(t string) string {
	i := strings.IndexByte(t, '.')
	if i <= 0 {
		return ""
	}
	return t[:i]
}

// Action returns the ACTION part of a message type, or "" if t is not
// namespaced.
func Action(t string) string {
	i := strings.IndexByte(t, '.')
	if i < 0 || i == len(t)-1 {
		return ""
	}
	return t[i+1:]
}

// IsValidType reports whether t has the form DOMAIN.ACTION with a known
// domain and a non-empty action.
func IsValidType(t string) bool {
	if strings.Count(t, ".") != 1 {
		return false
	}
	if _, ok := knownDomains[Domain(t)]; !ok {
		return false
	}
	return Action(t) != ""
}

// IsFailureType reports whether t is a server-side failure response.
func IsFailureType(t string) bool {
	return t == TypeError || strings.HasSuffix(t, "_FAILURE")
}
