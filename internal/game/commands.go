package game

import "github.com/levanminh04/Network-Programming/internal/actor"

// Commands are user intents. They are validated by the reducer and turned
// into sends; their outcomes come back as events.

type cmdLogin struct {
	actor.InputBase
	Username string
	Password string
}

type cmdRegister struct {
	actor.InputBase
	Username    string
	Password    string
	Email       string
	DisplayName string
}

type cmdFindMatch struct {
	actor.InputBase
	AtMs int64
}

type cmdCancelMatch struct {
	actor.InputBase
}

type cmdPlayCard struct {
	actor.InputBase
	CardID string
	AtMs   int64
}

type cmdLogout struct {
	actor.InputBase
}

type cmdRequestLeaderboard struct {
	actor.InputBase
}

type cmdReconnect struct {
	actor.InputBase
}
