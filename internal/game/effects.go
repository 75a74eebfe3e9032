package game

import (
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
)

// timerReturnToLobby names the deferred lobby return scheduled by
// OpponentLeft.
const timerReturnToLobby = "return-to-lobby"

// effSend asks the runtime to send one outbound message. OnSent events are
// emitted after a successful write, OnFail events after a rejected one.
type effSend struct {
	actor.EffectBase
	Type    string
	Payload any
	OnSent  []Event
	OnFail  []Event
}

// effStartTimer schedules TimerFired{Name, Gen} after After, replacing any
// timer with the same name.
type effStartTimer struct {
	actor.EffectBase
	Name  string
	After time.Duration
	Gen   int64
}

// effCancelTimer cancels a named timer.
type effCancelTimer struct {
	actor.EffectBase
	Name string
}

// effReconnect triggers a manual reconnect.
type effReconnect struct {
	actor.EffectBase
}

// effPersistSession saves the session for restore after restart.
type effPersistSession struct {
	actor.EffectBase
	Session Session
}

// effClearSession removes the persisted session.
type effClearSession struct {
	actor.EffectBase
}

// effRecordGame appends a finished game to history.
type effRecordGame struct {
	actor.EffectBase
	Record GameRecord
}
