package websocket

import (
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
)

// BackoffDelay returns min(base*2^attempt, ceiling). Attempts count from 1.
func BackoffDelay(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		return 0
	}
	if attempt >= 32 {
		return ceiling
	}
	d := base << uint(attempt)
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

// Timer is a cancellable scheduled callback.
type Timer = actor.Timer

// Scheduler schedules reconnect attempts. Tests substitute a manual one.
type Scheduler = actor.Scheduler
