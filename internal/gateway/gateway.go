// Package gateway turns outbound intents into envelopes on the live
// connection.
package gateway

import (
	"errors"
	"fmt"

	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/pkg/logger"
	"github.com/levanminh04/Network-Programming/protocol/wire"
)

// ErrNotOpen is returned when a send is attempted without an open connection.
var ErrNotOpen = errors.New("connection not open")

// Conn is the transport. *websocket.Manager implements it.
type Conn interface {
	IsOpen() bool
	Send(env wire.Envelope) error
}

// Gateway sends one message at a time and never queues: a message that
// cannot be written now is rejected.
type Gateway struct {
	conn      Conn
	sessionID func() string
	reject    func(game.Event)
	log       *logger.Logger
}

var _ game.Sender = (*Gateway)(nil)

// New returns a Gateway. sessionID supplies the id stamped on each envelope;
// reject receives a SendRejected event for every failed send.
func New(conn Conn, sessionID func() string, reject func(game.Event)) *Gateway {
	if sessionID == nil {
		sessionID = func() string { return "" }
	}
	if reject == nil {
		reject = func(game.Event) {}
	}
	return &Gateway{conn: conn, sessionID: sessionID, reject: reject, log: logger.Named("gateway")}
}

// Send encodes payload as msgType and writes it.
func (g *Gateway) Send(msgType string, payload any) error {
	if g.conn == nil || !g.conn.IsOpen() {
		g.log.Debugf("not connected; rejecting %s", msgType)
		g.reject(game.SendRejected{Type: msgType, Message: game.MsgNotConnected})
		return ErrNotOpen
	}

	env, err := wire.Encode(msgType, payload, g.sessionID())
	if err != nil {
		g.log.Errorf("encode %s: %v", msgType, err)
		g.reject(game.SendRejected{Type: msgType, Message: game.MsgSystemError})
		return fmt.Errorf("encode %s: %w", msgType, err)
	}
	if err := g.conn.Send(env); err != nil {
		g.log.Warnf("send %s: %v", msgType, err)
		g.reject(game.SendRejected{Type: msgType, Message: game.MsgNotConnected})
		return err
	}
	return nil
}
