// Package wire defines the JSON envelope exchanged with the game server and
// the payloads carried inside it.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is the unit of wire communication.
type Envelope struct {
	// Type is the DOMAIN.ACTION tag.
	Type string `json:"type"`
	// CorrelationID is generated per outbound request.
	CorrelationID string `json:"correlationId,omitempty"`
	// SessionID is set by the server on login and echoed on every later
	// outbound envelope.
	SessionID string `json:"sessionId,omitempty"`
	// Payload is the type-specific body.
	Payload json.RawMessage `json:"payload,omitempty"`
	// Error is only present on failure envelopes.
	Error *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is the structured failure detail of a failure envelope.
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error implements error.
func (e *ErrorInfo) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// DecodeError reports an inbound frame that could not be turned into an
// Envelope. Callers drop the frame.
type DecodeError struct {
	Size int
	Err  error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode envelope (%d bytes): %v", e.Size, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// NewCorrelationID returns an id of the form c-<unix millis>-<9 random chars>.
func NewCorrelationID() string {
	return newCorrelationID(time.Now())
}

func newCorrelationID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("c-%d-%s", now.UnixMilli(), suffix)
}

var emptyObject = json.RawMessage(`{}`)

// Encode builds an outbound envelope with a fresh correlation id. sessionID is
// attached when non-empty. A nil payload is sent as {}.
func Encode(msgType string, payload any, sessionID string) (Envelope, error) {
	if !IsValidType(msgType) {
		return Envelope{}, fmt.Errorf("invalid message type %q", msgType)
	}
	raw := emptyObject
	if payload != nil {
		if pre, ok := payload.(json.RawMessage); ok {
			raw = pre
		} else {
			b, err := json.Marshal(payload)
			if err != nil {
				return Envelope{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
			}
			raw = b
		}
	}
	return Envelope{
		Type:          msgType,
		CorrelationID: NewCorrelationID(),
		SessionID:     sessionID,
		Payload:       raw,
	}, nil
}

// Marshal returns the JSON text of env.
func Marshal(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Decode parses an inbound frame. Any malformed input yields a *DecodeError.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	// Unmarshal rejects trailing data after the envelope object.
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, &DecodeError{Size: len(raw), Err: err}
	}
	if err := env.ValidateBasic(); err != nil {
		return Envelope{}, &DecodeError{Size: len(raw), Err: err}
	}
	return env, nil
}

// ValidateBasic checks the envelope header without looking at the payload.
func (e Envelope) ValidateBasic() error {
	if e.Type == "" {
		return fmt.Errorf("missing type")
	}
	if !IsValidType(e.Type) {
		return fmt.Errorf("invalid type %q", e.Type)
	}
	return nil
}

// Failed reports whether the envelope is a failure response.
func (e Envelope) Failed() bool {
	return e.Error != nil || IsFailureType(e.Type)
}

// ErrorMessage returns the server's error message or fallback when absent.
func (e Envelope) ErrorMessage(fallback string) string {
	if e.Error != nil && strings.TrimSpace(e.Error.Message) != "" {
		return e.Error.Message
	}
	return fallback
}

// HasPayload reports whether the payload is present and not JSON null.
func (e Envelope) HasPayload() bool {
	p := bytes.TrimSpace(e.Payload)
	return len(p) > 0 && !bytes.Equal(p, []byte("null"))
}

// DecodePayload unmarshals the payload into dst. A missing payload leaves dst
// untouched.
func (e Envelope) DecodePayload(dst any) error {
	if !e.HasPayload() {
		return nil
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
