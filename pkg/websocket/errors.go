package websocket

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned for any operation on a closed session.
	// Closed is terminal; create a new session to reconnect.
	ErrSessionClosed = errors.New("websocket session closed")

	// ErrNotConnected is returned when a frame cannot be sent because no
	// transport connection is currently established.
	ErrNotConnected = errors.New("websocket session not connected")
)

// AuthError is a login rejection from the exchange.
type AuthError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("websocket login rejected (code %s): %s", e.Code, e.Message)
}

// permanentAuthCodes are rejections that retrying the same login can never
// fix: bad key material, bad signature, or a clock offset that would
// reproduce identically on the next attempt.
var permanentAuthCodes = map[string]bool{
	"60004": true, // invalid timestamp
	"60005": true, // invalid apiKey
	"60006": true, // timestamp request expired
	"60007": true, // invalid sign
	"60009": true, // login failed
	"60022": true, // bulk login not supported / not authenticated
}

// Permanent reports whether retrying the login could ever succeed. The
// session abandons reconnection on permanent rejections instead of looping.
func (e *AuthError) Permanent() bool {
	return permanentAuthCodes[e.Code]
}
