package peer

import (
	"errors"
	"fmt"
	"time"
)

// ErrConnectionDropped is returned by SyntheticPeer.RecvMessage (and its
// blocking variants) once the peer has been shut down and its inbound
// channel has been drained and closed. It is the Go counterpart
// of the upstream tool's panic-on-closed-channel behavior.
var ErrConnectionDropped = errors.New("peer: connection dropped")

// ErrConnectionAborted is returned by PingPong when the connection closes
// mid-exchange instead of answering with a Pong.
var ErrConnectionAborted = errors.New("peer: connection aborted during exchange")

// HandshakeError reports a failure during the Version/Verack exchange.
type HandshakeError struct {
	// Stage names the step of the handshake that failed, e.g. "send
	// version", "read verack".
	Stage string
	Err   error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("peer: handshake failed at %s: %v", e.Stage, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// UnexpectedMessageError reports that a handshake step received a message
// other than the one it required.
type UnexpectedMessageError struct {
	Stage  string
	Wanted string
	Got    string
}

func (e *UnexpectedMessageError) Error() string {
	return fmt.Sprintf("peer: handshake at %s wanted %s, got %s", e.Stage, e.Wanted, e.Got)
}

// PingPongError reports why PingPong failed to observe a matching Pong.
type PingPongError struct {
	// Kind is one of "aborted", "timeout", or "unexpected".
	Kind string

	// Timeout is populated when Kind == "timeout".
	Timeout time.Duration

	// Got is populated when Kind == "unexpected" and names the command of
	// the message that arrived instead of the expected Pong.
	Got string
}

// Unwrap maps an aborted exchange onto ErrConnectionAborted so callers can
// test for it with errors.Is without inspecting Kind.
func (e *PingPongError) Unwrap() error {
	if e.Kind == "aborted" {
		return ErrConnectionAborted
	}
	return nil
}

func (e *PingPongError) Error() string {
	switch e.Kind {
	case "aborted":
		return "peer: connection aborted during ping/pong exchange"
	case "timeout":
		return fmt.Sprintf("peer: ping/pong timed out after %s", e.Timeout)
	case "unexpected":
		return fmt.Sprintf("peer: expected a matching pong, got %s", e.Got)
	default:
		return "peer: ping/pong error"
	}
}
