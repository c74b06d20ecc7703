package transport

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no connection.
	StateDisconnected State = iota

	// StateConnecting indicates connection in progress.
	StateConnecting

	// StateConnected indicates an established connection.
	StateConnected

	// StateAuthenticating indicates the session layer is authenticating.
	StateAuthenticating

	// StateReady indicates the session layer finished its handshake.
	StateReady

	// StateError indicates a failed connection awaiting host recovery.
	StateError

	// StateDisconnecting indicates graceful close in progress.
	StateDisconnecting
)

// String returns the connection state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateReady:
		return "READY"
	case StateError:
		return "ERROR"
	case StateDisconnecting:
		return "DISCONNECTING"
	default:
		return "UNKNOWN"
	}
}

// canSend reports whether outbound frames may be queued in this state.
// Frames are accepted from the moment the connection is established
// until teardown begins.
func (s State) canSend() bool {
	return s >= StateConnected && s <= StateReady
}

// validTransition reports whether a transition between two distinct
// states is legal. The machine is monotonic
// (Disconnected → Connecting → Connected → Authenticating → Ready)
// except that Error is reachable from any live state, Disconnecting
// from any non-terminal state, and Disconnected terminates every
// teardown. Recovery from Error requires an explicit disconnect before
// a new connect.
func validTransition(from, to State) bool {
	if from == to {
		return false
	}
	switch to {
	case StateDisconnected:
		return true
	case StateError:
		return from != StateDisconnected
	case StateDisconnecting:
		return from != StateDisconnected
	case StateConnecting:
		return from == StateDisconnected
	case StateConnected:
		return from == StateConnecting
	case StateAuthenticating:
		return from == StateConnected
	case StateReady:
		return from == StateAuthenticating
	default:
		return false
	}
}
