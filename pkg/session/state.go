// Package session holds the accumulated state of one multiworld
// session: the session-level state enum, the set of reported
// locations, the received-item log, and the room snapshot.
package session

// State represents the session-level protocol state. It is layered on
// top of the transport connection state and can only advance while the
// transport is connected.
type State uint8

const (
	// StateDisconnected - no session.
	StateDisconnected State = iota

	// StateConnecting - transport connection attempt in progress.
	StateConnecting

	// StateAwaitingRoomInfo - waiting for the server's RoomInfo packet.
	StateAwaitingRoomInfo

	// StateAwaitingCapabilities - waiting for the DataPackage reply.
	StateAwaitingCapabilities

	// StateAuthenticating - Connect sent, waiting for the verdict.
	StateAuthenticating

	// StateConnected - authenticated, steady-state traffic is valid.
	StateConnected

	// StateError - the session failed; recovery requires a host-driven
	// disconnect and a fresh connect.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateAwaitingRoomInfo:
		return "AWAITING_ROOM_INFO"
	case StateAwaitingCapabilities:
		return "AWAITING_CAPABILITIES"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
