package protocol

import "github.com/multiworld-protocol/multiworld-go/pkg/session"

// validTransition reports whether a session state change is legal. The
// handshake is strictly ordered; Error is reachable from any live
// state and only a disconnect leaves it.
func validTransition(from, to session.State) bool {
	if from == to {
		return false
	}
	switch to {
	case session.StateDisconnected:
		return true
	case session.StateError:
		return from != session.StateDisconnected
	case session.StateConnecting:
		return from == session.StateDisconnected
	case session.StateAwaitingRoomInfo:
		return from == session.StateConnecting
	case session.StateAwaitingCapabilities:
		return from == session.StateAwaitingRoomInfo
	case session.StateAuthenticating:
		return from == session.StateAwaitingCapabilities
	case session.StateConnected:
		return from == session.StateAuthenticating
	default:
		return false
	}
}
