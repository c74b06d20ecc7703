package transport

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateAuthenticating, "AUTHENTICATING"},
		{StateReady, "READY"},
		{StateError, "ERROR"},
		{StateDisconnecting, "DISCONNECTING"},
		{State(200), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"connect from idle", StateDisconnected, StateConnecting, true},
		{"dial completes", StateConnecting, StateConnected, true},
		{"handshake begins", StateConnected, StateAuthenticating, true},
		{"handshake completes", StateAuthenticating, StateReady, true},
		{"teardown from ready", StateReady, StateDisconnecting, true},
		{"teardown settles", StateDisconnecting, StateDisconnected, true},
		{"error from connecting", StateConnecting, StateError, true},
		{"error from ready", StateReady, StateError, true},
		{"error recovery requires disconnect", StateError, StateConnecting, false},
		{"error to disconnected", StateError, StateDisconnected, true},
		{"reconnect while connected", StateConnected, StateConnecting, false},
		{"skip dial", StateDisconnected, StateConnected, false},
		{"skip handshake", StateConnected, StateReady, false},
		{"ready regression", StateReady, StateAuthenticating, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("validTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanSend(t *testing.T) {
	sendable := map[State]bool{
		StateConnected:      true,
		StateAuthenticating: true,
		StateReady:          true,
	}
	all := []State{
		StateDisconnected, StateConnecting, StateConnected,
		StateAuthenticating, StateReady, StateError, StateDisconnecting,
	}

	for _, st := range all {
		if got := st.canSend(); got != sendable[st] {
			t.Errorf("%s.canSend() = %v, want %v", st, got, sendable[st])
		}
	}
}
