package protocol

import (
	"fmt"

	"github.com/multiworld-protocol/multiworld-go/pkg/session"
	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

// requireConnected gates outbound intents on a completed handshake.
func (m *Machine) requireConnected() error {
	if m.state != session.StateConnected {
		return fmt.Errorf("%w: session state is %s", ErrNotConnected, m.state)
	}
	return nil
}

// ReportLocation reports one completed location. The checked set is
// idempotent but the packet is sent regardless, since the server is
// authoritative.
func (m *Machine) ReportLocation(id int64) error {
	return m.ReportLocations([]int64{id})
}

// ReportLocations reports a batch of completed locations in one packet.
func (m *Machine) ReportLocations(ids []int64) error {
	if err := m.requireConnected(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var confirmed []int64
	for _, id := range ids {
		if m.store.AddChecked(id) {
			confirmed = append(confirmed, id)
		}
	}

	if err := m.send(wire.NewLocationChecksPacket(ids...)); err != nil {
		return err
	}
	if len(confirmed) > 0 {
		m.subs.EmitLocations(confirmed)
	}
	return nil
}

// UpdateStatus reports the client's play status, e.g. wire.StatusGoal
// on completion.
func (m *Machine) UpdateStatus(status int) error {
	if err := m.requireConnected(); err != nil {
		return err
	}
	return m.send(wire.NewStatusUpdatePacket(status))
}

// Say sends a chat message to the room.
func (m *Machine) Say(text string) error {
	if err := m.requireConnected(); err != nil {
		return err
	}
	return m.send(wire.NewSayPacket(text))
}

// RequestHint asks the server to publish a hint for a location.
func (m *Machine) RequestHint(location int64) error {
	if err := m.requireConnected(); err != nil {
		return err
	}
	return m.send(wire.NewHintRequestPacket(location))
}
