package protocol

import (
	"errors"
	"fmt"

	"github.com/multiworld-protocol/multiworld-go/pkg/datapkg"
	"github.com/multiworld-protocol/multiworld-go/pkg/log"
	"github.com/multiworld-protocol/multiworld-go/pkg/session"
	"github.com/multiworld-protocol/multiworld-go/pkg/subscription"
	"github.com/multiworld-protocol/multiworld-go/pkg/transport"
	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

// Protocol errors.
var (
	ErrNotConnected = errors.New("session not connected")
	ErrSendFailed   = errors.New("send failed")
)

// DefaultRefusalReason is surfaced when the server refuses a
// connection without naming a reason.
const DefaultRefusalReason = "connection refused"

// Sender is the transport surface the machine needs: frame output plus
// the two session-progress marks the connection state tracks.
type Sender interface {
	Send(data []byte) error
	MarkAuthenticating() error
	MarkReady() error
}

// Options configure one session.
type Options struct {
	// Game is the game identifier this client plays.
	Game string

	// SlotName is the participant identity to authenticate as.
	SlotName string

	// Password is the room password, empty when the room has none.
	Password string

	// UUID is the stable per-instance client identifier.
	UUID string

	// Tags are the client tags sent with Connect.
	Tags []string

	// ItemsHandling is the item-visibility bitmask. Zero selects
	// wire.ItemsHandlingAll.
	ItemsHandling int
}

// Machine enforces the handshake ordering and translates between
// session intents and wire packets. All methods must be called from
// the host tick thread.
type Machine struct {
	opts   Options
	sender Sender
	store  *session.Store
	names  *datapkg.Store
	subs   *subscription.Manager
	logger log.Logger

	state session.State
}

// NewMachine creates a session machine. store, names and subs must not
// be nil; logger may be.
func NewMachine(opts Options, sender Sender, store *session.Store, names *datapkg.Store, subs *subscription.Manager, logger log.Logger) *Machine {
	if opts.ItemsHandling == 0 {
		opts.ItemsHandling = wire.ItemsHandlingAll
	}
	return &Machine{
		opts:   opts,
		sender: sender,
		store:  store,
		names:  names,
		subs:   subs,
		logger: log.OrNoop(logger),
		state:  session.StateDisconnected,
	}
}

// State returns the current session state.
func (m *Machine) State() session.State {
	return m.state
}

// Connected reports whether the session completed its handshake.
func (m *Machine) Connected() bool {
	return m.state == session.StateConnected
}

// transition moves the session to a new state and emits the change
// exactly once. Duplicate-state calls are no-ops.
func (m *Machine) transition(to session.State, reason string) error {
	old := m.state
	if old == to {
		return nil
	}
	if !validTransition(old, to) {
		return fmt.Errorf("invalid session transition: %s -> %s", old, to)
	}
	m.state = to

	m.logger.Log(log.NewStateChangeEvent(
		m.opts.UUID, log.EntitySession, old.String(), to.String(), reason))
	m.subs.EmitState(subscription.StateChange{Old: old, New: to, Reason: reason})
	return nil
}

// OnStateChange tracks the transport connection. Implements
// transport.Handler.
func (m *Machine) OnStateChange(oldState, newState transport.State) {
	switch newState {
	case transport.StateConnecting:
		_ = m.transition(session.StateConnecting, "")
	case transport.StateConnected:
		// The server speaks first.
		_ = m.transition(session.StateAwaitingRoomInfo, "")
	case transport.StateError:
		_ = m.transition(session.StateError, "transport failure")
	case transport.StateDisconnected:
		_ = m.transition(session.StateDisconnected, "")
	}
}

// OnError surfaces transport errors into the event log. Implements
// transport.Handler.
func (m *Machine) OnError(err error) {
	m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerProtocol, err, "transport"))
}

// OnFrame decodes an inbound frame and routes its packets. A malformed
// frame is dropped wholesale; packet-level problems skip only the
// offending packet. Implements transport.Handler.
func (m *Machine) OnFrame(data []byte) {
	packets, skipped, err := wire.DecodeFrame(data)
	if err != nil {
		m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerWire, err, "frame dropped"))
		return
	}

	for _, p := range packets {
		m.logger.Log(log.NewPacketEvent(m.opts.UUID, log.DirectionIn, p.Command(), skipped))
		skipped = 0
		m.route(p)
	}
}

// route dispatches one decoded packet.
func (m *Machine) route(p wire.Packet) {
	switch pkt := p.(type) {
	case *wire.RoomInfoPacket:
		m.handleRoomInfo(pkt)
	case *wire.DataPackagePacket:
		m.handleDataPackage(pkt)
	case *wire.ConnectedPacket:
		m.handleConnected(pkt)
	case *wire.ConnectionRefusedPacket:
		m.handleRefused(pkt)
	case *wire.ReceivedItemsPacket:
		m.handleReceivedItems(pkt)
	case *wire.PrintJSONPacket:
		m.subs.EmitPrint(subscription.Message{Text: pkt.Text, Priority: pkt.Priority})
	case *wire.RoomUpdatePacket:
		m.handleRoomUpdate(pkt)
	case *wire.LocationInfoPacket, *wire.RetrievedPacket, *wire.SetReplyPacket:
		// Recognized, currently unused. Must never fail.
	case *wire.UnknownPacket:
		m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerProtocol,
			fmt.Errorf("unrecognized command %q", pkt.Cmd), "ignored"))
	}
}

func (m *Machine) handleRoomInfo(pkt *wire.RoomInfoPacket) {
	m.store.SetRoomInfo(session.RoomInfo{
		SeedName:            pkt.SeedName,
		PasswordRequired:    pkt.PasswordRequired,
		HintCost:            pkt.HintCost,
		LocationCheckPoints: pkt.LocationCheckPoints,
		Permissions:         pkt.Permissions,
		Version:             pkt.Version,
	})

	if m.state != session.StateAwaitingRoomInfo {
		// A repeated RoomInfo refreshes the snapshot without
		// restarting the handshake.
		return
	}
	if err := m.transition(session.StateAwaitingCapabilities, ""); err != nil {
		return
	}

	// A cached data package whose checksum still matches makes the
	// round trip unnecessary.
	checksum := pkt.DataPackageChecksums[m.opts.Game]
	if checksum != "" && m.names.LoadCached(m.opts.Game, checksum) {
		m.sendConnect()
		return
	}
	m.send(wire.NewGetDataPackagePacket(m.opts.Game))
}

func (m *Machine) handleDataPackage(pkt *wire.DataPackagePacket) {
	m.names.Merge(pkt.Data)
	if m.state != session.StateAwaitingCapabilities {
		return
	}
	m.sendConnect()
}

// sendConnect emits the Connect packet and advances to Authenticating.
func (m *Machine) sendConnect() {
	connect := wire.NewConnectPacket(
		m.opts.Game, m.opts.SlotName, m.opts.Password, m.opts.UUID,
		m.opts.ItemsHandling, m.opts.Tags)
	if err := m.send(connect); err != nil {
		return
	}
	if err := m.sender.MarkAuthenticating(); err != nil {
		m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerProtocol, err, "mark authenticating"))
	}
	_ = m.transition(session.StateAuthenticating, "")
}

func (m *Machine) handleConnected(pkt *wire.ConnectedPacket) {
	if m.state != session.StateAuthenticating {
		return
	}

	m.store.SetSlot(pkt.Team, pkt.Slot)

	// The server's checked set is authoritative; merge it and confirm
	// anything we did not already know about.
	var confirmed []int64
	for _, id := range pkt.CheckedLocations {
		if m.store.AddChecked(id) {
			confirmed = append(confirmed, id)
		}
	}

	if err := m.sender.MarkReady(); err != nil {
		m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerProtocol, err, "mark ready"))
	}
	_ = m.transition(session.StateConnected, "slot accepted")

	if len(confirmed) > 0 {
		m.subs.EmitLocations(confirmed)
	}
}

func (m *Machine) handleRefused(pkt *wire.ConnectionRefusedPacket) {
	reason := DefaultRefusalReason
	if len(pkt.Errors) > 0 && pkt.Errors[0] != "" {
		reason = pkt.Errors[0]
	}
	_ = m.transition(session.StateError, reason)
}

func (m *Machine) handleReceivedItems(pkt *wire.ReceivedItemsPacket) {
	for _, ni := range pkt.Items {
		name, _ := m.names.ItemName(m.opts.Game, ni.Item)
		item := session.Item{
			ID:         ni.Item,
			Location:   ni.Location,
			Player:     ni.Player,
			Name:       name,
			Classified: ni.Flags&wire.ItemFlagTrap != 0,
		}
		index := m.store.AppendItem(item)
		m.subs.EmitItem(item, index)
	}
}

func (m *Machine) handleRoomUpdate(pkt *wire.RoomUpdatePacket) {
	if pkt.HintCost != nil {
		m.store.SetHintCost(*pkt.HintCost)
	}

	var confirmed []int64
	for _, id := range pkt.CheckedLocations {
		if m.store.AddChecked(id) {
			confirmed = append(confirmed, id)
		}
	}
	if len(confirmed) > 0 {
		m.subs.EmitLocations(confirmed)
	}
}

// send encodes a packet into a single-packet frame and hands it to the
// transport.
func (m *Machine) send(p wire.Packet) error {
	data, err := wire.EncodeFrame(p)
	if err != nil {
		m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerWire, err, p.Command()))
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if err := m.sender.Send(data); err != nil {
		m.logger.Log(log.NewErrorEvent(m.opts.UUID, log.LayerProtocol, err, p.Command()))
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	m.logger.Log(log.NewPacketEvent(m.opts.UUID, log.DirectionOut, p.Command(), 0))
	return nil
}
