package log

import "time"

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the server address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// SlotName is the slot this client plays as, when known.
	SlotName string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"8,keyasint,omitempty"`
	Packet      *PacketEvent      `cbor:"9,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the websocket framing layer (raw text frames).
	LayerTransport Layer = 0
	// LayerWire is the packet codec layer (decoded JSON).
	LayerWire Layer = 1
	// LayerProtocol is the session state machine layer.
	LayerProtocol Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerProtocol:
		return "PROTOCOL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame is a raw frame send or receive.
	CategoryFrame Category = 0
	// CategoryPacket is a decoded or encoded packet.
	CategoryPacket Category = 1
	// CategoryState is a connection or session state change.
	CategoryState Category = 2
	// CategoryError is an error at any layer.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryPacket:
		return "PACKET"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Entity names the state machine a StateChangeEvent belongs to.
type Entity uint8

const (
	// EntityConnection is the transport connection state machine.
	EntityConnection Entity = 0
	// EntitySession is the protocol session state machine.
	EntitySession Entity = 1
)

// String returns the entity name.
func (e Entity) String() string {
	switch e {
	case EntityConnection:
		return "CONNECTION"
	case EntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent describes a raw frame at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`
}

// PacketEvent describes a single packet at the wire layer.
type PacketEvent struct {
	// Cmd is the packet command tag.
	Cmd string `cbor:"1,keyasint"`

	// Skipped counts sibling packets dropped during frame decode.
	Skipped int `cbor:"2,keyasint,omitempty"`
}

// StateChangeEvent describes a state machine transition.
type StateChangeEvent struct {
	// Entity identifies which state machine changed.
	Entity Entity `cbor:"1,keyasint"`

	// OldState is the state name before the transition.
	OldState string `cbor:"2,keyasint"`

	// NewState is the state name after the transition.
	NewState string `cbor:"3,keyasint"`

	// Reason optionally explains the transition (e.g. a refusal).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData describes an error at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context gives the operation that failed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent creates a transport-layer frame event.
func NewFrameEvent(connID string, dir Direction, size int) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerTransport,
		Category:     CategoryFrame,
		Frame:        &FrameEvent{Size: size},
	}
}

// NewPacketEvent creates a wire-layer packet event.
func NewPacketEvent(connID string, dir Direction, cmd string, skipped int) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerWire,
		Category:     CategoryPacket,
		Packet:       &PacketEvent{Cmd: cmd, Skipped: skipped},
	}
}

// NewStateChangeEvent creates a state-change event.
func NewStateChangeEvent(connID string, entity Entity, oldState, newState, reason string) Event {
	layer := LayerTransport
	if entity == EntitySession {
		layer = LayerProtocol
	}
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        layer,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(connID string, layer Layer, err error, context string) Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        layer,
		Category:     CategoryError,
		Error: &ErrorEventData{
			Layer:   layer,
			Message: msg,
			Context: context,
		},
	}
}
