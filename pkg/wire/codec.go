package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrMalformedFrame indicates a frame that is not a JSON array of
	// objects. The entire frame is dropped; no packet in it is usable.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrEmptyCommand indicates an outbound packet without a command tag.
	ErrEmptyCommand = errors.New("empty command tag")
)

// decoders maps command tags to typed packet decoders.
var decoders = map[string]func(json.RawMessage) (Packet, error){
	CmdRoomInfo:          decodeInto[RoomInfoPacket],
	CmdDataPackage:       decodeInto[DataPackagePacket],
	CmdConnected:         decodeInto[ConnectedPacket],
	CmdConnectionRefused: decodeInto[ConnectionRefusedPacket],
	CmdReceivedItems:     decodeInto[ReceivedItemsPacket],
	CmdLocationInfo:      decodeInto[LocationInfoPacket],
	CmdPrintJSON:         decodeInto[PrintJSONPacket],
	CmdRetrieved:         decodeInto[RetrievedPacket],
	CmdSetReply:          decodeInto[SetReplyPacket],
	CmdRoomUpdate:        decodeInto[RoomUpdatePacket],
}

// decodeInto unmarshals raw bytes into a packet struct of type T.
func decodeInto[T any](raw json.RawMessage) (Packet, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	pkt, ok := any(&p).(Packet)
	if !ok {
		return nil, fmt.Errorf("type %T is not a Packet", &p)
	}
	return pkt, nil
}

// cmdProbe extracts only the command tag from a packet object.
type cmdProbe struct {
	Cmd string `json:"cmd"`
}

// DecodeFrame parses a wire frame into packets.
//
// A frame that is not a JSON array, or that contains a non-object
// element, returns ErrMalformedFrame and no packets. Object elements
// without a "cmd" field, and elements whose fields do not match their
// command's schema, are skipped; the skipped count is returned so
// callers can log them. Unrecognized commands decode into
// UnknownPacket and are never an error.
func DecodeFrame(data []byte) (packets []Packet, skipped int, err error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, 0, fmt.Errorf("%w: not a JSON array: %v", ErrMalformedFrame, err)
	}

	// First pass: every element must be an object, or the whole frame
	// is rejected.
	objects := make([]map[string]json.RawMessage, len(elements))
	for i, el := range elements {
		if err := json.Unmarshal(el, &objects[i]); err != nil {
			return nil, 0, fmt.Errorf("%w: element %d is not an object: %v", ErrMalformedFrame, i, err)
		}
	}

	for _, el := range elements {
		var probe cmdProbe
		if err := json.Unmarshal(el, &probe); err != nil || probe.Cmd == "" {
			skipped++
			continue
		}

		decode, known := decoders[probe.Cmd]
		if !known {
			packets = append(packets, &UnknownPacket{Cmd: probe.Cmd, Raw: el})
			continue
		}

		pkt, err := decode(el)
		if err != nil {
			skipped++
			continue
		}
		packets = append(packets, pkt)
	}

	return packets, skipped, nil
}

// EncodeFrame serializes a single packet as a one-element frame. This
// client never batches outbound packets.
func EncodeFrame(p Packet) ([]byte, error) {
	if p.Command() == "" {
		return nil, ErrEmptyCommand
	}
	data, err := json.Marshal([]Packet{p})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", p.Command(), err)
	}
	return data, nil
}
