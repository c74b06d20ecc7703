// Package wire defines the JSON wire format for the multiworld protocol.
//
// A frame is a JSON array of packet objects. Every packet object carries
// a "cmd" field naming the command; the remaining fields are
// command-specific. This client sends exactly one packet per outbound
// frame; servers may batch several packets into one inbound frame.
//
// # Typed Packets
//
// Each known command decodes into a dedicated struct. Commands this
// client does not know decode into UnknownPacket, which preserves the
// raw bytes so callers can inspect or ignore them. Unknown commands are
// never a decode error; forward compatibility with server extensions is
// a protocol requirement.
//
// # Frame Validation
//
// A frame that is not a JSON array, or that contains a non-object
// element, is rejected wholesale: none of its packets are processed.
// An object element without a "cmd" field is skipped while its sibling
// packets are still decoded.
package wire
