// Package transport provides the websocket transport layer for the
// multiworld client.
//
// The transport layer handles:
//   - Websocket connections over TLS with mandatory certificate verification
//   - Asynchronous, non-blocking connection establishment
//   - A locked outbound frame queue flushed during Service
//   - Connection state management with guarded transitions
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      JSON Packet Frames        │
//	├────────────────────────────────┤
//	│      Websocket (text)          │
//	├────────────────────────────────┤
//	│   TLS (verified, no downgrade) │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Threading Model
//
// The host drives the transport exclusively through Service, called
// once per game tick. Service never blocks: it drains a bounded number
// of internal events (received frames, state changes, errors) onto the
// caller's thread and flushes as much of the outbound queue as the
// connection accepts. The read and dial goroutines only feed internal
// queues; every handler callback runs inside Service. A Disconnect or
// a newer Connect orphans in-flight dial and read goroutines, whose
// late results are discarded.
//
// There is no automatic retry and no internal timeout enforcement.
// A connection attempt that never completes must be bounded by the
// host between ticks.
package transport
