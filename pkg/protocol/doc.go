/*
Package protocol drives the multiworld session handshake and routes
steady-state traffic.

The Machine sits between the transport and the host:

	┌─────────────────────────────┐
	│   Host (facade, console)    │
	└──────────────┬──────────────┘
	     intents   │   subscriptions
	┌──────────────┴──────────────┐
	│      protocol.Machine       │
	└──────────────┬──────────────┘
	     frames    │   state marks
	┌──────────────┴──────────────┐
	│     transport.Transport     │
	└─────────────────────────────┘

# Handshake

The server speaks first. On the transport reaching its connected
state, the session waits for RoomInfo, requests the data package,
authenticates with Connect, and settles in the connected session state
once the server accepts the slot:

	AWAITING_ROOM_INFO → AWAITING_CAPABILITIES → AUTHENTICATING → CONNECTED

A ConnectionRefused at any point moves the session to ERROR, carrying
the server's first reason string. Recovery is host-driven: disconnect,
then a fresh connect.

# Threading

All Machine methods and callbacks run on the host tick thread. The
transport delivers frames and state changes only inside its Service
call, and hosts issue intents from the same loop, so the Machine needs
no internal locking for its session state.
*/
package protocol
