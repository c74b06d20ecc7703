/*
Package client is the host-facing facade over the multiworld protocol
stack.

A Client owns one transport, one session, and the subscription fan-out.
Hosts construct it, register subscriptions, connect, and then drive it
from their own loop:

	cfg := client.Config{Game: "Selaco", Host: "multiworld.example.com", UseTLS: true}
	c, err := client.New(cfg, nil)
	if err != nil {
		// ...
	}
	if err := c.Initialize(); err != nil {
		// ...
	}
	c.OnItemReceived(func(item session.Item, index int) {
		// grant the item in the host game
	})
	if err := c.Connect("", 0, "Dawn", ""); err != nil {
		// ...
	}
	for running {
		c.Tick()
		// host frame work
	}
	c.Shutdown()

Tick never blocks. All subscriptions fire inside Tick, on the calling
goroutine. The client never retries or times out on its own; a
connection stuck in a handshake is bounded by the host, and a failed
one stays in the error state until the host disconnects and connects
again.
*/
package client
