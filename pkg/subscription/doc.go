/*
Package subscription delivers session events to host callbacks.

The protocol layer publishes through a Manager; hosts register typed
handlers and receive every later event of that kind. Four event kinds
exist:

  - item events: one per item appended to the session item log,
    together with the item's log index
  - location events: locations newly confirmed as checked
  - state events: session state transitions with a reason string
  - print events: human-readable server messages

# Dispatch Model

All emission happens on the host tick thread, so handlers run
synchronously in subscription order and never race with each other or
with host code. Handlers must not block.

Subscriptions return an identifier for later removal:

	id := mgr.SubscribeItem(func(item session.Item, index int) {
		// ...
	})
	defer mgr.Unsubscribe(id)
*/
package subscription
