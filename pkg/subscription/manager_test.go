package subscription

import (
	"testing"

	"github.com/multiworld-protocol/multiworld-go/pkg/session"
)

func TestItemsDispatchOrder(t *testing.T) {
	m := NewManager()

	var order []string
	m.SubscribeItem(func(session.Item, int) { order = append(order, "first") })
	m.SubscribeItem(func(session.Item, int) { order = append(order, "second") })
	m.SubscribeItem(func(session.Item, int) { order = append(order, "third") })

	m.EmitItem(session.Item{ID: 1}, 0)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got %d calls, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestItemsPayload(t *testing.T) {
	m := NewManager()

	var gotItem session.Item
	var gotIndex int
	m.SubscribeItem(func(item session.Item, index int) {
		gotItem = item
		gotIndex = index
	})

	m.EmitItem(session.Item{ID: 42, Location: 7, Player: 2, Name: "Compass"}, 3)

	if gotIndex != 3 {
		t.Errorf("index = %d, want 3", gotIndex)
	}
	if gotItem.ID != 42 || gotItem.Name != "Compass" {
		t.Errorf("item = %+v", gotItem)
	}
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager()

	calls := 0
	id := m.SubscribeLocations(func([]int64) { calls++ })

	m.EmitLocations([]int64{1})
	m.Unsubscribe(id)
	m.EmitLocations([]int64{2})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestUnsubscribeUnknownID(t *testing.T) {
	m := NewManager()
	m.SubscribePrint(func(Message) {})
	m.Unsubscribe(9999)
	m.EmitPrint(Message{Text: "still delivered"})
}

func TestStateAndPrintEvents(t *testing.T) {
	m := NewManager()

	var gotState StateChange
	var gotMsg Message
	m.SubscribeState(func(c StateChange) { gotState = c })
	m.SubscribePrint(func(msg Message) { gotMsg = msg })

	m.EmitState(StateChange{
		Old:    session.StateAuthenticating,
		New:    session.StateConnected,
		Reason: "slot accepted",
	})
	m.EmitPrint(Message{Text: "Player joined", Priority: 1})

	if gotState.Old != session.StateAuthenticating || gotState.New != session.StateConnected {
		t.Errorf("state change = %+v", gotState)
	}
	if gotState.Reason != "slot accepted" {
		t.Errorf("reason = %q", gotState.Reason)
	}
	if gotMsg.Text != "Player joined" || gotMsg.Priority != 1 {
		t.Errorf("message = %+v", gotMsg)
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	m := NewManager()

	var id2 uint32
	calls := 0
	m.SubscribeItem(func(session.Item, int) {
		calls++
		m.Unsubscribe(id2)
	})
	id2 = m.SubscribeItem(func(session.Item, int) { calls++ })

	// The snapshot taken at emit time still includes the second
	// handler; removal takes effect on the next emit.
	m.EmitItem(session.Item{}, 0)
	if calls != 2 {
		t.Errorf("calls after first emit = %d, want 2", calls)
	}

	m.EmitItem(session.Item{}, 0)
	if calls != 3 {
		t.Errorf("calls after second emit = %d, want 3", calls)
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	m := NewManager()
	seen := map[uint32]bool{}
	for i := 0; i < 10; i++ {
		id := m.SubscribeItem(func(session.Item, int) {})
		if seen[id] {
			t.Fatalf("duplicate subscription id %d", id)
		}
		seen[id] = true
	}
}
