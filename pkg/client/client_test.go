package client

import (
	"errors"
	"testing"
	"time"

	"github.com/multiworld-protocol/multiworld-go/internal/testserver"
	"github.com/multiworld-protocol/multiworld-go/pkg/protocol"
	"github.com/multiworld-protocol/multiworld-go/pkg/session"
	"github.com/multiworld-protocol/multiworld-go/pkg/subscription"
	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

func selacoGames() map[string]wire.GameData {
	return map[string]wire.GameData{
		"Selaco": {
			ItemNameToID:     map[string]int64{"Shotgun": 7100, "Medkit": 7101},
			LocationNameToID: map[string]int64{"Armory Crate": 7200},
			Checksum:         "c1",
		},
	}
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Game == "" {
		cfg.Game = "Selaco"
	}
	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return c
}

// drive ticks the client until the condition holds or the deadline
// passes.
func drive(t *testing.T, c *Client, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.Tick()
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v; session=%s connection=%s",
		timeout, c.SessionState(), c.ConnectionState())
}

func TestFullSession(t *testing.T) {
	srv := testserver.New(testserver.Options{
		SeedName: "seed-9",
		HintCost: 10,
		Games:    selacoGames(),
		Slot:     4,
	})
	defer srv.Close()

	c := newTestClient(t, Config{})

	var states []subscription.StateChange
	c.OnStateChanged(func(ch subscription.StateChange) { states = append(states, ch) })
	var items []session.Item
	c.OnItemReceived(func(item session.Item, _ int) { items = append(items, item) })
	var prints []subscription.Message
	c.OnPrint(func(m subscription.Message) { prints = append(prints, m) })

	host, port := srv.Addr()
	if err := c.Connect(host, port, "Dawn", ""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	drive(t, c, 3*time.Second, c.Connected)

	if c.Slot() != 4 {
		t.Errorf("slot = %d, want 4", c.Slot())
	}
	info, ok := c.RoomInfo()
	if !ok || info.SeedName != "seed-9" || info.HintCost != 10 {
		t.Errorf("room info = %+v, %v", info, ok)
	}

	// The handshake progresses one transition at a time.
	wantOrder := []session.State{
		session.StateConnecting,
		session.StateAwaitingRoomInfo,
		session.StateAwaitingCapabilities,
		session.StateAuthenticating,
		session.StateConnected,
	}
	if len(states) != len(wantOrder) {
		t.Fatalf("got %d state changes %v, want %d", len(states), states, len(wantOrder))
	}
	for i, want := range wantOrder {
		if states[i].New != want {
			t.Errorf("transition %d entered %s, want %s", i, states[i].New, want)
		}
	}

	// Server-initiated traffic reaches subscriptions through Tick.
	srv.PushItems(0, wire.NetworkItem{Item: 7100, Location: 7200, Player: 2})
	srv.PushPrint("Dawn found a Shotgun", 1)
	drive(t, c, 3*time.Second, func() bool { return len(items) > 0 && len(prints) > 0 })

	if items[0].Name != "Shotgun" {
		t.Errorf("item name = %q, want Shotgun", items[0].Name)
	}
	if name, ok := c.ItemName(7101); !ok || name != "Medkit" {
		t.Errorf("ItemName(7101) = %q, %v", name, ok)
	}
	if prints[0].Text != "Dawn found a Shotgun" {
		t.Errorf("print = %+v", prints[0])
	}

	// Client-initiated traffic reaches the server.
	if err := c.ReportLocation(7200); err != nil {
		t.Fatalf("ReportLocation failed: %v", err)
	}
	drive(t, c, 3*time.Second, func() bool {
		for _, cmd := range srv.ReceivedCommands() {
			if cmd == wire.CmdLocationChecks {
				return true
			}
		}
		return false
	})

	if got := c.CheckedLocations(); len(got) != 1 || got[0] != 7200 {
		t.Errorf("checked locations = %v, want [7200]", got)
	}

	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	// The finished session stays inspectable after disconnect.
	if len(c.Items()) != 1 {
		t.Errorf("item log after disconnect = %v", c.Items())
	}
}

func TestRefusedSession(t *testing.T) {
	srv := testserver.New(testserver.Options{
		RefuseWith: []string{"InvalidSlot"},
		Games:      selacoGames(),
	})
	defer srv.Close()

	c := newTestClient(t, Config{})

	var last subscription.StateChange
	c.OnStateChanged(func(ch subscription.StateChange) { last = ch })

	host, port := srv.Addr()
	if err := c.Connect(host, port, "Nobody", ""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	drive(t, c, 3*time.Second, func() bool {
		return c.SessionState() == session.StateError
	})

	if last.Reason != "InvalidSlot" {
		t.Errorf("refusal reason = %q, want InvalidSlot", last.Reason)
	}
	if c.Connected() {
		t.Error("refused session reports connected")
	}
}

func TestPasswordFromConfig(t *testing.T) {
	srv := testserver.New(testserver.Options{
		Password: "sekrit",
		Games:    selacoGames(),
	})
	defer srv.Close()

	host, port := srv.Addr()
	c := newTestClient(t, Config{Password: "sekrit", SlotName: "Dawn"})

	// Empty arguments fall back to configured values.
	if err := c.Connect(host, port, "", ""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	drive(t, c, 3*time.Second, c.Connected)
}

func TestIntentsBeforeConnect(t *testing.T) {
	c := newTestClient(t, Config{})

	if err := c.ReportLocation(1); !errors.Is(err, protocol.ErrNotConnected) {
		t.Errorf("ReportLocation before Connect = %v, want ErrNotConnected", err)
	}
	if err := c.SendChat("hi"); !errors.Is(err, protocol.ErrNotConnected) {
		t.Errorf("SendChat before Connect = %v, want ErrNotConnected", err)
	}
	if c.SessionState() != session.StateDisconnected {
		t.Errorf("session state = %s, want DISCONNECTED", c.SessionState())
	}
}

func TestShutdownClearsSession(t *testing.T) {
	srv := testserver.New(testserver.Options{Games: selacoGames()})
	defer srv.Close()

	c := newTestClient(t, Config{})
	host, port := srv.Addr()
	if err := c.Connect(host, port, "Dawn", ""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	drive(t, c, 3*time.Second, c.Connected)

	c.Shutdown()

	if c.SessionState() != session.StateDisconnected {
		t.Errorf("session state after Shutdown = %s", c.SessionState())
	}
	if _, ok := c.RoomInfo(); ok {
		t.Error("room info survived Shutdown")
	}
	if len(c.Items()) != 0 || len(c.CheckedLocations()) != 0 {
		t.Error("session logs survived Shutdown")
	}

	// The same client instance can run a second session.
	if err := c.Connect(host, port, "Dawn", ""); err != nil {
		t.Fatalf("reconnect after Shutdown failed: %v", err)
	}
	drive(t, c, 3*time.Second, c.Connected)
}

func TestInvalidConfigRejected(t *testing.T) {
	if _, err := New(Config{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New without game = %v, want ErrInvalidConfig", err)
	}
}

func TestGeneratedUUIDStable(t *testing.T) {
	c := newTestClient(t, Config{})
	if c.UUID() == "" {
		t.Fatal("client has no UUID")
	}
	if c.UUID() != c.UUID() {
		t.Error("UUID changed between calls")
	}
}
