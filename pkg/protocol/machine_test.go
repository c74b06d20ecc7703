package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/multiworld-protocol/multiworld-go/pkg/datapkg"
	"github.com/multiworld-protocol/multiworld-go/pkg/session"
	"github.com/multiworld-protocol/multiworld-go/pkg/subscription"
	"github.com/multiworld-protocol/multiworld-go/pkg/transport"
	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

// fakeSender captures outbound frames and readiness marks.
type fakeSender struct {
	frames    [][]byte
	sendErr   error
	authMarks int
	readyMark int
}

func (f *fakeSender) Send(data []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeSender) MarkAuthenticating() error { f.authMarks++; return nil }
func (f *fakeSender) MarkReady() error          { f.readyMark++; return nil }

// sentCommands decodes the command tag of every captured frame.
func (f *fakeSender) sentCommands(t *testing.T) []string {
	t.Helper()
	var cmds []string
	for _, frame := range f.frames {
		var pkts []struct {
			Cmd string `json:"cmd"`
		}
		if err := json.Unmarshal(frame, &pkts); err != nil {
			t.Fatalf("outbound frame is not a packet array: %v", err)
		}
		for _, p := range pkts {
			cmds = append(cmds, p.Cmd)
		}
	}
	return cmds
}

type harness struct {
	machine *Machine
	sender  *fakeSender
	store   *session.Store
	names   *datapkg.Store
	subs    *subscription.Manager
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	if opts.Game == "" {
		opts.Game = "Selaco"
	}
	if opts.SlotName == "" {
		opts.SlotName = "Dawn"
	}
	if opts.UUID == "" {
		opts.UUID = "test-uuid"
	}
	h := &harness{
		sender: &fakeSender{},
		store:  session.NewStore(),
		names:  datapkg.NewStore(""),
		subs:   subscription.NewManager(),
	}
	h.machine = NewMachine(opts, h.sender, h.store, h.names, h.subs, nil)
	return h
}

// connectTransport walks the transport through its connect sequence.
func (h *harness) connectTransport() {
	h.machine.OnStateChange(transport.StateDisconnected, transport.StateConnecting)
	h.machine.OnStateChange(transport.StateConnecting, transport.StateConnected)
}

// completeHandshake drives the machine to the connected session state.
func (h *harness) completeHandshake(t *testing.T) {
	t.Helper()
	h.connectTransport()
	h.machine.OnFrame([]byte(`[{"cmd":"RoomInfo","seed_name":"seed1","password":false,"hint_cost":10}]`))
	h.machine.OnFrame([]byte(`[{"cmd":"DataPackage","data":{"games":{"Selaco":{"item_name_to_id":{"Shotgun":7100},"location_name_to_id":{"Armory":7200},"checksum":"c1"}}}}]`))
	h.machine.OnFrame([]byte(`[{"cmd":"Connected","team":0,"slot":3,"checked_locations":[]}]`))
	if !h.machine.Connected() {
		t.Fatalf("handshake did not reach CONNECTED, state is %s", h.machine.State())
	}
}

func TestHandshakeSequence(t *testing.T) {
	h := newHarness(t, Options{})

	var changes []subscription.StateChange
	h.subs.SubscribeState(func(c subscription.StateChange) { changes = append(changes, c) })

	h.completeHandshake(t)

	want := []struct{ old, new session.State }{
		{session.StateDisconnected, session.StateConnecting},
		{session.StateConnecting, session.StateAwaitingRoomInfo},
		{session.StateAwaitingRoomInfo, session.StateAwaitingCapabilities},
		{session.StateAwaitingCapabilities, session.StateAuthenticating},
		{session.StateAuthenticating, session.StateConnected},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d state changes, want %d: %+v", len(changes), len(want), changes)
	}
	for i, w := range want {
		if changes[i].Old != w.old || changes[i].New != w.new {
			t.Errorf("change %d = %s -> %s, want %s -> %s",
				i, changes[i].Old, changes[i].New, w.old, w.new)
		}
	}

	cmds := h.sender.sentCommands(t)
	if len(cmds) != 2 || cmds[0] != wire.CmdGetDataPackage || cmds[1] != wire.CmdConnect {
		t.Errorf("outbound commands = %v, want [GetDataPackage Connect]", cmds)
	}
	if h.sender.authMarks != 1 || h.sender.readyMark != 1 {
		t.Errorf("marks = %d auth, %d ready, want 1 each", h.sender.authMarks, h.sender.readyMark)
	}
	if got := h.store.Slot(); got != 3 {
		t.Errorf("slot = %d, want 3", got)
	}
}

func TestConnectPacketContents(t *testing.T) {
	h := newHarness(t, Options{
		Game:     "Selaco",
		SlotName: "Dawn",
		Password: "hunter2",
		UUID:     "uuid-42",
	})
	h.completeHandshake(t)

	var pkts []wire.ConnectPacket
	if err := json.Unmarshal(h.sender.frames[1], &pkts); err != nil {
		t.Fatalf("decode Connect frame: %v", err)
	}
	if len(pkts) != 1 {
		t.Fatalf("Connect frame holds %d packets, want 1", len(pkts))
	}
	p := pkts[0]
	if p.Name != "Dawn" || p.Password != "hunter2" || p.UUID != "uuid-42" || p.Game != "Selaco" {
		t.Errorf("Connect identity fields = %+v", p)
	}
	if p.ItemsHandling != wire.ItemsHandlingAll {
		t.Errorf("items_handling = %d, want %d", p.ItemsHandling, wire.ItemsHandlingAll)
	}
	if p.Tags == nil {
		t.Error("tags must be an empty list, not absent")
	}
}

func TestRefusedWithReason(t *testing.T) {
	h := newHarness(t, Options{})

	var last subscription.StateChange
	h.subs.SubscribeState(func(c subscription.StateChange) { last = c })

	h.connectTransport()
	h.machine.OnFrame([]byte(`[{"cmd":"RoomInfo","seed_name":"s"}]`))
	h.machine.OnFrame([]byte(`[{"cmd":"ConnectionRefused","errors":["bad password"]}]`))

	if h.machine.State() != session.StateError {
		t.Fatalf("state = %s, want ERROR", h.machine.State())
	}
	if last.Reason != "bad password" {
		t.Errorf("reason = %q, want \"bad password\"", last.Reason)
	}
}

func TestRefusedWithoutReason(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"missing errors", `[{"cmd":"ConnectionRefused"}]`},
		{"empty errors", `[{"cmd":"ConnectionRefused","errors":[]}]`},
		{"blank reason", `[{"cmd":"ConnectionRefused","errors":[""]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			var last subscription.StateChange
			h.subs.SubscribeState(func(c subscription.StateChange) { last = c })

			h.connectTransport()
			h.machine.OnFrame([]byte(tt.frame))

			if last.Reason != DefaultRefusalReason {
				t.Errorf("reason = %q, want %q", last.Reason, DefaultRefusalReason)
			}
		})
	}
}

func TestReceivedItemsOrderAndLog(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)

	var got []session.Item
	var indexes []int
	h.subs.SubscribeItem(func(item session.Item, index int) {
		got = append(got, item)
		indexes = append(indexes, index)
	})

	h.machine.OnFrame([]byte(`[{"cmd":"ReceivedItems","index":0,"items":[` +
		`{"item":7100,"location":7200,"player":2,"flags":1},` +
		`{"item":9999,"location":7201,"player":3,"flags":4}]}]`))

	if len(got) != 2 {
		t.Fatalf("got %d item events, want 2", len(got))
	}
	if got[0].ID != 7100 || got[1].ID != 9999 {
		t.Errorf("item order = %d, %d, want 7100, 9999", got[0].ID, got[1].ID)
	}
	if indexes[0] != 0 || indexes[1] != 1 {
		t.Errorf("log indexes = %v, want [0 1]", indexes)
	}
	if got[0].Name != "Shotgun" {
		t.Errorf("name = %q, want Shotgun from the data package", got[0].Name)
	}
	if got[1].Name != "" {
		t.Errorf("unresolvable item got name %q", got[1].Name)
	}
	if !got[1].Classified || got[0].Classified {
		t.Error("trap flag mapping wrong")
	}
	if h.store.ItemCount() != 2 {
		t.Errorf("item log holds %d entries, want 2", h.store.ItemCount())
	}
}

func TestPrintEvents(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)

	var msgs []subscription.Message
	h.subs.SubscribePrint(func(m subscription.Message) { msgs = append(msgs, m) })

	h.machine.OnFrame([]byte(`[{"cmd":"PrintJSON","text":"Dawn found a Shotgun","priority":2}]`))
	h.machine.OnFrame([]byte(`[{"cmd":"PrintJSON","text":"no priority"}]`))

	if len(msgs) != 2 {
		t.Fatalf("got %d print events, want 2", len(msgs))
	}
	if msgs[0].Text != "Dawn found a Shotgun" || msgs[0].Priority != 2 {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Priority != 0 {
		t.Errorf("absent priority = %d, want 0", msgs[1].Priority)
	}
}

func TestReportLocationBeforeConnected(t *testing.T) {
	h := newHarness(t, Options{})
	h.connectTransport()

	if err := h.machine.ReportLocation(7200); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ReportLocation while handshaking = %v, want ErrNotConnected", err)
	}
	if len(h.sender.frames) != 0 {
		t.Error("rejected intent produced an outbound frame")
	}
	if h.store.CheckedCount() != 0 {
		t.Error("rejected intent mutated the checked set")
	}
}

func TestReportLocationIdempotentSetNonIdempotentWire(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)
	before := len(h.sender.frames)

	var confirmed [][]int64
	h.subs.SubscribeLocations(func(ids []int64) { confirmed = append(confirmed, ids) })

	if err := h.machine.ReportLocation(7200); err != nil {
		t.Fatalf("first report failed: %v", err)
	}
	if err := h.machine.ReportLocation(7200); err != nil {
		t.Fatalf("second report failed: %v", err)
	}

	if got := len(h.sender.frames) - before; got != 2 {
		t.Errorf("outbound packets = %d, want 2 (server is authoritative)", got)
	}
	if h.store.CheckedCount() != 1 {
		t.Errorf("checked set size = %d, want 1", h.store.CheckedCount())
	}
	if len(confirmed) != 1 {
		t.Errorf("confirmation events = %d, want 1", len(confirmed))
	}
}

func TestReportLocationsBatch(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)
	before := len(h.sender.frames)

	if err := h.machine.ReportLocations([]int64{1, 2, 3}); err != nil {
		t.Fatalf("batch report failed: %v", err)
	}

	if got := len(h.sender.frames) - before; got != 1 {
		t.Fatalf("batch produced %d frames, want 1", got)
	}
	var pkts []wire.LocationChecksPacket
	if err := json.Unmarshal(h.sender.frames[before], &pkts); err != nil {
		t.Fatalf("decode LocationChecks: %v", err)
	}
	if len(pkts) != 1 || len(pkts[0].Locations) != 3 {
		t.Errorf("batch packet = %+v", pkts)
	}
}

func TestIntentsRequireConnected(t *testing.T) {
	h := newHarness(t, Options{})
	h.connectTransport()

	intents := map[string]func() error{
		"UpdateStatus": func() error { return h.machine.UpdateStatus(wire.StatusGoal) },
		"Say":          func() error { return h.machine.Say("hello") },
		"RequestHint":  func() error { return h.machine.RequestHint(7200) },
	}
	for name, intent := range intents {
		if err := intent(); !errors.Is(err, ErrNotConnected) {
			t.Errorf("%s before connected = %v, want ErrNotConnected", name, err)
		}
	}
}

func TestIntentPackets(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)
	before := len(h.sender.frames)

	if err := h.machine.UpdateStatus(wire.StatusGoal); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := h.machine.Say("gg"); err != nil {
		t.Fatalf("Say failed: %v", err)
	}
	if err := h.machine.RequestHint(7200); err != nil {
		t.Fatalf("RequestHint failed: %v", err)
	}

	cmds := h.sender.sentCommands(t)[before:]
	want := []string{wire.CmdStatusUpdate, wire.CmdSay, wire.CmdLocationScouts}
	for i, w := range want {
		if cmds[i] != w {
			t.Errorf("intent %d sent %q, want %q", i, cmds[i], w)
		}
	}

	var scouts []wire.LocationScoutsPacket
	if err := json.Unmarshal(h.sender.frames[before+2], &scouts); err != nil {
		t.Fatalf("decode LocationScouts: %v", err)
	}
	if scouts[0].CreateAsHint != 1 || scouts[0].Locations[0] != 7200 {
		t.Errorf("hint packet = %+v", scouts[0])
	}
}

func TestMalformedFrameDropped(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)

	var msgs []subscription.Message
	h.subs.SubscribePrint(func(m subscription.Message) { msgs = append(msgs, m) })

	h.machine.OnFrame([]byte(`{"cmd":"PrintJSON"}`))
	h.machine.OnFrame([]byte(`[{"cmd":"PrintJSON","text":"one"}, 42]`))
	h.machine.OnFrame([]byte(`[{"cmd":"PrintJSON","text":"survivor"}]`))

	if len(msgs) != 1 || msgs[0].Text != "survivor" {
		t.Errorf("events after malformed frames = %+v, want only the survivor", msgs)
	}
	if h.machine.State() != session.StateConnected {
		t.Errorf("malformed frame changed state to %s", h.machine.State())
	}
}

func TestUnknownCommandIgnored(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)

	h.machine.OnFrame([]byte(`[{"cmd":"Bounced","games":["Selaco"]}]`))

	if h.machine.State() != session.StateConnected {
		t.Errorf("unknown command changed state to %s", h.machine.State())
	}
}

func TestDuplicateRoomInfoOverwritesInPlace(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)
	before := len(h.sender.frames)

	h.machine.OnFrame([]byte(`[{"cmd":"RoomInfo","seed_name":"seed2","hint_cost":25}]`))

	info, ok := h.store.RoomInfo()
	if !ok || info.SeedName != "seed2" || info.HintCost != 25 {
		t.Errorf("room info after duplicate = %+v", info)
	}
	if h.machine.State() != session.StateConnected {
		t.Errorf("duplicate RoomInfo restarted the handshake, state is %s", h.machine.State())
	}
	if len(h.sender.frames) != before {
		t.Error("duplicate RoomInfo produced outbound traffic")
	}
}

func TestRoomUpdateMerges(t *testing.T) {
	h := newHarness(t, Options{})
	h.completeHandshake(t)

	var confirmed [][]int64
	h.subs.SubscribeLocations(func(ids []int64) { confirmed = append(confirmed, ids) })

	if err := h.machine.ReportLocation(7200); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// 7200 is already known; only 7201 is news.
	h.machine.OnFrame([]byte(`[{"cmd":"RoomUpdate","checked_locations":[7200,7201],"hint_cost":50}]`))

	info, _ := h.store.RoomInfo()
	if info.HintCost != 50 {
		t.Errorf("hint cost = %d, want 50", info.HintCost)
	}
	if h.store.CheckedCount() != 2 {
		t.Errorf("checked set size = %d, want 2", h.store.CheckedCount())
	}
	if len(confirmed) != 2 || len(confirmed[1]) != 1 || confirmed[1][0] != 7201 {
		t.Errorf("confirmation events = %v, want second event [7201]", confirmed)
	}
}

func TestConnectedMergesServerChecked(t *testing.T) {
	h := newHarness(t, Options{})

	var confirmed [][]int64
	h.subs.SubscribeLocations(func(ids []int64) { confirmed = append(confirmed, ids) })

	h.connectTransport()
	h.machine.OnFrame([]byte(`[{"cmd":"RoomInfo","seed_name":"s"}]`))
	h.machine.OnFrame([]byte(`[{"cmd":"DataPackage","data":{"games":{}}}]`))
	h.machine.OnFrame([]byte(`[{"cmd":"Connected","team":1,"slot":2,"checked_locations":[5,6]}]`))

	if !h.machine.Connected() {
		t.Fatalf("state = %s, want CONNECTED", h.machine.State())
	}
	if h.store.CheckedCount() != 2 {
		t.Errorf("checked set size = %d, want 2", h.store.CheckedCount())
	}
	if len(confirmed) != 1 || len(confirmed[0]) != 2 {
		t.Errorf("confirmation events = %v", confirmed)
	}
	if h.store.Team() != 1 || h.store.Slot() != 2 {
		t.Errorf("identity = team %d slot %d, want team 1 slot 2", h.store.Team(), h.store.Slot())
	}
}

func TestCachedDataPackageSkipsRequest(t *testing.T) {
	dir := t.TempDir()

	warm := datapkg.NewStore(dir)
	warm.Merge(wire.DataPackageData{
		Games: map[string]wire.GameData{
			"Selaco": {ItemNameToID: map[string]int64{"Shotgun": 7100}, Checksum: "c1"},
		},
	})

	h := newHarness(t, Options{})
	h.names = datapkg.NewStore(dir)
	h.machine = NewMachine(Options{Game: "Selaco", SlotName: "Dawn", UUID: "u"},
		h.sender, h.store, h.names, h.subs, nil)

	h.connectTransport()
	h.machine.OnFrame([]byte(`[{"cmd":"RoomInfo","seed_name":"s","datapackage_checksums":{"Selaco":"c1"}}]`))

	cmds := h.sender.sentCommands(t)
	if len(cmds) != 1 || cmds[0] != wire.CmdConnect {
		t.Fatalf("outbound commands = %v, want [Connect] with a warm cache", cmds)
	}
	if h.machine.State() != session.StateAuthenticating {
		t.Errorf("state = %s, want AUTHENTICATING", h.machine.State())
	}
	if name, ok := h.names.ItemName("Selaco", 7100); !ok || name != "Shotgun" {
		t.Errorf("cached name lookup = %q, %v", name, ok)
	}
}

func TestSendFailureLeavesStateRecoverable(t *testing.T) {
	h := newHarness(t, Options{})
	h.sender.sendErr = errors.New("socket gone")

	h.connectTransport()
	h.machine.OnFrame([]byte(`[{"cmd":"RoomInfo","seed_name":"s"}]`))

	// The request could not leave; the session holds its position
	// until the transport reports the failure.
	if h.machine.State() != session.StateAwaitingCapabilities {
		t.Errorf("state after send failure = %s", h.machine.State())
	}

	h.machine.OnStateChange(transport.StateConnected, transport.StateError)
	if h.machine.State() != session.StateError {
		t.Errorf("state after transport error = %s", h.machine.State())
	}
}
