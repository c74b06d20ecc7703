package log

import (
	"io"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeEvent_RoundTrip(t *testing.T) {
	event := NewPacketEvent("conn-1", DirectionIn, "ReceivedItems", 2)
	event.RemoteAddr = "multiworld.example.com:38281"
	event.SlotName = "Player1"

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent() error: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error: %v", err)
	}

	if decoded.ConnectionID != "conn-1" {
		t.Errorf("ConnectionID = %q, want conn-1", decoded.ConnectionID)
	}
	if decoded.Direction != DirectionIn {
		t.Errorf("Direction = %v, want IN", decoded.Direction)
	}
	if decoded.Category != CategoryPacket {
		t.Errorf("Category = %v, want PACKET", decoded.Category)
	}
	if decoded.Packet == nil || decoded.Packet.Cmd != "ReceivedItems" || decoded.Packet.Skipped != 2 {
		t.Errorf("Packet = %+v, want cmd=ReceivedItems skipped=2", decoded.Packet)
	}
	if decoded.SlotName != "Player1" {
		t.Errorf("SlotName = %q, want Player1", decoded.SlotName)
	}
}

func TestFileLogger_WriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.aplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error: %v", err)
	}

	logger.Log(NewFrameEvent("conn-1", DirectionOut, 128))
	logger.Log(NewStateChangeEvent("conn-1", EntitySession, "AWAITING_ROOM_INFO", "AWAITING_CAPABILITIES", ""))
	logger.Log(NewErrorEvent("conn-1", LayerWire, io.ErrUnexpectedEOF, "decode frame"))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// Logging after close is a silent no-op.
	logger.Log(NewFrameEvent("conn-1", DirectionOut, 1))
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	defer reader.Close()

	var events []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		events = append(events, event)
	}

	if len(events) != 3 {
		t.Fatalf("read %d events, want 3", len(events))
	}
	if events[0].Frame == nil || events[0].Frame.Size != 128 {
		t.Errorf("event 0 = %+v, want frame size 128", events[0])
	}
	if events[1].StateChange == nil || events[1].StateChange.NewState != "AWAITING_CAPABILITIES" {
		t.Errorf("event 1 = %+v, want state change", events[1])
	}
	if events[2].Error == nil || events[2].Error.Context != "decode frame" {
		t.Errorf("event 2 = %+v, want error event", events[2])
	}
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.aplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Log(NewFrameEvent("conn-1", DirectionIn, 10))
	logger.Log(NewFrameEvent("conn-2", DirectionOut, 20))
	logger.Log(NewFrameEvent("conn-1", DirectionOut, 30))
	logger.Close()

	dir := DirectionOut
	reader, err := NewFilteredReader(path, Filter{ConnectionID: "conn-1", Direction: &dir})
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if event.Frame.Size != 30 {
		t.Errorf("filtered event size = %d, want 30", event.Frame.Size)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected EOF after last match, got %v", err)
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b capture
	m := NewMultiLogger(&a, &b)

	m.Log(NewFrameEvent("conn-1", DirectionIn, 1))

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("multi logger fan-out: a=%d b=%d, want 1/1", len(a.events), len(b.events))
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	var c capture
	if OrNoop(&c) != &c {
		t.Error("OrNoop should pass through non-nil loggers")
	}
}

// capture is a test logger that records events.
type capture struct {
	events []Event
}

func (c *capture) Log(event Event) {
	c.events = append(c.events, event)
}
