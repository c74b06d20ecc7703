// Package testserver hosts a scriptable multiworld server for tests.
// It speaks just enough of the wire protocol to drive a client through
// the full handshake and steady-state traffic.
package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/multiworld-protocol/multiworld-go/pkg/version"
	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

// Options script the server's behavior.
type Options struct {
	// SeedName is reported in RoomInfo. Defaults to "test-seed".
	SeedName string

	// HintCost is reported in RoomInfo.
	HintCost int

	// Password, when set, must match the Connect packet's password.
	Password string

	// Games is the data package served on GetDataPackage.
	Games map[string]wire.GameData

	// DataPackageChecksums is advertised in RoomInfo.
	DataPackageChecksums map[string]string

	// RefuseWith, when non-nil, answers every Connect with
	// ConnectionRefused carrying these reasons.
	RefuseWith []string

	// Team and Slot are assigned on a successful Connect.
	Team int
	Slot int

	// CheckedLocations is the server-known checked set sent in
	// Connected.
	CheckedLocations []int64
}

// Server is one scripted server instance.
type Server struct {
	opts Options
	http *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	received []json.RawMessage
}

// New starts a server. Callers must Close it.
func New(opts Options) *Server {
	if opts.SeedName == "" {
		opts.SeedName = "test-seed"
	}
	if opts.Slot == 0 {
		opts.Slot = 1
	}
	s := &Server{opts: opts}
	s.http = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Close shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
	s.mu.Unlock()
	s.http.Close()
}

// Addr returns the host and port the server listens on.
func (s *Server) Addr() (string, int) {
	hostPort := strings.TrimPrefix(s.http.URL, "http://")
	host, portStr, _ := strings.Cut(hostPort, ":")
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// Received returns every packet object the server has read, in arrival
// order.
func (s *Server) Received() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, len(s.received))
	copy(out, s.received)
	return out
}

// ReceivedCommands returns the command tags of every received packet.
func (s *Server) ReceivedCommands() []string {
	var cmds []string
	for _, raw := range s.Received() {
		var probe struct {
			Cmd string `json:"cmd"`
		}
		if json.Unmarshal(raw, &probe) == nil {
			cmds = append(cmds, probe.Cmd)
		}
	}
	return cmds
}

// PushItems sends a ReceivedItems packet to every connected client.
func (s *Server) PushItems(index int, items ...wire.NetworkItem) {
	s.broadcast(&wire.ReceivedItemsPacket{Cmd: wire.CmdReceivedItems, Index: index, Items: items})
}

// PushPrint sends a PrintJSON packet to every connected client.
func (s *Server) PushPrint(text string, priority int) {
	s.broadcast(&wire.PrintJSONPacket{Cmd: wire.CmdPrintJSON, Text: text, Priority: priority})
}

// PushRoomUpdate sends a RoomUpdate packet to every connected client.
func (s *Server) PushRoomUpdate(pkt *wire.RoomUpdatePacket) {
	pkt.Cmd = wire.CmdRoomUpdate
	s.broadcast(pkt)
}

// PushRaw sends a raw frame to every connected client.
func (s *Server) PushRaw(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.WriteMessage(websocket.TextMessage, frame)
	}
}

func (s *Server) broadcast(p wire.Packet) {
	frame, err := wire.EncodeFrame(p)
	if err != nil {
		return
	}
	s.PushRaw(frame)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	s.writePacket(conn, &wire.RoomInfoPacket{
		Cmd:                  wire.CmdRoomInfo,
		SeedName:             s.opts.SeedName,
		PasswordRequired:     s.opts.Password != "",
		HintCost:             s.opts.HintCost,
		Version:              version.CurrentNetwork(),
		DataPackageChecksums: s.opts.DataPackageChecksums,
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleFrame(conn, data)
	}
}

func (s *Server) handleFrame(conn *websocket.Conn, data []byte) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return
	}

	for _, raw := range elements {
		s.mu.Lock()
		s.received = append(s.received, raw)
		s.mu.Unlock()

		var probe struct {
			Cmd string `json:"cmd"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}

		switch probe.Cmd {
		case wire.CmdGetDataPackage:
			s.writePacket(conn, &wire.DataPackagePacket{
				Cmd:  wire.CmdDataPackage,
				Data: wire.DataPackageData{Games: s.opts.Games},
			})
		case wire.CmdConnect:
			s.answerConnect(conn, raw)
		}
	}
}

func (s *Server) answerConnect(conn *websocket.Conn, raw json.RawMessage) {
	if s.opts.RefuseWith != nil {
		s.writePacket(conn, &wire.ConnectionRefusedPacket{
			Cmd:    wire.CmdConnectionRefused,
			Errors: s.opts.RefuseWith,
		})
		return
	}

	var connect wire.ConnectPacket
	if err := json.Unmarshal(raw, &connect); err != nil {
		return
	}
	if s.opts.Password != "" && connect.Password != s.opts.Password {
		s.writePacket(conn, &wire.ConnectionRefusedPacket{
			Cmd:    wire.CmdConnectionRefused,
			Errors: []string{"InvalidPassword"},
		})
		return
	}

	s.writePacket(conn, &wire.ConnectedPacket{
		Cmd:              wire.CmdConnected,
		Team:             s.opts.Team,
		Slot:             s.opts.Slot,
		CheckedLocations: s.opts.CheckedLocations,
	})
}

// writePacket serializes writes through the server mutex; gorilla
// connections do not allow concurrent writers.
func (s *Server) writePacket(conn *websocket.Conn, p wire.Packet) {
	frame, err := wire.EncodeFrame(p)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, frame)
}
