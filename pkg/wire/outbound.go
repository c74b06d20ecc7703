package wire

import "github.com/multiworld-protocol/multiworld-go/pkg/version"

// ConnectPacket authenticates this client against a slot.
type ConnectPacket struct {
	Cmd           string          `json:"cmd"`
	Password      string          `json:"password"`
	Game          string          `json:"game"`
	Name          string          `json:"name"`
	UUID          string          `json:"uuid"`
	Version       version.Network `json:"version"`
	ItemsHandling int             `json:"items_handling"`
	Tags          []string        `json:"tags"`
}

// NewConnectPacket builds a Connect packet. Tags must not be nil on the
// wire; an empty list is sent instead.
func NewConnectPacket(game, slotName, password, uuid string, itemsHandling int, tags []string) *ConnectPacket {
	if tags == nil {
		tags = []string{}
	}
	return &ConnectPacket{
		Cmd:           CmdConnect,
		Password:      password,
		Game:          game,
		Name:          slotName,
		UUID:          uuid,
		Version:       version.CurrentNetwork(),
		ItemsHandling: itemsHandling,
		Tags:          tags,
	}
}

// Command returns the wire command tag.
func (p *ConnectPacket) Command() string { return CmdConnect }

// GetDataPackagePacket requests name tables for the listed games.
type GetDataPackagePacket struct {
	Cmd   string   `json:"cmd"`
	Games []string `json:"games"`
}

// NewGetDataPackagePacket builds a GetDataPackage packet.
func NewGetDataPackagePacket(games ...string) *GetDataPackagePacket {
	return &GetDataPackagePacket{Cmd: CmdGetDataPackage, Games: games}
}

// Command returns the wire command tag.
func (p *GetDataPackagePacket) Command() string { return CmdGetDataPackage }

// LocationChecksPacket reports completed locations to the server.
type LocationChecksPacket struct {
	Cmd       string  `json:"cmd"`
	Locations []int64 `json:"locations"`
}

// NewLocationChecksPacket builds a LocationChecks packet.
func NewLocationChecksPacket(locations ...int64) *LocationChecksPacket {
	return &LocationChecksPacket{Cmd: CmdLocationChecks, Locations: locations}
}

// Command returns the wire command tag.
func (p *LocationChecksPacket) Command() string { return CmdLocationChecks }

// LocationScoutsPacket asks the server what the listed locations hold.
// With CreateAsHint set, the server also publishes hints for them.
type LocationScoutsPacket struct {
	Cmd          string  `json:"cmd"`
	Locations    []int64 `json:"locations"`
	CreateAsHint int     `json:"create_as_hint"`
}

// NewHintRequestPacket builds a LocationScouts packet that creates a
// hint for the given location.
func NewHintRequestPacket(location int64) *LocationScoutsPacket {
	return &LocationScoutsPacket{
		Cmd:          CmdLocationScouts,
		Locations:    []int64{location},
		CreateAsHint: 1,
	}
}

// Command returns the wire command tag.
func (p *LocationScoutsPacket) Command() string { return CmdLocationScouts }

// StatusUpdatePacket reports the client's play status.
type StatusUpdatePacket struct {
	Cmd    string `json:"cmd"`
	Status int    `json:"status"`
}

// NewStatusUpdatePacket builds a StatusUpdate packet.
func NewStatusUpdatePacket(status int) *StatusUpdatePacket {
	return &StatusUpdatePacket{Cmd: CmdStatusUpdate, Status: status}
}

// Command returns the wire command tag.
func (p *StatusUpdatePacket) Command() string { return CmdStatusUpdate }

// SayPacket sends a chat message.
type SayPacket struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text"`
}

// NewSayPacket builds a Say packet.
func NewSayPacket(text string) *SayPacket {
	return &SayPacket{Cmd: CmdSay, Text: text}
}

// Command returns the wire command tag.
func (p *SayPacket) Command() string { return CmdSay }
