package wire

import (
	"encoding/json"

	"github.com/multiworld-protocol/multiworld-go/pkg/version"
)

// RoomInfoPacket is the server's opening packet describing the room.
type RoomInfoPacket struct {
	Cmd                 string          `json:"cmd"`
	SeedName            string          `json:"seed_name"`
	PasswordRequired    bool            `json:"password"`
	HintCost            int             `json:"hint_cost"`
	LocationCheckPoints int             `json:"location_check_points"`
	Permissions         map[string]int  `json:"permissions"`
	Version             version.Network `json:"version"`

	// DataPackageChecksums lets clients skip re-requesting name tables
	// they already hold for the listed games.
	DataPackageChecksums map[string]string `json:"datapackage_checksums"`
}

// Command returns the wire command tag.
func (p *RoomInfoPacket) Command() string { return CmdRoomInfo }

// GameData holds the name tables for a single game within a data package.
// The server maps names to ids; clients usually want the inverse.
type GameData struct {
	ItemNameToID     map[string]int64 `json:"item_name_to_id"`
	LocationNameToID map[string]int64 `json:"location_name_to_id"`
	Checksum         string           `json:"checksum"`
}

// DataPackageData is the payload of a DataPackage packet.
type DataPackageData struct {
	Games map[string]GameData `json:"games"`
}

// DataPackagePacket carries per-game item and location name tables.
type DataPackagePacket struct {
	Cmd  string          `json:"cmd"`
	Data DataPackageData `json:"data"`
}

// Command returns the wire command tag.
func (p *DataPackagePacket) Command() string { return CmdDataPackage }

// ConnectedPacket acknowledges a successful Connect request.
type ConnectedPacket struct {
	Cmd              string  `json:"cmd"`
	Team             int     `json:"team"`
	Slot             int     `json:"slot"`
	CheckedLocations []int64 `json:"checked_locations"`
	MissingLocations []int64 `json:"missing_locations"`
}

// Command returns the wire command tag.
func (p *ConnectedPacket) Command() string { return CmdConnected }

// ConnectionRefusedPacket rejects a Connect request. Errors holds
// human-readable reasons; the first one is surfaced to the host.
type ConnectionRefusedPacket struct {
	Cmd    string   `json:"cmd"`
	Errors []string `json:"errors"`
}

// Command returns the wire command tag.
func (p *ConnectionRefusedPacket) Command() string { return CmdConnectionRefused }

// NetworkItem is one item entry within ReceivedItems or LocationInfo.
type NetworkItem struct {
	Item     int64 `json:"item"`
	Location int64 `json:"location"`
	Player   int   `json:"player"`
	Flags    int   `json:"flags"`
}

// ReceivedItemsPacket delivers items granted to this client's slot.
// Item order within the packet is significant and must be preserved.
type ReceivedItemsPacket struct {
	Cmd   string        `json:"cmd"`
	Index int           `json:"index"`
	Items []NetworkItem `json:"items"`
}

// Command returns the wire command tag.
func (p *ReceivedItemsPacket) Command() string { return CmdReceivedItems }

// LocationInfoPacket answers a LocationScouts request.
type LocationInfoPacket struct {
	Cmd       string        `json:"cmd"`
	Locations []NetworkItem `json:"locations"`
}

// Command returns the wire command tag.
func (p *LocationInfoPacket) Command() string { return CmdLocationInfo }

// PrintJSONPacket carries server text output.
type PrintJSONPacket struct {
	Cmd      string `json:"cmd"`
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

// Command returns the wire command tag.
func (p *PrintJSONPacket) Command() string { return CmdPrintJSON }

// RetrievedPacket answers a data-storage Get request.
type RetrievedPacket struct {
	Cmd  string                     `json:"cmd"`
	Keys map[string]json.RawMessage `json:"keys"`
}

// Command returns the wire command tag.
func (p *RetrievedPacket) Command() string { return CmdRetrieved }

// SetReplyPacket reports the outcome of a data-storage Set request.
type SetReplyPacket struct {
	Cmd           string          `json:"cmd"`
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	OriginalValue json.RawMessage `json:"original_value"`
}

// Command returns the wire command tag.
func (p *SetReplyPacket) Command() string { return CmdSetReply }

// RoomUpdatePacket carries incremental room changes. Pointer fields
// distinguish "absent" from a zero value.
type RoomUpdatePacket struct {
	Cmd                 string  `json:"cmd"`
	CheckedLocations    []int64 `json:"checked_locations"`
	HintCost            *int    `json:"hint_cost"`
	LocationCheckPoints *int    `json:"location_check_points"`
}

// Command returns the wire command tag.
func (p *RoomUpdatePacket) Command() string { return CmdRoomUpdate }

// UnknownPacket preserves a packet whose command this client does not
// recognize. Raw holds the complete original object.
type UnknownPacket struct {
	Cmd string
	Raw json.RawMessage
}

// Command returns the wire command tag.
func (p *UnknownPacket) Command() string { return p.Cmd }
