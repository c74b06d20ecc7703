package wire

// Packet is a single protocol packet, inbound or outbound.
type Packet interface {
	// Command returns the wire command tag, e.g. "RoomInfo".
	Command() string
}

// Inbound command tags.
const (
	CmdRoomInfo          = "RoomInfo"
	CmdDataPackage       = "DataPackage"
	CmdConnected         = "Connected"
	CmdConnectionRefused = "ConnectionRefused"
	CmdReceivedItems     = "ReceivedItems"
	CmdLocationInfo      = "LocationInfo"
	CmdPrintJSON         = "PrintJSON"
	CmdRetrieved         = "Retrieved"
	CmdSetReply          = "SetReply"
	CmdRoomUpdate        = "RoomUpdate"
)

// Outbound command tags.
const (
	CmdConnect        = "Connect"
	CmdGetDataPackage = "GetDataPackage"
	CmdLocationChecks = "LocationChecks"
	CmdLocationScouts = "LocationScouts"
	CmdStatusUpdate   = "StatusUpdate"
	CmdSay            = "Say"
)

// Items-handling flags for the Connect packet. The server only sends
// item categories the client has requested.
const (
	// ItemsHandlingRemote requests items granted by other worlds.
	ItemsHandlingRemote = 1 << 0

	// ItemsHandlingOwnWorld requests items found in the client's own world.
	ItemsHandlingOwnWorld = 1 << 1

	// ItemsHandlingStartingInventory requests the starting inventory.
	ItemsHandlingStartingInventory = 1 << 2

	// ItemsHandlingAll requests every item category.
	ItemsHandlingAll = ItemsHandlingRemote | ItemsHandlingOwnWorld | ItemsHandlingStartingInventory
)

// Item classification flags carried in NetworkItem.Flags.
const (
	// ItemFlagProgression marks an item required to advance.
	ItemFlagProgression = 1 << 0

	// ItemFlagUseful marks an item that is helpful but not required.
	ItemFlagUseful = 1 << 1

	// ItemFlagTrap marks an item that is actively harmful.
	ItemFlagTrap = 1 << 2
)

// Client status codes for the StatusUpdate packet.
const (
	StatusUnknown = 0
	StatusReady   = 5
	StatusPlaying = 10
	StatusGoal    = 30
)
