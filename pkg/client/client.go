package client

import (
	"github.com/google/uuid"

	"github.com/multiworld-protocol/multiworld-go/pkg/datapkg"
	"github.com/multiworld-protocol/multiworld-go/pkg/log"
	"github.com/multiworld-protocol/multiworld-go/pkg/protocol"
	"github.com/multiworld-protocol/multiworld-go/pkg/session"
	"github.com/multiworld-protocol/multiworld-go/pkg/subscription"
	"github.com/multiworld-protocol/multiworld-go/pkg/transport"
)

// Client is the host-facing facade. It holds no session state of its
// own; every query reads through to the owned stores.
type Client struct {
	cfg    Config
	logger log.Logger

	store *session.Store
	names *datapkg.Store
	subs  *subscription.Manager
	tr    *transport.Transport

	// machine is replaced on every Connect; nil before the first one.
	machine *protocol.Machine
}

// handlerProxy forwards transport events to whichever machine the
// current connection uses.
type handlerProxy struct {
	c *Client
}

func (h handlerProxy) OnFrame(data []byte) {
	if m := h.c.machine; m != nil {
		m.OnFrame(data)
	}
}

func (h handlerProxy) OnStateChange(oldState, newState transport.State) {
	if m := h.c.machine; m != nil {
		m.OnStateChange(oldState, newState)
	}
}

func (h handlerProxy) OnError(err error) {
	if m := h.c.machine; m != nil {
		m.OnError(err)
	}
}

// New creates a client. A nil logger disables logging. When the
// configuration carries no UUID, a fresh one is generated; hosts that
// want a stable identity persist it themselves.
func New(cfg Config, logger log.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UUID == "" {
		cfg.UUID = uuid.NewString()
	}

	c := &Client{
		cfg:    cfg,
		logger: log.OrNoop(logger),
		store:  session.NewStore(),
		names:  datapkg.NewStore(cfg.DataPackageDir),
		subs:   subscription.NewManager(),
	}
	c.tr = transport.New(handlerProxy{c}, c.logger)
	return c, nil
}

// Initialize allocates I/O resources. Must be called once before
// Connect.
func (c *Client) Initialize() error {
	return c.tr.Initialize()
}

// Connect starts a connection attempt. Empty host, zero port, empty
// slotName and empty password fall back to the configured values.
// The attempt is asynchronous; progress is reported through the state
// subscription during Tick calls.
func (c *Client) Connect(host string, port int, slotName, password string) error {
	if host == "" {
		host = c.cfg.Host
	}
	if port == 0 {
		port = c.cfg.Port
	}
	if slotName == "" {
		slotName = c.cfg.SlotName
	}
	if password == "" {
		password = c.cfg.Password
	}

	c.machine = protocol.NewMachine(protocol.Options{
		Game:          c.cfg.Game,
		SlotName:      slotName,
		Password:      password,
		UUID:          c.cfg.UUID,
		Tags:          c.cfg.Tags,
		ItemsHandling: c.cfg.ItemsHandling,
	}, c.tr, c.store, c.names, c.subs, c.logger)

	return c.tr.Connect(transport.Config{
		Host:         host,
		Port:         port,
		UseTLS:       c.cfg.UseTLS,
		ConnectionID: c.cfg.UUID,
	})
}

// Disconnect tears the connection down. The session store keeps its
// contents so the host can still inspect the finished session.
func (c *Client) Disconnect() error {
	return c.tr.Disconnect()
}

// Shutdown disconnects and clears all session state. The client may be
// connected again afterwards.
func (c *Client) Shutdown() {
	_ = c.tr.Disconnect()
	c.machine = nil
	c.store.Reset()
}

// Tick drives I/O and dispatches pending events on the calling
// goroutine. It never blocks.
func (c *Client) Tick() {
	c.tr.Service()
}

// SessionState returns the current session state.
func (c *Client) SessionState() session.State {
	if c.machine == nil {
		return session.StateDisconnected
	}
	return c.machine.State()
}

// Connected reports whether the session handshake has completed.
func (c *Client) Connected() bool {
	return c.machine != nil && c.machine.Connected()
}

// ConnectionState returns the transport connection state.
func (c *Client) ConnectionState() transport.State {
	return c.tr.State()
}

// UUID returns the client's instance identifier.
func (c *Client) UUID() string {
	return c.cfg.UUID
}

// Slot returns the assigned participant slot, 0 before authentication.
func (c *Client) Slot() int {
	return c.store.Slot()
}

// RoomInfo returns the room snapshot and whether one was received.
func (c *Client) RoomInfo() (session.RoomInfo, bool) {
	return c.store.RoomInfo()
}

// Items returns a copy of the received-item log in arrival order.
func (c *Client) Items() []session.Item {
	return c.store.Items()
}

// CheckedLocations returns a sorted copy of the checked-location set.
func (c *Client) CheckedLocations() []int64 {
	return c.store.CheckedLocations()
}

// Stats returns transport activity counters.
func (c *Client) Stats() transport.Stats {
	return c.tr.Stats()
}

// ItemName resolves an item id against the loaded data package.
func (c *Client) ItemName(id int64) (string, bool) {
	return c.names.ItemName(c.cfg.Game, id)
}

// LocationName resolves a location id against the loaded data package.
func (c *Client) LocationName(id int64) (string, bool) {
	return c.names.LocationName(c.cfg.Game, id)
}

// ReportLocation reports one completed location check.
func (c *Client) ReportLocation(id int64) error {
	if c.machine == nil {
		return protocol.ErrNotConnected
	}
	return c.machine.ReportLocation(id)
}

// ReportLocations reports a batch of completed location checks in one
// packet.
func (c *Client) ReportLocations(ids []int64) error {
	if c.machine == nil {
		return protocol.ErrNotConnected
	}
	return c.machine.ReportLocations(ids)
}

// UpdateStatus reports the client's play status.
func (c *Client) UpdateStatus(status int) error {
	if c.machine == nil {
		return protocol.ErrNotConnected
	}
	return c.machine.UpdateStatus(status)
}

// SendChat sends a chat message to the room.
func (c *Client) SendChat(text string) error {
	if c.machine == nil {
		return protocol.ErrNotConnected
	}
	return c.machine.Say(text)
}

// RequestHint asks the server to publish a hint for a location.
func (c *Client) RequestHint(location int64) error {
	if c.machine == nil {
		return protocol.ErrNotConnected
	}
	return c.machine.RequestHint(location)
}

// OnItemReceived subscribes to received items, one event per item.
func (c *Client) OnItemReceived(handler subscription.ItemHandler) uint32 {
	return c.subs.SubscribeItem(handler)
}

// OnLocationsConfirmed subscribes to newly confirmed checked locations.
func (c *Client) OnLocationsConfirmed(handler subscription.LocationsHandler) uint32 {
	return c.subs.SubscribeLocations(handler)
}

// OnStateChanged subscribes to session state transitions.
func (c *Client) OnStateChanged(handler subscription.StateHandler) uint32 {
	return c.subs.SubscribeState(handler)
}

// OnPrint subscribes to server text messages.
func (c *Client) OnPrint(handler subscription.PrintHandler) uint32 {
	return c.subs.SubscribePrint(handler)
}

// Unsubscribe removes a subscription by identifier.
func (c *Client) Unsubscribe(id uint32) {
	c.subs.Unsubscribe(id)
}
