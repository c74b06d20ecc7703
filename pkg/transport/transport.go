package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

// Transport errors.
var (
	ErrInitFailed        = errors.New("transport initialization failed")
	ErrNotInitialized    = errors.New("transport not initialized")
	ErrNotReady          = errors.New("transport not ready")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// errStaleAttempt marks a result from a connection attempt the host has
// since abandoned via Disconnect or a newer Connect.
var errStaleAttempt = errors.New("stale connection attempt")

// Defaults applied by Connect and Service when Config leaves the
// corresponding field zero.
const (
	DefaultPort             = 38281
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second

	defaultMaxEventsPerTick = 32
	defaultMaxWritesPerTick = 16
	defaultFrameBuffer      = 256
)

// Config holds the per-connection parameters.
type Config struct {
	// Host is the server hostname or address.
	Host string

	// Port is the server port (default: 38281).
	Port int

	// Path is the websocket path (default: "/").
	Path string

	// UseTLS selects wss over ws. The secure deployment of this
	// protocol always sets it.
	UseTLS bool

	// TLSConfig optionally overrides the default TLS configuration.
	// Leave nil outside tests; the default verifies certificates
	// against the system roots.
	TLSConfig *tls.Config

	// ConnectionID tags protocol log events; typically the client UUID.
	ConnectionID string

	// HandshakeTimeout bounds the websocket dial (default: 10s).
	// This bounds the dial goroutine, not the host tick.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write during Service (default: 5s).
	WriteTimeout time.Duration

	// MaxEventsPerTick bounds handler dispatches per Service call
	// (default: 32).
	MaxEventsPerTick int

	// MaxWritesPerTick bounds queue flushes per Service call
	// (default: 16).
	MaxWritesPerTick int
}

// URL returns the websocket URL for this configuration.
func (c Config) URL() string {
	scheme := "ws"
	if c.UseTLS {
		scheme = "wss"
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   path,
	}
	return u.String()
}

// withDefaults returns the config with zero fields replaced.
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxEventsPerTick == 0 {
		c.MaxEventsPerTick = defaultMaxEventsPerTick
	}
	if c.MaxWritesPerTick == 0 {
		c.MaxWritesPerTick = defaultMaxWritesPerTick
	}
	return c
}

// Handler handles transport events. All methods are invoked on the
// host thread, inside Service.
type Handler interface {
	// OnFrame is called for each complete inbound frame.
	OnFrame(data []byte)

	// OnStateChange is called exactly once per state transition.
	OnStateChange(oldState, newState State)

	// OnError is called when a transport-level error occurs.
	OnError(err error)
}

// Stats counts transport activity since construction.
type Stats struct {
	FramesSent      uint32
	FramesReceived  uint32
	ConnectAttempts uint32
}

// eventKind discriminates internal events.
type eventKind uint8

const (
	evState eventKind = iota
	evError
)

// event is a state or error notification queued for dispatch on the
// host thread. Frames travel through their own bounded channel; these
// go through an unbounded list so a transition triggered inside a
// dispatch can never block on a full channel.
type event struct {
	kind     eventKind
	oldState State
	newState State
	err      error
}

// Transport owns the websocket connection and the outbound queue.
// It has no knowledge of protocol semantics: frames in, frames out.
type Transport struct {
	handler Handler
	logger  log.Logger

	config Config

	state   atomic.Int32
	stateMu sync.Mutex

	// gen numbers connection attempts. Guarded by stateMu. A dial or
	// read goroutine carries the generation it was started under and
	// discards its results once the counter has moved on.
	gen uint64

	// frames carries inbound frames from the current read loop.
	// Replaced on every Connect so a dead session's frames cannot be
	// delivered into a new one.
	frames chan []byte

	pendingMu sync.Mutex
	pending   []event

	queue sendQueue

	conn   *websocket.Conn
	connMu sync.RWMutex

	closing     atomic.Bool
	initialized bool

	framesSent      atomic.Uint32
	framesReceived  atomic.Uint32
	connectAttempts atomic.Uint32
}

// New creates a transport. The handler must not be nil.
func New(handler Handler, logger log.Logger) *Transport {
	t := &Transport{
		handler: handler,
		logger:  log.OrNoop(logger),
	}
	t.state.Store(int32(StateDisconnected))
	return t
}

// Initialize allocates the transport's internal resources. It must be
// called once before Connect.
func (t *Transport) Initialize() error {
	if t.handler == nil {
		return fmt.Errorf("%w: handler is required", ErrInitFailed)
	}
	if t.initialized {
		return fmt.Errorf("%w: already initialized", ErrInitFailed)
	}
	t.frames = make(chan []byte, defaultFrameBuffer)
	t.initialized = true
	return nil
}

// State returns the current connection state.
func (t *Transport) State() State {
	return State(t.state.Load())
}

// Stats returns the activity counters.
func (t *Transport) Stats() Stats {
	return Stats{
		FramesSent:      t.framesSent.Load(),
		FramesReceived:  t.framesReceived.Load(),
		ConnectAttempts: t.connectAttempts.Load(),
	}
}

// Connect begins an asynchronous connection attempt and returns
// immediately. Completion or failure is reported through the handler's
// OnStateChange/OnError callbacks during later Service calls, not
// through this call's return value.
func (t *Transport) Connect(cfg Config) error {
	if !t.initialized {
		return ErrNotInitialized
	}

	cfg = cfg.withDefaults()
	gen, err := t.beginAttempt()
	if err != nil {
		return fmt.Errorf("%w: state is %s", ErrAlreadyConnected, t.State())
	}

	t.config = cfg
	t.closing.Store(false)
	t.connectAttempts.Add(1)
	t.frames = make(chan []byte, defaultFrameBuffer)

	go t.dial(cfg, gen, t.frames)
	return nil
}

// beginAttempt enters Connecting and opens a new attempt generation in
// a single critical section, so a dial left over from an earlier
// attempt can never validate against the new one.
func (t *Transport) beginAttempt() (uint64, error) {
	t.stateMu.Lock()
	old := State(t.state.Load())
	if !validTransition(old, StateConnecting) {
		t.stateMu.Unlock()
		return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, old, StateConnecting)
	}
	t.state.Store(int32(StateConnecting))
	t.gen++
	gen := t.gen
	t.stateMu.Unlock()

	t.logger.Log(log.NewStateChangeEvent(
		t.config.ConnectionID, log.EntityConnection, old.String(), StateConnecting.String(), ""))
	t.push(event{kind: evState, oldState: old, newState: StateConnecting})
	return gen, nil
}

// Service drives I/O. It must be called repeatedly (every host tick),
// never blocks for long, dispatches a bounded number of pending events
// on the calling thread, and flushes as much of the outbound queue as
// the connection currently accepts.
func (t *Transport) Service() {
	if !t.initialized {
		return
	}

	t.dispatchPending()

	maxEvents := t.config.MaxEventsPerTick
	if maxEvents == 0 {
		maxEvents = defaultMaxEventsPerTick
	}

drain:
	for i := 0; i < maxEvents; i++ {
		select {
		case frame := <-t.frames:
			t.logger.Log(log.NewFrameEvent(t.config.ConnectionID, log.DirectionIn, len(frame)))
			t.handler.OnFrame(frame)
			// A frame may have triggered a transition.
			t.dispatchPending()
		default:
			break drain
		}
	}

	t.flushQueue()
	t.dispatchPending()
}

// Send queues a frame for transmission. It is rejected with
// ErrNotReady before the connection is established or after teardown
// has begun; no frame is ever queued in those states.
func (t *Transport) Send(data []byte) error {
	if !t.State().canSend() {
		return ErrNotReady
	}
	t.queue.enqueue(data)
	return nil
}

// QueuedFrames returns the number of frames awaiting flush.
func (t *Transport) QueuedFrames() int {
	return t.queue.size()
}

// MarkAuthenticating records that the session layer has begun
// authentication. Called by the protocol layer only.
func (t *Transport) MarkAuthenticating() error {
	return t.transition(StateAuthenticating)
}

// MarkReady records that the session layer finished its handshake.
// Called by the protocol layer only.
func (t *Transport) MarkReady() error {
	return t.transition(StateReady)
}

// Disconnect tears the connection down: it transitions to
// Disconnecting, flushes the queue best-effort, closes the socket, and
// settles in Disconnected. It is also the required recovery step after
// an Error state.
func (t *Transport) Disconnect() error {
	if t.State() == StateDisconnected {
		return nil
	}

	t.closing.Store(true)

	// Orphan any in-flight dial or read loop before touching the
	// socket; their late results must not reach the state machine.
	t.stateMu.Lock()
	t.gen++
	t.stateMu.Unlock()

	_ = t.transition(StateDisconnecting)

	t.flushQueue()

	t.connMu.Lock()
	if t.conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = t.conn.Close()
		t.conn = nil
	}
	t.connMu.Unlock()

	t.frames = nil
	t.queue.clear()
	return t.transition(StateDisconnected)
}

// dial runs in its own goroutine; it reports the outcome through the
// pending event list. Results from an attempt the host has since
// abandoned are discarded wholesale.
func (t *Transport) dial(cfg Config, gen uint64, frames chan []byte) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	if cfg.UseTLS {
		if cfg.TLSConfig != nil {
			dialer.TLSClientConfig = cfg.TLSConfig
		} else {
			dialer.TLSClientConfig = NewClientTLSConfig(cfg.Host)
		}
	}

	conn, resp, err := dialer.Dial(cfg.URL(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if !t.currentGen(gen) {
			return
		}
		t.pushError(classifyDialError(err), "dial")
		_ = t.transitionAttempt(gen, StateError)
		return
	}

	// Claim the socket only while the attempt is still live, under the
	// same locks Disconnect uses to orphan it.
	t.connMu.Lock()
	t.stateMu.Lock()
	stale := gen != t.gen
	if !stale {
		t.conn = conn
	}
	t.stateMu.Unlock()
	t.connMu.Unlock()
	if stale {
		conn.Close()
		return
	}

	if err := t.transitionAttempt(gen, StateConnected); err != nil {
		conn.Close()
		return
	}

	go t.readLoop(conn, gen, frames)
}

// readLoop reads frames from the connection until it fails, closes, or
// its attempt generation is superseded.
func (t *Transport) readLoop(conn *websocket.Conn, gen uint64, frames chan []byte) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if t.closing.Load() || !t.currentGen(gen) {
				return
			}
			t.pushError(fmt.Errorf("read failed: %w", err), "read")
			_ = t.transitionAttempt(gen, StateError)
			return
		}

		select {
		case frames <- data:
		default:
			// A live connection must not drop frames; a superseded
			// one has no consumer left, so it exits instead of
			// blocking on the full buffer.
			if !t.currentGen(gen) {
				return
			}
			frames <- data
		}
		t.framesReceived.Add(1)
	}
}

// attemptAny skips the generation guard for transitions driven by the
// host or the session layer rather than by a particular dial.
const attemptAny uint64 = 0

// transition moves the state machine to a new state, suppressing
// duplicate-state transitions and rejecting illegal ones. Exactly one
// (old, new) event is queued per actual change, regardless of how many
// internal triggers fire.
func (t *Transport) transition(to State) error {
	return t.transitionAttempt(attemptAny, to)
}

// transitionAttempt is transition on behalf of a specific connection
// attempt; it fails with errStaleAttempt once the generation has moved
// on, leaving the state machine untouched.
func (t *Transport) transitionAttempt(gen uint64, to State) error {
	t.stateMu.Lock()
	if gen != attemptAny && gen != t.gen {
		t.stateMu.Unlock()
		return errStaleAttempt
	}
	old := State(t.state.Load())
	if old == to {
		t.stateMu.Unlock()
		return nil
	}
	if !validTransition(old, to) {
		t.stateMu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, old, to)
	}
	t.state.Store(int32(to))
	t.stateMu.Unlock()

	t.logger.Log(log.NewStateChangeEvent(
		t.config.ConnectionID, log.EntityConnection, old.String(), to.String(), ""))
	t.push(event{kind: evState, oldState: old, newState: to})
	return nil
}

// currentGen reports whether the attempt generation is still live.
func (t *Transport) currentGen(gen uint64) bool {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return gen == t.gen
}

// pushError queues an error for dispatch on the host thread.
func (t *Transport) pushError(err error, context string) {
	t.logger.Log(log.NewErrorEvent(t.config.ConnectionID, log.LayerTransport, err, context))
	t.push(event{kind: evError, err: err})
}

// push never blocks; the pending list grows as needed.
func (t *Transport) push(ev event) {
	t.pendingMu.Lock()
	t.pending = append(t.pending, ev)
	t.pendingMu.Unlock()
}

// dispatchPending delivers queued state and error events in order.
// Handlers may trigger further transitions; those are picked up by the
// loop, each still delivered exactly once.
func (t *Transport) dispatchPending() {
	for {
		t.pendingMu.Lock()
		if len(t.pending) == 0 {
			t.pendingMu.Unlock()
			return
		}
		ev := t.pending[0]
		t.pending = t.pending[1:]
		t.pendingMu.Unlock()

		switch ev.kind {
		case evState:
			t.handler.OnStateChange(ev.oldState, ev.newState)
		case evError:
			t.handler.OnError(ev.err)
		}
	}
}

// flushQueue writes queued frames until the queue drains, the
// per-tick bound is reached, or a write fails.
func (t *Transport) flushQueue() {
	st := t.State()
	if !st.canSend() && st != StateDisconnecting {
		return
	}

	t.connMu.RLock()
	conn := t.conn
	t.connMu.RUnlock()
	if conn == nil {
		return
	}

	maxWrites := t.config.MaxWritesPerTick
	if maxWrites == 0 {
		maxWrites = defaultMaxWritesPerTick
	}
	writeTimeout := t.config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = DefaultWriteTimeout
	}

	for i := 0; i < maxWrites; i++ {
		data, ok := t.queue.dequeue()
		if !ok {
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			if t.closing.Load() {
				return
			}
			t.pushError(fmt.Errorf("write failed: %w", err), "write")
			_ = t.transition(StateError)
			return
		}

		t.framesSent.Add(1)
		t.logger.Log(log.NewFrameEvent(t.config.ConnectionID, log.DirectionOut, len(data)))
	}
}
