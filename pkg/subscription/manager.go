package subscription

import (
	"sync"

	"github.com/multiworld-protocol/multiworld-go/pkg/session"
)

// StateChange describes a session state transition.
type StateChange struct {
	// Old is the state the session left.
	Old session.State

	// New is the state the session entered.
	New session.State

	// Reason explains the transition, e.g. a server refusal message.
	// Empty for ordinary handshake progress.
	Reason string
}

// Message is a human-readable server message.
type Message struct {
	// Text is the rendered message text.
	Text string

	// Priority is the server-assigned display priority; higher values
	// indicate messages the host should surface prominently.
	Priority int
}

// ItemHandler receives one newly appended item. index is its position
// within the session item log. Delivery order matches wire order.
type ItemHandler func(item session.Item, index int)

// LocationsHandler receives locations newly confirmed as checked.
type LocationsHandler func(locations []int64)

// StateHandler receives session state transitions.
type StateHandler func(change StateChange)

// PrintHandler receives human-readable server messages.
type PrintHandler func(msg Message)

// entry pairs a subscription identifier with its handler. Entries are
// kept in subscription order so dispatch is deterministic.
type entry[H any] struct {
	id      uint32
	handler H
}

// Manager routes session events to registered handlers. Registration
// is safe from any goroutine; emission happens on the host tick thread.
type Manager struct {
	mu     sync.RWMutex
	nextID uint32

	items     []entry[ItemHandler]
	locations []entry[LocationsHandler]
	states    []entry[StateHandler]
	prints    []entry[PrintHandler]
}

// NewManager creates an empty subscription manager.
func NewManager() *Manager {
	return &Manager{}
}

// SubscribeItem registers a handler for received items.
func (m *Manager) SubscribeItem(handler ItemHandler) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.items = append(m.items, entry[ItemHandler]{m.nextID, handler})
	return m.nextID
}

// SubscribeLocations registers a handler for checked-location updates.
func (m *Manager) SubscribeLocations(handler LocationsHandler) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.locations = append(m.locations, entry[LocationsHandler]{m.nextID, handler})
	return m.nextID
}

// SubscribeState registers a handler for session state transitions.
func (m *Manager) SubscribeState(handler StateHandler) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.states = append(m.states, entry[StateHandler]{m.nextID, handler})
	return m.nextID
}

// SubscribePrint registers a handler for server messages.
func (m *Manager) SubscribePrint(handler PrintHandler) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.prints = append(m.prints, entry[PrintHandler]{m.nextID, handler})
	return m.nextID
}

// Unsubscribe removes a subscription by identifier. Unknown
// identifiers are ignored.
func (m *Manager) Unsubscribe(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = remove(m.items, id)
	m.locations = remove(m.locations, id)
	m.states = remove(m.states, id)
	m.prints = remove(m.prints, id)
}

func remove[H any](entries []entry[H], id uint32) []entry[H] {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

// EmitItem delivers one newly received item to all item handlers.
func (m *Manager) EmitItem(item session.Item, index int) {
	m.mu.RLock()
	handlers := make([]ItemHandler, 0, len(m.items))
	for _, e := range m.items {
		handlers = append(handlers, e.handler)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(item, index)
	}
}

// EmitLocations delivers newly checked locations to all location
// handlers.
func (m *Manager) EmitLocations(locations []int64) {
	m.mu.RLock()
	handlers := make([]LocationsHandler, 0, len(m.locations))
	for _, e := range m.locations {
		handlers = append(handlers, e.handler)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(locations)
	}
}

// EmitState delivers a state transition to all state handlers.
func (m *Manager) EmitState(change StateChange) {
	m.mu.RLock()
	handlers := make([]StateHandler, 0, len(m.states))
	for _, e := range m.states {
		handlers = append(handlers, e.handler)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(change)
	}
}

// EmitPrint delivers a server message to all print handlers.
func (m *Manager) EmitPrint(msg Message) {
	m.mu.RLock()
	handlers := make([]PrintHandler, 0, len(m.prints))
	for _, e := range m.prints {
		handlers = append(handlers, e.handler)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}
