package session

import (
	"sort"
	"sync"

	"github.com/multiworld-protocol/multiworld-go/pkg/version"
)

// Item is one received item. Items are immutable once created and are
// only ever appended to the session's item log.
type Item struct {
	// ID is the item identifier within its game's data package.
	ID int64

	// Location is the location the item was found at.
	Location int64

	// Player is the slot number of the participant who found it.
	Player int

	// Name is the resolved display name, empty when no data package
	// entry covers the item.
	Name string

	// Classified marks trap items.
	Classified bool
}

// RoomInfo is the room snapshot taken from the server's RoomInfo
// packet. Later RoomInfo packets overwrite it in place.
type RoomInfo struct {
	SeedName            string
	PasswordRequired    bool
	HintCost            int
	LocationCheckPoints int
	Permissions         map[string]int
	Version             version.Network
}

// Store accumulates session-scoped state. The received-item log and
// the checked-location set grow monotonically for the lifetime of the
// session; Reset clears everything for a full client teardown.
type Store struct {
	mu sync.RWMutex

	roomInfo    RoomInfo
	hasRoomInfo bool

	slot int
	team int

	checked map[int64]struct{}
	items   []Item
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		checked: make(map[int64]struct{}),
	}
}

// SetRoomInfo stores the room snapshot, replacing any previous one.
func (s *Store) SetRoomInfo(info RoomInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomInfo = info
	s.hasRoomInfo = true
}

// RoomInfo returns the room snapshot and whether one has been received.
func (s *Store) RoomInfo() (RoomInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomInfo, s.hasRoomInfo
}

// SetHintCost updates the hint cost within the stored room snapshot.
func (s *Store) SetHintCost(cost int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomInfo.HintCost = cost
}

// SetSlot records the participant identity assigned by the server.
func (s *Store) SetSlot(team, slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.team = team
	s.slot = slot
}

// Slot returns the assigned slot number, 0 before authentication.
func (s *Store) Slot() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slot
}

// Team returns the assigned team number.
func (s *Store) Team() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.team
}

// AddChecked adds a location to the checked set. It returns false if
// the location was already present.
func (s *Store) AddChecked(location int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.checked[location]; exists {
		return false
	}
	s.checked[location] = struct{}{}
	return true
}

// AddCheckedAll adds every listed location and returns how many were
// newly added.
func (s *Store) AddCheckedAll(locations []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, loc := range locations {
		if _, exists := s.checked[loc]; !exists {
			s.checked[loc] = struct{}{}
			added++
		}
	}
	return added
}

// HasChecked reports whether a location has been checked.
func (s *Store) HasChecked(location int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.checked[location]
	return exists
}

// CheckedLocations returns a sorted copy of the checked-location set.
func (s *Store) CheckedLocations() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.checked))
	for loc := range s.checked {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CheckedCount returns the size of the checked-location set.
func (s *Store) CheckedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checked)
}

// AppendItem appends one item to the received-item log and returns its
// log index.
func (s *Store) AppendItem(item Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return len(s.items) - 1
}

// Items returns a copy of the received-item log in arrival order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// ItemCount returns the length of the received-item log.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset clears all session state. Only a full client teardown calls
// this; within a session the store grows monotonically.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomInfo = RoomInfo{}
	s.hasRoomInfo = false
	s.slot = 0
	s.team = 0
	s.checked = make(map[int64]struct{})
	s.items = nil
}
