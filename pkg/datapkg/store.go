package datapkg

import (
	"strings"
	"sync"

	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

// gameTable holds one game's inverted name tables.
type gameTable struct {
	checksum      string
	itemNames     map[int64]string
	locationNames map[int64]string
}

// Store holds the name tables of every game seen this session. A zero
// cache directory disables the disk cache.
type Store struct {
	mu       sync.RWMutex
	games    map[string]*gameTable
	cacheDir string
}

// NewStore creates a data package store. cacheDir may be empty to keep
// everything in memory.
func NewStore(cacheDir string) *Store {
	return &Store{
		games:    make(map[string]*gameTable),
		cacheDir: cacheDir,
	}
}

// Merge incorporates a DataPackage payload, replacing any previously
// held tables for the games it names. Merged tables are written to the
// disk cache when one is configured.
func (s *Store) Merge(data wire.DataPackageData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for game, gd := range data.Games {
		table := &gameTable{
			checksum:      gd.Checksum,
			itemNames:     invert(gd.ItemNameToID),
			locationNames: invert(gd.LocationNameToID),
		}
		s.games[game] = table
		if s.cacheDir != "" {
			// Cache failures are non-fatal; the in-memory table stands.
			_ = s.writeCache(game, table)
		}
	}
}

// invert flips a name-to-id map. On duplicate ids the
// lexicographically smallest name wins, so inversion is deterministic.
func invert(names map[string]int64) map[int64]string {
	out := make(map[int64]string, len(names))
	for name, id := range names {
		if prev, ok := out[id]; ok && strings.Compare(prev, name) <= 0 {
			continue
		}
		out[id] = name
	}
	return out
}

// ItemName resolves an item id within a game.
func (s *Store) ItemName(game string, id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.games[game]
	if !ok {
		return "", false
	}
	name, ok := table.itemNames[id]
	return name, ok
}

// LocationName resolves a location id within a game.
func (s *Store) LocationName(game string, id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.games[game]
	if !ok {
		return "", false
	}
	name, ok := table.locationNames[id]
	return name, ok
}

// Checksum returns the stored checksum for a game.
func (s *Store) Checksum(game string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.games[game]
	if !ok {
		return "", false
	}
	return table.checksum, true
}

// Has reports whether tables for a game are loaded.
func (s *Store) Has(game string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[game]
	return ok
}

// Games returns the names of all loaded games.
func (s *Store) Games() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.games))
	for game := range s.games {
		out = append(out, game)
	}
	return out
}
