package datapkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// cachedGame is the on-disk form of one game's tables.
type cachedGame struct {
	Checksum      string           `cbor:"1,keyasint"`
	ItemNames     map[int64]string `cbor:"2,keyasint"`
	LocationNames map[int64]string `cbor:"3,keyasint"`
}

// cacheEncMode is the CBOR encoder mode for cache files.
var cacheEncMode cbor.EncMode

// cacheDecMode is the CBOR decoder mode for cache files.
var cacheDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	cacheEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create cache CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	cacheDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create cache CBOR decoder mode: %v", err))
	}
}

// cachePath maps a game name to its cache file. Game names may contain
// characters that are unsafe in file names.
func (s *Store) cachePath(game string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, game)
	return filepath.Join(s.cacheDir, sanitized+".dpkg")
}

// writeCache persists one game's tables. Caller holds the store lock.
func (s *Store) writeCache(game string, table *gameTable) error {
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := cacheEncMode.Marshal(cachedGame{
		Checksum:      table.checksum,
		ItemNames:     table.itemNames,
		LocationNames: table.locationNames,
	})
	if err != nil {
		return fmt.Errorf("encode cache for %q: %w", game, err)
	}

	path := s.cachePath(game)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache for %q: %w", game, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit cache for %q: %w", game, err)
	}
	return nil
}

// LoadCached loads a game's tables from the disk cache when the cached
// checksum matches the expected one. It reports whether the tables are
// now available, so callers can skip requesting that game from the
// server. An empty expected checksum accepts any cached version.
func (s *Store) LoadCached(game, checksum string) bool {
	if s.cacheDir == "" {
		return false
	}

	data, err := os.ReadFile(s.cachePath(game))
	if err != nil {
		return false
	}

	var cached cachedGame
	if err := cacheDecMode.Unmarshal(data, &cached); err != nil {
		return false
	}
	if checksum != "" && cached.Checksum != checksum {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game] = &gameTable{
		checksum:      cached.Checksum,
		itemNames:     cached.ItemNames,
		locationNames: cached.LocationNames,
	}
	return true
}
