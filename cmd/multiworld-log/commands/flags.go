// Package commands implements the multiworld-log CLI commands.
package commands

import (
	"fmt"
	"strings"

	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

// ParseLayerFlag converts a layer flag value to a log.Layer.
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "protocol":
		return log.LayerProtocol, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (transport, wire, protocol)", s)
	}
}

// ParseDirectionFlag converts a direction flag value to a log.Direction.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (in, out)", s)
	}
}

// ParseCategoryFlag converts a category flag value to a log.Category.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "frame":
		return log.CategoryFrame, nil
	case "packet":
		return log.CategoryPacket, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (frame, packet, state, error)", s)
	}
}
