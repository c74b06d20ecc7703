// Package version provides the protocol version implemented by this
// client and its wire representation.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol version this library speaks.
const Current = "0.5.0"

// Network is a protocol version as it appears on the wire.
// The Class marker is required by the server when the version is
// embedded in a packet.
type Network struct {
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Build int    `json:"build"`
	Class string `json:"class,omitempty"`
}

// CurrentNetwork returns the wire form of the current protocol version.
func CurrentNetwork() Network {
	v, _ := Parse(Current)
	return v
}

// Parse parses a "major.minor.build" version string.
func Parse(s string) (Network, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Network{}, fmt.Errorf("invalid version %q: expected major.minor.build", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Network{}, fmt.Errorf("invalid version %q: bad component %q", s, p)
		}
		nums[i] = n
	}

	return Network{Major: nums[0], Minor: nums[1], Build: nums[2], Class: "Version"}, nil
}

// String returns the version as "major.minor.build".
func (v Network) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// Compatible returns true if the other version has the same major and
// minor components. The build component carries no compatibility
// meaning in this protocol.
func (v Network) Compatible(other Network) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}
