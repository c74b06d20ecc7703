package version

import (
	"encoding/json"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		major int
		minor int
		build int
	}{
		{"0.5.0", 0, 5, 0},
		{"0.5.1", 0, 5, 1},
		{"1.0.0", 1, 0, 0},
		{"10.23.4", 10, 23, 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major || v.Minor != tt.minor || v.Build != tt.build {
				t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d",
					tt.input, v.Major, v.Minor, v.Build, tt.major, tt.minor, tt.build)
			}
			if v.Class != "Version" {
				t.Errorf("Class = %q, want %q", v.Class, "Version")
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1",
		"1.0",
		"1.0.0.0",
		"a.b.c",
		"0.5.x",
		"-1.0.0",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestCurrentNetwork(t *testing.T) {
	v := CurrentNetwork()
	if v.String() != Current {
		t.Errorf("CurrentNetwork().String() = %q, want %q", v.String(), Current)
	}
}

func TestNetwork_Compatible(t *testing.T) {
	a := Network{Major: 0, Minor: 5, Build: 0}
	b := Network{Major: 0, Minor: 5, Build: 9}
	c := Network{Major: 0, Minor: 4, Build: 0}

	if !a.Compatible(b) {
		t.Error("versions differing only in build should be compatible")
	}
	if a.Compatible(c) {
		t.Error("versions differing in minor should not be compatible")
	}
}

func TestNetwork_WireForm(t *testing.T) {
	data, err := json.Marshal(CurrentNetwork())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["class"] != "Version" {
		t.Errorf("wire form class = %v, want Version", decoded["class"])
	}
	if decoded["minor"] != float64(5) {
		t.Errorf("wire form minor = %v, want 5", decoded["minor"])
	}
}
