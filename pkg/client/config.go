package client

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a configuration that cannot produce a
// working client.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the client configuration. Zero values fall back to
// defaults where one exists; Game has no default and must be set.
type Config struct {
	// Host is the server address.
	Host string `yaml:"host"`

	// Port is the server port (default: 38281).
	Port int `yaml:"port"`

	// UseTLS selects the encrypted endpoint. Always true for the
	// secure deployment.
	UseTLS bool `yaml:"use_tls"`

	// Game is the game identifier this client plays.
	Game string `yaml:"game"`

	// SlotName is the default participant identity; Connect may
	// override it.
	SlotName string `yaml:"slot_name"`

	// Password is the default room password.
	Password string `yaml:"password"`

	// UUID is the stable per-instance identifier. Generated once and
	// persisted by the host; left empty, the client generates a fresh
	// one per construction.
	UUID string `yaml:"uuid"`

	// Tags are the client tags sent during authentication.
	Tags []string `yaml:"tags"`

	// ItemsHandling overrides the item-visibility bitmask. Zero
	// requests every category.
	ItemsHandling int `yaml:"items_handling"`

	// DataPackageDir enables the on-disk data package cache.
	DataPackageDir string `yaml:"datapackage_dir"`
}

// Validate checks the configuration for structural problems.
func (c Config) Validate() error {
	if c.Game == "" {
		return fmt.Errorf("%w: game is required", ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.ItemsHandling < 0 || c.ItemsHandling > 7 {
		return fmt.Errorf("%w: items_handling %d out of range", ErrInvalidConfig, c.ItemsHandling)
	}
	return nil
}

// LoadConfig reads a yaml configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
