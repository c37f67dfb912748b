package repository

import (
	"github.com/diillson/billing-alerts-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration.
type ConfigRepository interface {
	// LoadConfigFile parses a TOML, YAML or JSON file on top of the defaults.
	LoadConfigFile(filePath string) (*types.Config, error)
	// Load resolves defaults, the optional file and the environment overlay.
	Load(filePath string) (*types.Config, error)
}
