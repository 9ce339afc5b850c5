// Package config defines the configuration of the catalog service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Storage backends for the product store.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPServer  config.HTTPConfig        `koanf:"server"`
	Storage     string                   `koanf:"storage"`
	Database    config.DatabaseConfig    `koanf:"database"`
	Log         config.LogConfig         `koanf:"log"`
	Diagnostics config.DiagnosticsConfig `koanf:"diagnostics"`
	Shutdown    config.ShutdownConfig    `koanf:"shutdown"`
	NATS        config.NATSConfig        `koanf:"nats"`
	Telemetry   config.TelemetryConfig   `koanf:"telemetry"`
	Catalog     config.CatalogConfig     `koanf:"catalog"`
	Source      SourceConfig             `koanf:"source"`
}

// SourceConfig points Browse at a remote product listing instead of the local store.
type SourceConfig struct {
	Enabled bool                    `koanf:"enabled"`
	Path    string                  `koanf:"path"`
	Client  config.HTTPClientConfig `koanf:"client"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(fmt.Sprintf("\n--- Storage ---\n  storage: %s\n", c.Storage))
	if c.Storage == StoragePostgres {
		b.WriteString(c.Database.String())
	}
	b.WriteString(c.Catalog.String())
	b.WriteString(fmt.Sprintf("\n--- Remote source ---\n  enabled: %t\n  path: %s\n", c.Source.Enabled, c.Source.Path))
	if c.Source.Enabled {
		b.WriteString(c.Source.Client.String())
	}
	b.WriteString(c.NATS.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Diagnostics.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.Storage == "" {
		c.Storage = StoragePostgres
	}
	validators := []configloader.Validator{&c.HTTPServer, &c.Log, &c.Diagnostics, &c.Shutdown, &c.NATS, &c.Telemetry, &c.Catalog}
	switch c.Storage {
	case StoragePostgres:
		validators = append(validators, &c.Database)
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q, expected %s or %s", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.Source.Enabled {
		validators = append(validators, &c.Source.Client)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
