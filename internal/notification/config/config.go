// Package config defines the configuration of the notifier worker.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Log         config.LogConfig         `koanf:"log"`
	Diagnostics config.DiagnosticsConfig `koanf:"diagnostics"`
	NATS        config.NATSConfig        `koanf:"nats"`
	Subscriber  config.SubscriberConfig  `koanf:"subscriber"`
	KV          config.KVConfig          `koanf:"kv"`
	API         APIConfig                `koanf:"api"`
	Probes      config.ProbesConfig      `koanf:"probes"`
	Shutdown    config.ShutdownConfig    `koanf:"shutdown"`
}

// APIConfig enables the admin endpoints reading and acknowledging notifications.
type APIConfig struct {
	Enabled bool              `koanf:"enabled"`
	Server  config.HTTPConfig `koanf:"server"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.NATS.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.KV.String())
	b.WriteString(fmt.Sprintf("\n--- Admin API ---\n  enabled: %t\n", c.API.Enabled))
	if c.API.Enabled {
		b.WriteString(c.API.Server.String())
	}
	b.WriteString(c.Log.String())
	b.WriteString(c.Diagnostics.String())
	b.WriteString(c.Probes.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if !c.NATS.Enabled {
		return errors.New("notifier requires nats.enabled=true")
	}
	validators := []configloader.Validator{&c.Log, &c.Diagnostics, &c.NATS, &c.Subscriber, &c.KV, &c.Probes, &c.Shutdown}
	if c.API.Enabled {
		validators = append(validators, &c.API.Server)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
