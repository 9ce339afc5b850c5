package config

import (
	"fmt"
	"strings"
)

type KVConfig struct {
	Bucket   string `koanf:"bucket"`
	Key      string `koanf:"key"`
	MaxItems int    `koanf:"maxitems"`
}

// String returns a string representation of the key-value configuration.
func (c *KVConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Key-Value ---\n")
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Bucket))
	b.WriteString(fmt.Sprintf("  key: %s\n", c.Key))
	b.WriteString(fmt.Sprintf("  maxitems: %d\n", c.MaxItems))
	return b.String()
}

func (c *KVConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("kv bucket is not configured")
	}
	if c.Key == "" {
		return fmt.Errorf("kv key is not configured")
	}
	if c.MaxItems < 0 {
		return fmt.Errorf("kv maxitems must not be negative")
	}
	return nil
}
