package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type CatalogConfig struct {
	PageSize  int    `koanf:"pagesize"`
	Locale    string `koanf:"locale"`
	// MaxStates bounds the per-user cart and favorites states kept in memory.
	MaxStates int    `koanf:"maxstates"`
}

// String returns a string representation of the catalog configuration.
func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  pagesize: %d\n", c.PageSize))
	b.WriteString(fmt.Sprintf("  locale: %s\n", c.Locale))
	b.WriteString(fmt.Sprintf("  maxstates: %d\n", c.MaxStates))
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("catalog page size must not be negative: %d", c.PageSize)
	}
	if c.MaxStates < 0 {
		return fmt.Errorf("catalog max states must not be negative: %d", c.MaxStates)
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return fmt.Errorf("invalid catalog locale %q: %w", c.Locale, err)
		}
	}
	return nil
}

// Language returns the collation language, French when no locale is configured.
func (c *CatalogConfig) Language() language.Tag {
	if c.Locale == "" {
		return language.French
	}
	return language.Make(c.Locale)
}
