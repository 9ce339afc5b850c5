package config

import (
	"fmt"
	"strings"
)

const defaultMetricsPath = "/metrics"

// DiagnosticsConfig describes the side listener that serves pprof and the Prometheus scrape endpoint.
// The listener is started only when at least one of them is enabled.
type DiagnosticsConfig struct {
	Addr        string `koanf:"addr"`
	PProf       bool   `koanf:"pprof"`
	Metrics     bool   `koanf:"metrics"`
	MetricsPath string `koanf:"metricspath"`
}

// Enabled reports whether the diagnostics listener has anything to serve.
func (c *DiagnosticsConfig) Enabled() bool {
	return c.PProf || c.Metrics
}

// String returns a string representation of the diagnostics configuration.
func (c *DiagnosticsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Diagnostics ---\n")
	b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	b.WriteString(fmt.Sprintf("  pprof: %t\n", c.PProf))
	b.WriteString(fmt.Sprintf("  metrics: %t\n", c.Metrics))
	b.WriteString(fmt.Sprintf("  metricspath: %s\n", c.MetricsPath))
	return b.String()
}

func (c *DiagnosticsConfig) Validate() error {
	if c.Enabled() && c.Addr == "" {
		return fmt.Errorf("diagnostics listener is enabled but address is not configured")
	}
	if c.MetricsPath == "" {
		c.MetricsPath = defaultMetricsPath
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("diagnostics metrics path must start with '/': %q", c.MetricsPath)
	}
	return nil
}
