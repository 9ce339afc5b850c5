package config

import (
	"fmt"
	"strings"
	"time"
)

// HTTPClientConfig configures outbound calls to HTTP collaborators.
type HTTPClientConfig struct {
	BaseURL        string               `koanf:"baseurl"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type RetryConfig struct {
	MaxAttempts int           `koanf:"maxattempts"`
	WaitMin     time.Duration `koanf:"waitmin"`
	WaitMax     time.Duration `koanf:"waitmax"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the HTTPClientConfig.
func (c *HTTPClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- HTTP Client ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %v\n", c.Timeout))
	b.WriteString("\n--- Retry ---\n")
	b.WriteString(fmt.Sprintf("  maxattempts: %d\n", c.Retry.MaxAttempts))
	b.WriteString(fmt.Sprintf("  waitmin: %v\n", c.Retry.WaitMin))
	b.WriteString(fmt.Sprintf("  waitmax: %v\n", c.Retry.WaitMax))
	b.WriteString("\n--- Circuit Breaker ---\n")
	b.WriteString(fmt.Sprintf("  consecutivefailures: %d\n", c.CircuitBreaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  opentimeout: %v\n", c.CircuitBreaker.OpenTimeout))
	return b.String()
}

func (c *HTTPClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("http client base url is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("http client timeout must be greater than 0")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.maxattempts must not be negative")
	}
	if c.Retry.WaitMin <= 0 || c.Retry.WaitMax < c.Retry.WaitMin {
		return fmt.Errorf("retry wait bounds are invalid: min=%v max=%v", c.Retry.WaitMin, c.Retry.WaitMax)
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.CircuitBreaker.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
