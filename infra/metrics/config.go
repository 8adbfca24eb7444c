package metrics

import "fmt"

// DefaultAddr is the listen address of the Prometheus endpoint.
const DefaultAddr = ":9100"

// Config defines settings for the Prometheus endpoint.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = DefaultAddr
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.PrometheusEnabled && c.PrometheusAddr == "" {
		return fmt.Errorf("prometheus_addr is required when prometheus is enabled")
	}
	return nil
}
