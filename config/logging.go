package config

import (
	"fmt"
	"strings"
)

// LoggingConfig defines settings for the lifecycle logs. Sensor readings are
// always printed to stdout regardless of these settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level"`
	// Format selects "console" or "json" output.
	Format string `json:"format"`
	// Output is "stderr" or "stdout".
	Output string `json:"output"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	switch strings.ToLower(c.Output) {
	case "stderr", "stdout":
	default:
		return fmt.Errorf("unknown output %s", c.Output)
	}
	return nil
}
