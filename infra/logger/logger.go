package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/sensorlog/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// Options controls how component loggers are built.
type Options struct {
	// Level is one of trace, debug, info, warn, error.
	Level string
	// Format is "console" or "json".
	Format string
	// Writer receives log output. Defaults to stderr so that stdout only
	// carries sensor readings.
	Writer io.Writer
}

var (
	mu      sync.RWMutex
	current = Options{Level: "info", Format: "json", Writer: os.Stderr}
)

// Configure sets the options used by subsequent calls to New.
func Configure(o Options) error {
	if o.Level == "" {
		o.Level = "info"
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(o.Level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(o.Format) {
	case "":
		o.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %s", o.Format)
	}
	if o.Writer == nil {
		o.Writer = os.Stderr
	}
	mu.Lock()
	current = o
	mu.Unlock()
	return nil
}

// New returns a Logger for the given component. APP_ENV=dev forces the
// console format.
func New(component string) Logger {
	mu.RLock()
	o := current
	mu.RUnlock()
	return NewZerologLogger(component, o)
}
