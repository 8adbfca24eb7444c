package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	// Infow logs a message with structured fields.
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Errorw logs an error with structured fields.
	Errorw(msg string, err error, fields map[string]any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)                {}
func (NopLogger) Debugw(string, map[string]any)        {}
func (NopLogger) Infof(string, ...any)                 {}
func (NopLogger) Infow(string, map[string]any)         {}
func (NopLogger) Warnf(string, ...any)                 {}
func (NopLogger) Errorf(string, ...any)                {}
func (NopLogger) Errorw(string, error, map[string]any) {}
