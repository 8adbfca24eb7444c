package model

// ConnectionState mirrors the latest broker connection event.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

// String returns a human-readable representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}
