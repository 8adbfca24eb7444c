package telemetry

import "context"

// EventKind identifies what a transport Event reports.
type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventDisconnected
	EventReconnecting
	EventError
	EventMessage
)

// String returns a human-readable representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventReconnecting:
		return "reconnecting"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is a single transport notification.
type Event struct {
	Kind    EventKind
	Topic   string
	Payload []byte
	// Err is set for EventError and, when a cause is known, EventDisconnected.
	Err error
}

// Transport is the broker connection owned by a TelemetryLogger.
type Transport interface {
	// Connect establishes the connection. It returns nil once connected and
	// an error only when the failure is not worth retrying or ctx is done.
	// Transient failures are reported as EventError on Events.
	Connect(ctx context.Context) error
	// Subscribe subscribes a topic and waits for the broker's answer.
	// Messages for the topic are delivered as EventMessage on Events.
	Subscribe(topic string, qos byte) error
	// Events returns the channel carrying every transport notification in
	// delivery order.
	Events() <-chan Event
	// Close disconnects and releases the connection.
	Close() error
}
