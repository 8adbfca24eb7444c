package events

import (
	"time"

	"github.com/kilianp07/sensorlog/core/model"
)

// Event is any value published on the telemetry bus.
type Event interface{}

// ConnectionEvent is published on every connect and disconnect.
type ConnectionEvent struct {
	State model.ConnectionState
	Err   error
	Time  time.Time
}

// ReconnectingEvent is published when the transport starts a reconnect attempt.
type ReconnectingEvent struct {
	Time time.Time
}

// TransportErrorEvent carries an error reported by the transport.
type TransportErrorEvent struct {
	Err  error
	Time time.Time
}

// SubscriptionEvent is published once per topic per connection. Err is nil
// when the broker acknowledged the subscription.
type SubscriptionEvent struct {
	Topic string
	Err   error
	Time  time.Time
}

// ReadingEvent is published after a reading has been written to the console.
type ReadingEvent struct {
	Topic   string
	Reading model.SensorReading
	Time    time.Time
}

// DecodeFailureEvent is published when a payload is dropped.
type DecodeFailureEvent struct {
	Topic string
	Err   error
	Time  time.Time
}
