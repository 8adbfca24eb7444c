// Package events defines the telemetry events emitted on the event bus.
//
// Available event types:
//   - ConnectionEvent: broker connection state changed
//   - ReconnectingEvent: the transport is attempting to reconnect
//   - TransportErrorEvent: non-fatal transport error
//   - SubscriptionEvent: result of a single topic subscription
//   - ReadingEvent: sensor reading decoded and printed
//   - DecodeFailureEvent: payload dropped because it could not be decoded
package events
