// Package telemetry implements the sensor telemetry logger.
//
// A TelemetryLogger owns a single broker connection through a Transport.
// The transport turns broker callbacks into Events delivered on one channel;
// the logger consumes that channel on a single goroutine, so the OnConnected,
// OnMessage, OnError and OnDisconnected handlers never run concurrently and
// observe events in delivery order.
//
// On every Connected event the full topic list is subscribed again, in list
// order. A failed subscription is logged and does not stop the remaining
// topics. Each message is decoded as a JSON {"value", "unit"} object and
// written to the console as a four line block; payloads that cannot be
// decoded are logged and dropped.
package telemetry
