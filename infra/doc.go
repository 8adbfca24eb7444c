// Package infra contains the adapters behind the telemetry core: the Paho
// MQTT transport, zerolog loggers and the Prometheus exporter. They depend
// on the interfaces in core, never the other way around.
package infra
