// Package mqtt provides the Eclipse Paho backed transport used by the
// telemetry logger. It builds client options from Config (credentials, TLS,
// keep-alive, timeouts), retries the initial connection while the failure
// is transient, and forwards Paho callbacks as telemetry events on a single
// channel. Reconnection after a lost connection is left to Paho.
package mqtt
