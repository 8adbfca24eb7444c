package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives telemetry outcomes.
type Recorder interface {
	RecordConnection(connected bool)
	RecordReconnect()
	RecordTransportError()
	RecordSubscription(topic string, ok bool)
	RecordMessage(topic string)
	RecordDecodeError(topic string)
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordConnection(bool)           {}
func (NopRecorder) RecordReconnect()                {}
func (NopRecorder) RecordTransportError()           {}
func (NopRecorder) RecordSubscription(string, bool) {}
func (NopRecorder) RecordMessage(string)            {}
func (NopRecorder) RecordDecodeError(string)        {}

// PromSink records telemetry outcomes in Prometheus metrics.
type PromSink struct {
	connections    prometheus.Counter
	disconnections prometheus.Counter
	reconnects     prometheus.Counter
	errors         prometheus.Counter
	connected      prometheus.Gauge
	subscriptions  *prometheus.CounterVec
	messages       *prometheus.CounterVec
	decodeErrors   *prometheus.CounterVec
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorlog_connections_total",
			Help: "Number of successful broker connections",
		}),
		disconnections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorlog_disconnections_total",
			Help: "Number of broker disconnections",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorlog_reconnect_attempts_total",
			Help: "Number of reconnect attempts started by the transport",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorlog_transport_errors_total",
			Help: "Number of transport errors",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensorlog_connected",
			Help: "1 while connected to the broker",
		}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensorlog_subscriptions_total",
			Help: "Subscription attempts by topic and result",
		}, []string{"topic", "result"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensorlog_messages_total",
			Help: "Sensor readings printed by topic",
		}, []string{"topic"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensorlog_decode_errors_total",
			Help: "Messages dropped because the payload could not be decoded",
		}, []string{"topic"}),
	}
	var err error
	if s.connections, err = register(reg, s.connections); err != nil {
		return nil, err
	}
	if s.disconnections, err = register(reg, s.disconnections); err != nil {
		return nil, err
	}
	if s.reconnects, err = register(reg, s.reconnects); err != nil {
		return nil, err
	}
	if s.errors, err = register(reg, s.errors); err != nil {
		return nil, err
	}
	if s.connected, err = register(reg, s.connected); err != nil {
		return nil, err
	}
	if s.subscriptions, err = register(reg, s.subscriptions); err != nil {
		return nil, err
	}
	if s.messages, err = register(reg, s.messages); err != nil {
		return nil, err
	}
	if s.decodeErrors, err = register(reg, s.decodeErrors); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordConnection counts a connect or disconnect and updates the gauge.
func (s *PromSink) RecordConnection(connected bool) {
	if connected {
		s.connections.Inc()
		s.connected.Set(1)
		return
	}
	s.disconnections.Inc()
	s.connected.Set(0)
}

// RecordReconnect counts a reconnect attempt.
func (s *PromSink) RecordReconnect() { s.reconnects.Inc() }

// RecordTransportError counts a transport error.
func (s *PromSink) RecordTransportError() { s.errors.Inc() }

// RecordSubscription counts a subscription result for topic.
func (s *PromSink) RecordSubscription(topic string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	s.subscriptions.WithLabelValues(topic, result).Inc()
}

// RecordMessage counts a printed reading.
func (s *PromSink) RecordMessage(topic string) { s.messages.WithLabelValues(topic).Inc() }

// RecordDecodeError counts a dropped message.
func (s *PromSink) RecordDecodeError(topic string) { s.decodeErrors.WithLabelValues(topic).Inc() }
