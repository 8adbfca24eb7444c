package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/kilianp07/sensorlog/core/events"
	"github.com/kilianp07/sensorlog/core/logger"
	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/internal/eventbus"
)

// TelemetryLogger subscribes a fixed topic list and prints every sensor
// reading it receives.
type TelemetryLogger struct {
	transport Transport
	topics    model.TopicList
	qos       byte
	out       io.Writer
	log       logger.Logger
	bus       eventbus.EventBus[events.Event]
	now       func() time.Time

	mu    sync.RWMutex
	state model.ConnectionState
}

// Option configures a TelemetryLogger.
type Option func(*TelemetryLogger)

// WithOutput sets the writer receiving reading blocks. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(l *TelemetryLogger) {
		if w != nil {
			l.out = w
		}
	}
}

// WithQoS sets the QoS requested for every subscription.
func WithQoS(qos byte) Option {
	return func(l *TelemetryLogger) { l.qos = qos }
}

// WithEventBus publishes lifecycle and message outcomes on bus.
func WithEventBus(bus eventbus.EventBus[events.Event]) Option {
	return func(l *TelemetryLogger) { l.bus = bus }
}

// New creates a TelemetryLogger owning transport. The topic list is copied.
func New(transport Transport, topics model.TopicList, log logger.Logger, opts ...Option) (*TelemetryLogger, error) {
	if transport == nil {
		return nil, errors.New("telemetry: transport is required")
	}
	if err := topics.Validate(); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	l := &TelemetryLogger{
		transport: transport,
		topics:    append(model.TopicList(nil), topics...),
		out:       os.Stdout,
		log:       log,
		now:       time.Now,
		state:     model.Disconnected,
	}
	for _, o := range opts {
		o(l)
	}
	if l.qos > 2 {
		return nil, fmt.Errorf("telemetry: invalid qos %d", l.qos)
	}
	return l, nil
}

// Topics returns a copy of the subscribed topic list.
func (l *TelemetryLogger) Topics() model.TopicList {
	return append(model.TopicList(nil), l.topics...)
}

// State returns the connection state mirrored from the latest event.
func (l *TelemetryLogger) State() model.ConnectionState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Start connects the transport and dispatches its events until ctx is done
// or the event channel is closed. Connecting runs alongside the dispatch
// loop so that transient connect failures reach OnError. The returned error
// is non-nil only when the transport gives up on the connection.
func (l *TelemetryLogger) Start(ctx context.Context) error {
	connErr := make(chan error, 1)
	go func() { connErr <- l.transport.Connect(ctx) }()

	evs := l.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-connErr:
			connErr = nil
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			l.log.Errorw("broker connection failed", err, nil)
			return fmt.Errorf("%w: %w", ErrConnection, err)
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			l.dispatch(ev)
		}
	}
}

func (l *TelemetryLogger) dispatch(ev Event) {
	switch ev.Kind {
	case EventConnected:
		_ = l.OnConnected()
	case EventDisconnected:
		l.OnDisconnected(ev.Err)
	case EventReconnecting:
		l.OnReconnecting()
	case EventError:
		l.OnError(ev.Err)
	case EventMessage:
		_ = l.OnMessage(ev.Topic, ev.Payload)
	default:
		l.log.Warnf("ignoring unknown transport event %d", ev.Kind)
	}
}

// OnConnected marks the logger connected and subscribes every topic in list
// order. Each result is logged on its own; a failure never prevents the
// remaining subscriptions. The joined SubscriptionErrors are returned.
func (l *TelemetryLogger) OnConnected() error {
	l.setState(model.Connected)
	l.log.Infof("connected to MQTT broker")
	l.publish(events.ConnectionEvent{State: model.Connected, Time: l.now()})

	var errs []error
	for _, topic := range l.topics {
		if err := l.transport.Subscribe(topic, l.qos); err != nil {
			serr := &SubscriptionError{Topic: topic, Err: err}
			l.log.Errorw("subscribe failed", err, map[string]any{"topic": topic})
			l.publish(events.SubscriptionEvent{Topic: topic, Err: serr, Time: l.now()})
			errs = append(errs, serr)
			continue
		}
		l.log.Infow("subscribed", map[string]any{"topic": topic, "qos": l.qos})
		l.publish(events.SubscriptionEvent{Topic: topic, Time: l.now()})
	}
	return errors.Join(errs...)
}

// OnMessage decodes payload and writes the reading block. Undecodable
// payloads are logged and dropped and a *DecodeError is returned.
func (l *TelemetryLogger) OnMessage(topic string, payload []byte) error {
	r, err := model.DecodeReading(payload)
	if err != nil {
		derr := &DecodeError{Topic: topic, Err: err}
		l.log.Errorw("dropping message", err, map[string]any{"topic": topic, "bytes": len(payload)})
		l.publish(events.DecodeFailureEvent{Topic: topic, Err: derr, Time: l.now()})
		return derr
	}
	if err := WriteReading(l.out, topic, r); err != nil {
		l.log.Errorw("write reading", err, map[string]any{"topic": topic})
		return err
	}
	l.log.Debugw("reading", map[string]any{"topic": topic, "value": r.Value.String(), "unit": r.Unit})
	l.publish(events.ReadingEvent{Topic: topic, Reading: r, Time: l.now()})
	return nil
}

// OnError logs a transport error. State and subscriptions are unchanged.
func (l *TelemetryLogger) OnError(err error) {
	if err == nil {
		return
	}
	l.log.Errorw("mqtt error", err, nil)
	l.publish(events.TransportErrorEvent{Err: err, Time: l.now()})
}

// OnDisconnected marks the logger disconnected. Subscriptions are restored by
// the next OnConnected.
func (l *TelemetryLogger) OnDisconnected(cause error) {
	l.setState(model.Disconnected)
	if cause != nil {
		l.log.Warnf("disconnected from MQTT broker: %v", cause)
	} else {
		l.log.Warnf("disconnected from MQTT broker")
	}
	l.publish(events.ConnectionEvent{State: model.Disconnected, Err: cause, Time: l.now()})
}

// OnReconnecting logs a reconnect attempt by the transport.
func (l *TelemetryLogger) OnReconnecting() {
	l.log.Infof("reconnecting to MQTT broker")
	l.publish(events.ReconnectingEvent{Time: l.now()})
}

func (l *TelemetryLogger) setState(s model.ConnectionState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *TelemetryLogger) publish(ev events.Event) {
	if l.bus != nil {
		l.bus.Publish(ev)
	}
}
