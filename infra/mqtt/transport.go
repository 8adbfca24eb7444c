package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/sensorlog/core/telemetry"
	"github.com/kilianp07/sensorlog/infra/logger"
)

// pahoClient is the subset of paho.Client used by the transport.
type pahoClient interface {
	IsConnected() bool
	IsConnectionOpen() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoTransport implements telemetry.Transport on top of Eclipse Paho.
// Paho callbacks run on Paho's goroutines and only enqueue events. Messages
// keep Paho's delivery order. Paho starts the connect and connection lost
// handlers on separate goroutines, so they are serialized and checked
// against the live connection: Connected is only emitted while the
// connection is open and Disconnected only while it is not. After a fast
// flap the last lifecycle event therefore matches the real state, although
// an intermediate Connected or Disconnected may be skipped.
type PahoTransport struct {
	cli              pahoClient
	log              logger.Logger
	events           chan telemetry.Event
	lifecycle        sync.Mutex
	done             chan struct{}
	closeOnce        sync.Once
	connectTimeout   time.Duration
	subscribeTimeout time.Duration
	retryInterval    time.Duration
}

// NewPahoTransport creates the Paho client for cfg. No connection is made
// until Connect.
func NewPahoTransport(cfg Config) (*PahoTransport, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	t := &PahoTransport{
		log:              logger.New("mqtt_transport"),
		events:           make(chan telemetry.Event, cfg.EventBuffer),
		done:             make(chan struct{}),
		connectTimeout:   time.Duration(cfg.ConnectTimeoutSeconds) * time.Second,
		subscribeTimeout: time.Duration(cfg.SubscribeTimeoutSeconds) * time.Second,
		retryInterval:    time.Duration(cfg.RetryIntervalSeconds) * time.Second,
	}
	opts.SetOnConnectHandler(func(paho.Client) { t.onConnect() })
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) { t.onConnectionLost(err) })
	opts.SetReconnectingHandler(func(paho.Client, *paho.ClientOptions) {
		t.emit(telemetry.Event{Kind: telemetry.EventReconnecting})
	})
	// Messages queued in a persistent session can arrive before the
	// subscriptions are restored.
	opts.SetDefaultPublishHandler(t.onMessage)
	t.cli = newMQTTClient(opts)
	t.log.Debugw("mqtt transport created", map[string]any{"broker": cfg.Broker, "client_id": cfg.ClientID})
	return t, nil
}

// Events returns the channel carrying transport notifications.
func (t *PahoTransport) Events() <-chan telemetry.Event { return t.events }

// Connect attempts the initial connection until it succeeds, ctx is done,
// or the broker refuses the client for a reason that will not change.
// Transient failures are reported as EventError and retried after the
// configured interval.
func (t *PahoTransport) Connect(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := t.connectOnce(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !Retryable(err) {
			return err
		}
		t.log.Warnf("connect attempt %d failed: %v", attempt, err)
		t.emit(telemetry.Event{Kind: telemetry.EventError, Err: fmt.Errorf("connect attempt %d: %w", attempt, err)})
		timer := time.NewTimer(t.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-t.done:
			timer.Stop()
			return ErrClosed
		case <-timer.C:
		}
	}
}

func (t *PahoTransport) connectOnce(ctx context.Context) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	token := t.cli.Connect()
	timer := time.NewTimer(t.connectTimeout + time.Second)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrConnectTimeout
	}
}

// Subscribe subscribes topic and waits for the SUBACK.
func (t *PahoTransport) Subscribe(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	token := t.cli.Subscribe(topic, qos, t.onMessage)
	if !token.WaitTimeout(t.subscribeTimeout) {
		return fmt.Errorf("%w after %v", ErrSubscribeTimeout, t.subscribeTimeout)
	}
	if err := token.Error(); err != nil {
		return err
	}
	if st, ok := token.(*paho.SubscribeToken); ok {
		if rc, ok := st.Result()[topic]; ok && rc == subackFailure {
			return ErrSubscribeRejected
		}
	}
	return nil
}

// Close disconnects from the broker. Pending event sends are abandoned.
func (t *PahoTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		if t.cli != nil && t.cli.IsConnected() {
			t.cli.Disconnect(disconnectQuiesceMS)
		}
	})
	return nil
}

func (t *PahoTransport) onConnect() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()
	if !t.cli.IsConnectionOpen() {
		// Lost again before this handler ran; the lost handler reports it.
		t.log.Debugf("skipping stale connect notification")
		return
	}
	t.emit(telemetry.Event{Kind: telemetry.EventConnected})
}

func (t *PahoTransport) onConnectionLost(err error) {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()
	t.emit(telemetry.Event{Kind: telemetry.EventError, Err: fmt.Errorf("connection lost: %w", err)})
	if t.cli.IsConnectionOpen() {
		// Paho already reconnected; the connect handler reports it.
		t.log.Debugf("skipping stale disconnect notification")
		return
	}
	t.emit(telemetry.Event{Kind: telemetry.EventDisconnected, Err: err})
}

func (t *PahoTransport) onMessage(_ paho.Client, msg paho.Message) {
	t.emit(telemetry.Event{Kind: telemetry.EventMessage, Topic: msg.Topic(), Payload: msg.Payload()})
}

// emit blocks until the event is consumed or the transport is closed, so
// no notification is silently dropped.
func (t *PahoTransport) emit(ev telemetry.Event) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}
