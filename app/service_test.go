package app

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sensorlog/config"
	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/core/telemetry"
)

type scriptedTransport struct {
	mu         sync.Mutex
	events     chan telemetry.Event
	connectErr error
	subscribed []string
	closed     bool
}

func (s *scriptedTransport) Connect(context.Context) error { return s.connectErr }

func (s *scriptedTransport) Subscribe(topic string, _ byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = append(s.subscribed, topic)
	return nil
}

func (s *scriptedTransport) Events() <-chan telemetry.Event { return s.events }

func (s *scriptedTransport) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func testConfig(t *testing.T, prom bool) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Metrics.PrometheusEnabled = prom
	cfg.Metrics.PrometheusAddr = "127.0.0.1:0"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceRunRecordsMetrics(t *testing.T) {
	tr := &scriptedTransport{events: make(chan telemetry.Event, 8)}
	tr.events <- telemetry.Event{Kind: telemetry.EventConnected}
	tr.events <- telemetry.Event{Kind: telemetry.EventMessage, Topic: model.TopicTemperature, Payload: []byte(`{"value": 23.5, "unit": "C"}`)}
	tr.events <- telemetry.Event{Kind: telemetry.EventMessage, Topic: model.TopicLight, Payload: []byte(`{`)}
	close(tr.events)

	var out bytes.Buffer
	svc, err := NewWithTransport(testConfig(t, true), tr, &out)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Run(ctx))
	require.NoError(t, svc.Close())

	assert.Contains(t, out.String(), "收到主题 home/sensor/temperature 的消息:")
	assert.Len(t, tr.subscribed, len(model.DefaultTopics()))
	assert.True(t, tr.closed)

	n, err := testutil.GatherAndCount(svc.registry, "sensorlog_subscriptions_total")
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultTopics()), n)
	n, err = testutil.GatherAndCount(svc.registry, "sensorlog_messages_total", "sensorlog_decode_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestServiceRunFatalConnect(t *testing.T) {
	tr := &scriptedTransport{events: make(chan telemetry.Event), connectErr: errors.New("not authorised")}
	svc, err := NewWithTransport(testConfig(t, false), tr, &bytes.Buffer{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = svc.Run(ctx)
	assert.ErrorIs(t, err, telemetry.ErrConnection)
	assert.Nil(t, svc.registry)
}

func TestServiceInvalidTopics(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Topics = model.TopicList{"a", "a"}
	_, err := NewWithTransport(cfg, &scriptedTransport{events: make(chan telemetry.Event)}, nil)
	assert.Error(t, err)
}
