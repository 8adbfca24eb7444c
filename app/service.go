package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kilianp07/sensorlog/config"
	"github.com/kilianp07/sensorlog/core/events"
	"github.com/kilianp07/sensorlog/core/telemetry"
	"github.com/kilianp07/sensorlog/infra/logger"
	"github.com/kilianp07/sensorlog/infra/metrics"
	"github.com/kilianp07/sensorlog/infra/mqtt"
	"github.com/kilianp07/sensorlog/internal/eventbus"
)

// Service wires the MQTT transport, the telemetry logger and the optional
// Prometheus endpoint.
type Service struct {
	Logger    *telemetry.TelemetryLogger
	transport telemetry.Transport
	bus       *eventbus.Bus[events.Event]
	rec       metrics.Recorder
	registry  *prometheus.Registry
	log       logger.Logger
	cfg       metrics.Config
}

// New creates a Service connected to the broker described by cfg. Readings
// are written to out.
func New(cfg *config.Config, out io.Writer) (*Service, error) {
	tr, err := mqtt.NewPahoTransport(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt transport: %w", err)
	}
	return NewWithTransport(cfg, tr, out)
}

// NewWithTransport creates a Service on an existing transport.
func NewWithTransport(cfg *config.Config, tr telemetry.Transport, out io.Writer) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.New[events.Event]()

	var rec metrics.Recorder = metrics.NopRecorder{}
	var reg *prometheus.Registry
	if cfg.Metrics.PrometheusEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sink, err := metrics.NewPromSinkWithRegistry(reg)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		rec = sink
	}

	tl, err := telemetry.New(tr, cfg.Topics, logger.New("telemetry"),
		telemetry.WithOutput(out),
		telemetry.WithQoS(cfg.MQTT.QoS),
		telemetry.WithEventBus(bus),
	)
	if err != nil {
		return nil, err
	}
	return &Service{
		Logger:    tl,
		transport: tr,
		bus:       bus,
		rec:       rec,
		registry:  reg,
		log:       logg,
		cfg:       cfg.Metrics,
	}, nil
}

// Run connects to the broker and prints readings until ctx is cancelled or
// the broker refuses the connection.
func (s *Service) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := metrics.StartEventCollector(runCtx, s.bus, s.rec)
	if s.registry != nil {
		go func() {
			if err := metrics.StartPromServer(runCtx, s.cfg.PrometheusAddr, s.registry); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infow("telemetry logger starting", map[string]any{"topics": len(s.Logger.Topics())})

	err := s.Logger.Start(runCtx)
	// Closing the bus lets the collector drain what was already published.
	s.bus.Close()
	<-done
	if err != nil {
		return err
	}
	s.log.Infof("telemetry logger stopped")
	return nil
}

// Close disconnects from the broker.
func (s *Service) Close() error {
	s.bus.Close()
	return s.transport.Close()
}
