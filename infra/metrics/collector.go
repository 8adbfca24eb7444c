package metrics

import (
	"context"

	"github.com/kilianp07/sensorlog/core/events"
	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus[events.Event], rec Recorder) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || rec == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(rec, ev)
			}
		}
	}()
	return done
}

func record(rec Recorder, ev events.Event) {
	switch e := ev.(type) {
	case events.ConnectionEvent:
		rec.RecordConnection(e.State == model.Connected)
	case events.ReconnectingEvent:
		rec.RecordReconnect()
	case events.TransportErrorEvent:
		rec.RecordTransportError()
	case events.SubscriptionEvent:
		rec.RecordSubscription(e.Topic, e.Err == nil)
	case events.ReadingEvent:
		rec.RecordMessage(e.Topic)
	case events.DecodeFailureEvent:
		rec.RecordDecodeError(e.Topic)
	}
}
