package telemetry

import (
	"errors"
	"fmt"
)

// Error taxonomy. Use errors.Is to classify errors returned or logged by the
// telemetry logger.
var (
	// ErrConnection marks transport level failures.
	ErrConnection = errors.New("telemetry: connection error")
	// ErrSubscription marks a failed topic subscription.
	ErrSubscription = errors.New("telemetry: subscription error")
	// ErrDecode marks a payload that is not a valid sensor reading.
	ErrDecode = errors.New("telemetry: decode error")
)

// SubscriptionError reports the failure to subscribe a single topic.
type SubscriptionError struct {
	Topic string
	Err   error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscribe %s: %v", e.Topic, e.Err)
}

// Unwrap exposes both the taxonomy sentinel and the transport cause.
func (e *SubscriptionError) Unwrap() []error { return []error{ErrSubscription, e.Err} }

// DecodeError reports a dropped message.
type DecodeError struct {
	Topic string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode message on %s: %v", e.Topic, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
