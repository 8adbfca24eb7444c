package mqtt

import (
	"errors"

	"github.com/eclipse/paho.mqtt.golang/packets"
)

var (
	// ErrInvalidQoS is returned when a QoS above 2 is requested.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
	// ErrSubscribeTimeout is returned when no SUBACK arrives in time.
	ErrSubscribeTimeout = errors.New("mqtt: subscribe timed out")
	// ErrSubscribeRejected is returned when the broker answers a
	// subscription with the failure return code.
	ErrSubscribeRejected = errors.New("mqtt: subscription rejected by broker")
	// ErrConnectTimeout is returned when the connect token does not complete.
	ErrConnectTimeout = errors.New("mqtt: connect timed out")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("mqtt: transport closed")
)

// subackFailure is the SUBACK return code for a refused subscription.
const subackFailure = 0x80

// Retryable reports whether a connection error may succeed on a later
// attempt. Broker refusals caused by the client's own identity or protocol
// are permanent.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, ErrClosed) {
		return false
	}
	for _, fatal := range []error{
		packets.ErrorRefusedBadProtocolVersion,
		packets.ErrorRefusedIDRejected,
		packets.ErrorRefusedBadUsernameOrPassword,
		packets.ErrorRefusedNotAuthorised,
	} {
		if errors.Is(err, fatal) {
			return false
		}
	}
	return true
}
