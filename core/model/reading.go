package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingValue is returned when a payload has no "value" field.
	ErrMissingValue = errors.New("missing value field")
	// ErrMissingUnit is returned when a payload has no "unit" field.
	ErrMissingUnit = errors.New("missing unit field")
)

// SensorReading is a single sample published by a sensor node.
//
// Value keeps the numeric literal exactly as it appeared on the wire so that
// printing it never rounds or re-encodes the number.
type SensorReading struct {
	Value json.Number `json:"value"`
	Unit  string      `json:"unit"`
}

// DecodeReading parses a JSON object carrying at least "value" and "unit".
// Extra fields are ignored.
func DecodeReading(payload []byte) (SensorReading, error) {
	var raw struct {
		Value *json.Number `json:"value"`
		Unit  *string      `json:"unit"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return SensorReading{}, fmt.Errorf("decode reading: %w", err)
	}
	if raw.Value == nil {
		return SensorReading{}, ErrMissingValue
	}
	if raw.Unit == nil {
		return SensorReading{}, ErrMissingUnit
	}
	return SensorReading{Value: *raw.Value, Unit: *raw.Unit}, nil
}
