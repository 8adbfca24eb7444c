package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReading(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		value   string
		unit    string
		wantErr error
	}{
		{name: "float", payload: `{"value": 23.5, "unit": "C"}`, value: "23.5", unit: "C"},
		{name: "keeps literal", payload: `{"value": 23.50, "unit": "%"}`, value: "23.50", unit: "%"},
		{name: "exponent", payload: `{"value": 1e3, "unit": "Pa"}`, value: "1e3", unit: "Pa"},
		{name: "extra fields", payload: `{"value": 512, "unit": "lx", "sensor": "ldr"}`, value: "512", unit: "lx"},
		{name: "quoted number", payload: `{"value": "23.5", "unit": "C"}`, value: "23.5", unit: "C"},
		{name: "empty unit", payload: `{"value": 0, "unit": ""}`, value: "0", unit: ""},
		{name: "missing value", payload: `{"unit": "C"}`, wantErr: ErrMissingValue},
		{name: "missing unit", payload: `{"value": 1}`, wantErr: ErrMissingUnit},
		{name: "null object", payload: `null`, wantErr: ErrMissingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeReading([]byte(tt.payload))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, r.Value.String())
			assert.Equal(t, tt.unit, r.Unit)
		})
	}
}

func TestDecodeReadingMalformed(t *testing.T) {
	for _, p := range []string{``, `{`, `not json`, `[1,2]`, `{"value": true, "unit": "C"}`, `{"value": "warm", "unit": "C"}`, `{"value": 1, "unit": 5}`, `{"value": 1, "unit": "C"} trailing`} {
		if _, err := DecodeReading([]byte(p)); err == nil {
			t.Errorf("expected error for %q", p)
		} else if errors.Is(err, ErrMissingValue) || errors.Is(err, ErrMissingUnit) {
			t.Errorf("unexpected missing-field error for %q: %v", p, err)
		}
	}
}
