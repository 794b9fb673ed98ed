package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJob struct {
	AttemptID string
	Username  string
	Groups    []string
	Database  uint64
	CreatedAt time.Time
}

func TestDefaultParseMessage_RoundTrip(t *testing.T) {
	input := testJob{
		AttemptID: "attempt-1",
		Username:  "Alpha",
		Groups:    []string{"Members", "Regulars"},
		Database:  42,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	message, err := DefaultParseToMessage(input)
	require.NoError(t, err)
	require.Contains(t, message, "data")

	result, err := DefaultParseFromMessage[testJob](message)
	require.NoError(t, err)
	assert.Equal(t, input.AttemptID, result.AttemptID)
	assert.Equal(t, input.Groups, result.Groups)
	assert.Equal(t, input.Database, result.Database)
	assert.True(t, input.CreatedAt.Equal(result.CreatedAt))
}

func TestDefaultParseToMessage_Pointer(t *testing.T) {
	_, err := DefaultParseToMessage(&testJob{})
	assert.ErrorIs(t, err, ErrPointerType)
}

func TestDefaultParseFromMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		errPart string
	}{
		{name: "empty map", input: map[string]any{}},
		{name: "nil map", input: nil},
		{name: "invalid base64", input: map[string]any{"data": "invalid base64"}, errPart: "base64 decode error"},
		{name: "missing data field", input: map[string]any{"wrong_field": "x"}, errPart: "data field not found"},
		{name: "invalid data type", input: map[string]any{"data": 123}, errPart: "invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DefaultParseFromMessage[testJob](tt.input)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, result.Username)
		})
	}

	t.Run("pointer type error", func(t *testing.T) {
		_, err := DefaultParseFromMessage[*testJob](map[string]any{"data": "x"})
		assert.ErrorIs(t, err, ErrPointerType)
	})
}
