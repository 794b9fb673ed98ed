package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIdentity(t *testing.T) {
	tests := []struct {
		name     string
		initial  map[string]string
		patch    Identity
		wantErr  error
		expected map[string]string
	}{
		{
			name:    "write to empty session",
			initial: nil,
			patch:   Identity{Username: "Alpha", PrimaryAccountID: "100"},
			expected: map[string]string{
				KeyUsername:         "Alpha",
				KeyPrimaryAccountID: "100",
			},
		},
		{
			name:    "append later step",
			initial: map[string]string{KeyUsername: "Alpha", KeyPrimaryAccountID: "100"},
			patch:   Identity{SecondaryAccountID: "7", SecondaryAccountEmail: "alpha@example.com"},
			expected: map[string]string{
				KeyUsername:              "Alpha",
				KeyPrimaryAccountID:      "100",
				KeySecondaryAccountID:    "7",
				KeySecondaryAccountEmail: "alpha@example.com",
			},
		},
		{
			name:     "identical retry is a no-op",
			initial:  map[string]string{KeySecondaryAccountID: "7"},
			patch:    Identity{SecondaryAccountID: "7"},
			expected: map[string]string{KeySecondaryAccountID: "7"},
		},
		{
			name:     "conflicting write is rejected as a whole",
			initial:  map[string]string{KeyPrimaryAccountID: "100"},
			patch:    Identity{PrimaryAccountID: "200", Username: "Bravo"},
			wantErr:  ErrIdentityConflict,
			expected: map[string]string{KeyPrimaryAccountID: "100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionImpl{data: tt.initial}
			err := MergeIdentity(s, tt.patch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, s.data)
		})
	}
}

func TestLoadIdentity(t *testing.T) {
	s := &sessionImpl{data: map[string]string{
		KeyAttemptID:          "attempt",
		KeyUsername:           "Alpha",
		KeyTertiaryDatabaseID: "42",
		KeyTertiaryClientIP:   "10.0.0.1",
	}}
	identity := LoadIdentity(s)
	assert.Equal(t, Identity{
		AttemptID:          "attempt",
		Username:           "Alpha",
		TertiaryDatabaseID: "42",
		TertiaryClientIP:   "10.0.0.1",
	}, identity)
}

func TestEnsureAttemptID(t *testing.T) {
	s := &sessionImpl{}
	first := EnsureAttemptID(s)
	require.NotEmpty(t, first)
	assert.Equal(t, first, EnsureAttemptID(s), "attempt id should be stable within a session")
}
