package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverableError_Is(t *testing.T) {
	corrupt := &SlotCorruptError{Key: "fault_records", Err: errors.New("bad json")}
	unavailable := &SlotUnavailableError{Backend: "sqlite", Target: "/tmp/x.db", Err: errors.New("denied")}

	assert.ErrorIs(t, corrupt, ErrSlotCorrupt)
	assert.ErrorIs(t, unavailable, ErrSlotUnavailable)
	assert.False(t, errors.Is(corrupt, ErrSlotUnavailable))
	assert.False(t, errors.Is(unavailable, ErrSlotCorrupt))
}

func TestRecoverableError_Fields(t *testing.T) {
	tests := []struct {
		name     string
		err      RecoverableError
		wantCode string
		wantKeys []string
	}{
		{
			name:     "SlotCorruptError",
			err:      &SlotCorruptError{Key: "fault_records", Offset: 12, Err: errors.New("bad json")},
			wantCode: "SLOT_CORRUPT",
			wantKeys: []string{"key", "offset"},
		},
		{
			name:     "SlotUnavailableError",
			err:      &SlotUnavailableError{Backend: "postgres", Target: "db", Err: errors.New("refused")},
			wantCode: "SLOT_UNAVAILABLE",
			wantKeys: []string{"backend", "target"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantCode, tc.err.ErrorCode())
			ctx := tc.err.Context()
			for _, k := range tc.wantKeys {
				require.Contains(t, ctx, k)
			}
			assert.NotEmpty(t, tc.err.SuggestedAction())
		})
	}
}

func TestSlotUnavailableError_Unwraps(t *testing.T) {
	cause := errors.New("refused")
	err := &SlotUnavailableError{Backend: "postgres", Err: cause}
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.SuggestedAction(), "database_url")
	require.Equal(t, "12", (&SlotCorruptError{Key: "k", Offset: 12, Err: cause}).Context()["offset"])
}
