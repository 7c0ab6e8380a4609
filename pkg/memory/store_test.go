package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRemove(t *testing.T) {
	ctx := context.Background()
	s := NewSlots()

	_, ok, err := s.Read(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "logs", []byte("[]")))
	v, ok, err := s.Read(ctx, "logs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(v))

	entry, ok := s.Get("logs")
	require.True(t, ok)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.False(t, entry.UpdatedAt.IsZero())

	// Overwrite value.
	require.NoError(t, s.Write(ctx, "logs", []byte(`[{"a":1}]`)))
	v, _, _ = s.Read(ctx, "logs")
	assert.Equal(t, `[{"a":1}]`, string(v))
	assert.Equal(t, len(`[{"a":1}]`), s.Used())

	require.NoError(t, s.Remove(ctx, "logs"))
	_, ok, _ = s.Read(ctx, "logs")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Used())

	// Removing an absent key is not an error.
	require.NoError(t, s.Remove(ctx, "logs"))
}

func TestReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewSlots()
	require.NoError(t, s.Write(ctx, "k", []byte("abc")))

	v, _, _ := s.Read(ctx, "k")
	v[0] = 'z'

	again, _, _ := s.Read(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := NewSlots(WithQuota(8))

	require.NoError(t, s.Write(ctx, "a", []byte("12345")))
	err := s.Write(ctx, "b", []byte("12345"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	// Replacing an existing value only counts the difference.
	require.NoError(t, s.Write(ctx, "a", []byte("12345678")))
	assert.Equal(t, 8, s.Used())
	assert.Equal(t, []string{"a"}, s.Keys())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSlots()
	require.ErrorIs(t, s.Write(ctx, "k", []byte("v")), context.Canceled)
	_, _, err := s.Read(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Remove(ctx, "k"), context.Canceled)
	assert.Equal(t, 0, s.Len())
}
