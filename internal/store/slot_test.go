package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

func newTestSlot(t *testing.T) (*Slot, string) {
	t.Helper()
	dbPath := setupTestDB(t)
	db, err := InitDBWithPath(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSlot(db), dbPath
}

func TestSlot_ReadAbsentKey(t *testing.T) {
	slot, _ := newTestSlot(t)

	raw, ok, err := slot.Read(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, raw)
}

func TestSlot_WriteReadRemove(t *testing.T) {
	slot, _ := newTestSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Write(ctx, "k", []byte(`[1]`)))
	require.NoError(t, slot.Write(ctx, "k", []byte(`[2]`)))

	raw, ok, err := slot.Read(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[2]`, string(raw))

	keys, err := slot.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"k"}, keys)

	require.NoError(t, slot.Remove(ctx, "k"))
	require.NoError(t, slot.Remove(ctx, "k"))

	_, ok, err = slot.Read(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSlot_BacksFaultStoreAcrossReopen(t *testing.T) {
	slot, dbPath := newTestSlot(t)
	quiet := faultlog.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s := faultlog.New(slot, quiet)
	first := faultlog.Record{Timestamp: "2024-05-01T10:00:00.000Z", Message: "one", Kind: faultlog.KindRuntimeException}
	second := faultlog.Record{Timestamp: "2024-05-01T10:00:01.000Z", Message: "two", Kind: faultlog.KindRejectedOperation}
	s.Append(first)
	s.Append(second)

	db, err := InitDBWithPath(dbPath)
	require.NoError(t, err)
	defer db.Close()

	reopened := faultlog.New(NewSlot(db), quiet)
	require.Equal(t, []faultlog.Record{second, first}, reopened.Load())

	reopened.Clear()
	require.Empty(t, s.Load())
}

func TestSlot_CanceledContext(t *testing.T) {
	slot, _ := newTestSlot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, slot.Write(ctx, "k", []byte("[]")))
}
