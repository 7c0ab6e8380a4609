package metrics

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

func TestObserverCountsStoreActivity(t *testing.T) {
	Init()
	kind := string(faultlog.KindRejectedOperation)
	beforeCaptured := testutil.ToFloat64(faultsCapturedCounter.WithLabelValues(kind))
	beforeCleared := testutil.ToFloat64(recordsClearedCounter)
	beforePanics := testutil.ToFloat64(subscriberPanicsCounter)

	s := faultlog.New(nil,
		faultlog.WithObserver(Observer{}),
		faultlog.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Subscribe(func(faultlog.Record) { panic("bad subscriber") }, nil)

	faultlog.NewCapturer(s).RejectedOperation("timeout")
	s.Clear()

	require.Equal(t, beforeCaptured+1, testutil.ToFloat64(faultsCapturedCounter.WithLabelValues(kind)))
	require.Equal(t, beforeCleared+1, testutil.ToFloat64(recordsClearedCounter))
	require.Equal(t, beforePanics+1, testutil.ToFloat64(subscriberPanicsCounter))
}

func TestInitIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Init()
		Init()
	})

	before := testutil.ToFloat64(storeErrorsCounter.WithLabelValues("load"))
	IncStoreError("load")
	require.Equal(t, before+1, testutil.ToFloat64(storeErrorsCounter.WithLabelValues("load")))
}
