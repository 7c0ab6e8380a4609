package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

func sampleRecords() []faultlog.Record {
	return []faultlog.Record{
		{
			Timestamp:      "2024-05-01T14:05:09.000Z",
			Message:        "Test ErrorBoundary error",
			Kind:           faultlog.KindBoundaryException,
			Source:         faultlog.BoundarySource,
			ErrorDetail:    "Test ErrorBoundary error",
			StackTrace:     "goroutine 1 [running]:\nmain.render()\n",
			ComponentTrace: "    in Widget\n    in App",
		},
		{
			Timestamp:   "2024-05-01T10:00:00.000Z",
			Message:     "Test promise error",
			Kind:        faultlog.KindRejectedOperation,
			ErrorDetail: "Test promise error",
		},
		{
			Timestamp: "2024-05-01T09:30:00.000Z",
			Message:   "index out of range",
			Kind:      faultlog.KindRuntimeException,
			Source:    "app/render.go",
			Line:      42,
			Column:    7,
		},
	}
}

func TestRenderGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	out := Render(sampleRecords(), Options{Location: time.UTC})
	g.Assert(t, "export", []byte(out))
}

func TestRenderEmpty(t *testing.T) {
	require.Empty(t, Render(nil, Options{}))
}

func TestFormatTime(t *testing.T) {
	r := faultlog.Record{Timestamp: "2024-05-01T00:30:00.000Z"}

	require.Equal(t, "5/1/2024, 12:30:00 AM", FormatTime(r, Options{Location: time.UTC}))

	tokyo := time.FixedZone("JST", 9*60*60)
	require.Equal(t, "5/1/2024, 9:30:00 AM", FormatTime(r, Options{Location: tokyo}))

	require.Equal(t, "yesterday", FormatTime(faultlog.Record{Timestamp: "yesterday"}, Options{}))
}

func TestPosition(t *testing.T) {
	require.Equal(t, "", Position(faultlog.Record{Line: 3}))
	require.Equal(t, "ErrorBoundary", Position(faultlog.Record{Source: "ErrorBoundary"}))
	require.Equal(t, "main.go:12", Position(faultlog.Record{Source: "main.go", Line: 12}))
	require.Equal(t, "main.go:12:3", Position(faultlog.Record{Source: "main.go", Line: 12, Column: 3}))
}

func TestWriteAndFileName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRecords()[1:2], Options{Location: time.UTC}))
	require.Equal(t, "=== Fault #1 ===\n"+
		"Type: Rejected Operation\n"+
		"Time: 5/1/2024, 10:00:00 AM\n"+
		"Message: Test promise error\n"+
		"Error: Test promise error\n", buf.String())

	require.Equal(t, "fault_logs_2024-05-01.txt", FileName(time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)))
}
