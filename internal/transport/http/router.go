package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dotcommander/faultlog/internal/metrics"
	"github.com/dotcommander/faultlog/internal/report"
	"github.com/dotcommander/faultlog/pkg/faultlog"
)

const (
	eventRecordAdded    = "record_added"
	eventRecordsCleared = "records_cleared"

	defaultKeepAlive = 15 * time.Second
	streamBuffer     = 64
)

// Deps is what the inspector needs. Either Store or Capturer must be set; when
// both are, the Capturer's store wins.
type Deps struct {
	Store    *faultlog.Store
	Capturer *faultlog.Capturer
	Logger   *slog.Logger
	// Location record times are shown in on export. Nil means time.Local.
	Location *time.Location
	// Now names export files. Nil means time.Now.
	Now func() time.Time
	// KeepAlive is the SSE comment interval. Zero means 15s.
	KeepAlive time.Duration
}

type faultsResponse struct {
	Count   int               `json:"count"`
	Records []faultlog.Record `json:"records"`
}

type runtimeRequest struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Error    string `json:"error"`
	Stack    string `json:"stack"`
}

type rejectionRequest struct {
	Reason any `json:"reason"`
}

type boundaryRequest struct {
	Message        string `json:"message"`
	Stack          string `json:"stack"`
	ComponentStack string `json:"component_stack"`
}

// reportedError is an error described by a client payload.
type reportedError struct {
	msg   string
	stack string
}

func (e reportedError) Error() string      { return e.msg }
func (e reportedError) StackTrace() string { return e.stack }

// NewRouter returns the inspector handler: health and metrics endpoints, the
// /api/faults listing, clear, export and SSE stream, and the capture hooks.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	keepAlive := deps.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	capturer := deps.Capturer
	if capturer == nil {
		capturer = faultlog.NewCapturer(deps.Store)
	}
	store := capturer.Store()
	metrics.Init()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware())
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoverMiddleware(capturer, logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/faults", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			records := store.Load()
			writeJSON(w, http.StatusOK, faultsResponse{Count: len(records), Records: records})
		})

		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
			if !confirmed {
				http.Error(w, "add ?confirm=true to clear all fault records", http.StatusBadRequest)
				return
			}
			store.Clear()
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/export", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(now())))
			if err := report.Write(w, store.Load(), report.Options{Location: deps.Location}); err != nil {
				logger.Warn("export write failed", "error", err)
			}
		})

		r.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			streamFaults(w, r, store, logger, keepAlive)
		})

		r.Post("/runtime", func(w http.ResponseWriter, r *http.Request) {
			var req runtimeRequest
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			ev := faultlog.RuntimeEvent{
				Message:  req.Message,
				Filename: req.Filename,
				Line:     req.Line,
				Column:   req.Column,
				Stack:    req.Stack,
			}
			if req.Error != "" {
				ev.Err = reportedError{msg: req.Error, stack: req.Stack}
			}
			writeJSON(w, http.StatusCreated, capturer.RuntimeException(ev))
		})

		r.Post("/rejection", func(w http.ResponseWriter, r *http.Request) {
			var req rejectionRequest
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusCreated, capturer.RejectedOperation(req.Reason))
		})

		r.Post("/boundary", func(w http.ResponseWriter, r *http.Request) {
			var req boundaryRequest
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			var err error
			if req.Message != "" || req.Stack != "" {
				err = reportedError{msg: req.Message, stack: req.Stack}
			}
			rec := capturer.BoundaryException(err, faultlog.ComponentInfo{ComponentStack: req.ComponentStack})
			writeJSON(w, http.StatusCreated, rec)
		})
	})

	return r
}

// streamFaults forwards store notifications as server-sent events until the
// client goes away. Callbacks never block the store: when the client falls
// behind, events are dropped and logged.
func streamFaults(w http.ResponseWriter, r *http.Request, store *faultlog.Store, logger *slog.Logger, keepAlive time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	type sseEvent struct {
		name string
		data []byte
	}
	events := make(chan sseEvent, streamBuffer)
	push := func(ev sseEvent) {
		select {
		case events <- ev:
		default:
			logger.Warn("sse client too slow, dropping event", "event", ev.name)
		}
	}

	unsubscribe := store.Subscribe(
		func(rec faultlog.Record) {
			data, err := json.Marshal(rec)
			if err != nil {
				logger.Warn("sse encode failed", "error", err)
				return
			}
			push(sseEvent{name: eventRecordAdded, data: data})
		},
		func() { push(sseEvent{name: eventRecordsCleared, data: []byte("{}")}) },
	)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), ev.name, ev.data); err != nil {
				logger.Debug("sse write failed", "error", err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON value into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain exactly one JSON value")
	}
	return nil
}
