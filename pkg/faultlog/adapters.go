package faultlog

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Fallback messages and the fixed boundary source.
const (
	DefaultRuntimeMessage   = "Unknown error"
	DefaultRejectionMessage = "Unhandled promise rejection"
	DefaultBoundaryMessage  = "ErrorBoundary caught an error"
	BoundarySource          = "ErrorBoundary"
)

// RuntimeEvent describes an uncaught exception as the host reports it.
// Zero values mean "not reported".
type RuntimeEvent struct {
	Message  string
	Filename string
	Line     int
	Column   int
	Err      error
	// Stack is the call stack captured by the host. When empty, the stack of
	// Err is used if Err carries one.
	Stack string
}

// ComponentInfo is the ancestry reported by a fault boundary.
type ComponentInfo struct {
	ComponentStack string
}

// PanicError carries a recovered panic value and the stack at the point of
// recovery.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string { return "panic: " + stringOf(e.Value) }

// StackTrace returns the captured goroutine stack.
func (e *PanicError) StackTrace() string { return e.Stack }

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// stackTracer is implemented by errors and rejection reasons that carry their
// own stack text.
type stackTracer interface {
	StackTrace() string
}

type messager interface {
	Message() string
}

// FromRuntime builds a runtime-exception record.
func FromRuntime(ev RuntimeEvent, now time.Time) Record {
	r := Record{
		Timestamp: FormatTimestamp(now),
		Message:   normalizeMessage(ev.Message, DefaultRuntimeMessage),
		Kind:      KindRuntimeException,
		Source:    ev.Filename,
		Line:      positive(ev.Line),
		Column:    positive(ev.Column),
	}
	if ev.Err != nil {
		r.ErrorDetail = safeString(ev.Err.Error)
	}
	r.StackTrace = ev.Stack
	if r.StackTrace == "" {
		r.StackTrace = stackOf(ev.Err)
	}
	return r
}

// FromRejection builds a rejected-operation record from a rejection reason of
// any shape. The message comes from the reason's own message, then its string
// form, then DefaultRejectionMessage. Position fields are never set.
func FromRejection(reason any, now time.Time) Record {
	msg := messageOf(reason)
	if msg == "" {
		msg = stringOf(reason)
	}
	r := Record{
		Timestamp: FormatTimestamp(now),
		Message:   normalizeMessage(msg, DefaultRejectionMessage),
		Kind:      KindRejectedOperation,
	}
	if reason != nil {
		r.ErrorDetail = stringOf(reason)
	}
	r.StackTrace = stackOf(reason)
	return r
}

// FromBoundary builds a boundary-exception record. Source is always
// BoundarySource; ComponentTrace is set only when info carries a non-blank stack.
func FromBoundary(err error, info ComponentInfo, now time.Time) Record {
	var msg string
	if err != nil {
		msg = safeString(err.Error)
	}
	r := Record{
		Timestamp:   FormatTimestamp(now),
		Message:     normalizeMessage(msg, DefaultBoundaryMessage),
		Kind:        KindBoundaryException,
		Source:      BoundarySource,
		ErrorDetail: msg,
		StackTrace:  stackOf(err),
	}
	if strings.TrimSpace(info.ComponentStack) != "" {
		r.ComponentTrace = info.ComponentStack
	}
	return r
}

func normalizeMessage(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return norm.NFC.String(msg)
}

func positive(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// messageOf extracts the message a reason reports about itself, if any.
func messageOf(reason any) string {
	switch v := reason.(type) {
	case nil:
		return ""
	case error:
		return safeString(v.Error)
	case messager:
		return safeString(v.Message)
	case map[string]any:
		m, _ := v["message"].(string)
		return m
	case map[string]string:
		return v["message"]
	}
	return ""
}

// stringOf renders any value without letting a misbehaving Error or String
// method escape.
func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case error:
		return safeString(x.Error)
	case fmt.Stringer:
		return safeString(x.String)
	}
	return safeString(func() string { return fmt.Sprint(v) })
}

func stackOf(v any) string {
	st, ok := v.(stackTracer)
	if !ok {
		return ""
	}
	return safeString(st.StackTrace)
}

func safeString(fn func() string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return fn()
}
