// Package faultlog captures unhandled faults in a client application, keeps them
// in a durable record log and broadcasts additions and clears to observers.
//
// A Store owns the durable copy of the log. Capture adapters turn the three fault
// sources (recovered panics, unhandled background failures, boundary-caught panics)
// into Records and hand them to the store. Observers subscribe to the store and keep
// their own in-memory view.
package faultlog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which fault source produced a Record.
type Kind string

// The closed set of fault kinds.
const (
	KindRuntimeException  Kind = "runtime-exception"
	KindRejectedOperation Kind = "rejected-operation"
	KindBoundaryException Kind = "boundary-exception"
)

// Kinds lists every valid Kind in display order.
var Kinds = []Kind{KindRuntimeException, KindRejectedOperation, KindBoundaryException}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRuntimeException, KindRejectedOperation, KindBoundaryException:
		return true
	}
	return false
}

// Label is the human label used in exported reports.
func (k Kind) Label() string {
	switch k {
	case KindRuntimeException:
		return "Runtime Exception"
	case KindRejectedOperation:
		return "Rejected Operation"
	case KindBoundaryException:
		return "Boundary Exception"
	}
	return string(k)
}

// ShortLabel is the compact label used by panels.
func (k Kind) ShortLabel() string {
	switch k {
	case KindRuntimeException:
		return "Runtime"
	case KindRejectedOperation:
		return "Rejection"
	case KindBoundaryException:
		return "Boundary"
	}
	return string(k)
}

// ParseKind accepts a canonical kind name or one of the short aliases
// runtime, rejection and boundary.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindRuntimeException), "runtime":
		return KindRuntimeException, nil
	case string(KindRejectedOperation), "rejection":
		return KindRejectedOperation, nil
	case string(KindBoundaryException), "boundary":
		return KindBoundaryException, nil
	}
	return "", fmt.Errorf("unknown fault kind %q", s)
}

// TimestampLayout is the ISO-8601 layout of Record.Timestamp (always UTC).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Record is one normalized fault. Optional fields are left at their zero value
// when they carry no meaning for the record's Kind.
type Record struct {
	Timestamp      string `json:"timestamp"`
	Message        string `json:"message"`
	Kind           Kind   `json:"kind"`
	Source         string `json:"source,omitempty"`
	Line           int    `json:"line,omitempty"`
	Column         int    `json:"column,omitempty"`
	ErrorDetail    string `json:"error_detail,omitempty"`
	StackTrace     string `json:"stack_trace,omitempty"`
	ComponentTrace string `json:"component_trace,omitempty"`
}

// Time parses the record timestamp. Timestamps written by other tools in plain
// RFC 3339 are accepted as well.
func (r Record) Time() (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, r.Timestamp); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, r.Timestamp)
}

// Validate reports every invariant the record breaks.
func (r Record) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Timestamp) == "" {
		errs = append(errs, errors.New("timestamp is required"))
	} else if _, err := r.Time(); err != nil {
		errs = append(errs, fmt.Errorf("timestamp %q is not ISO-8601", r.Timestamp))
	}
	if r.Message == "" {
		errs = append(errs, errors.New("message is required"))
	}
	if !r.Kind.Valid() {
		errs = append(errs, fmt.Errorf("unknown kind %q", r.Kind))
	}
	if r.Kind == KindRejectedOperation && (r.Source != "" || r.Line != 0 || r.Column != 0) {
		errs = append(errs, errors.New("rejected-operation records carry no position"))
	}
	if r.ComponentTrace != "" && r.Kind != KindBoundaryException {
		errs = append(errs, errors.New("component trace is only meaningful for boundary-exception"))
	}
	return errors.Join(errs...)
}
