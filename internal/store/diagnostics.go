package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

// Diagnostic represents a single consistency check finding.
type Diagnostic struct {
	Level           string `json:"level"` // "warning" or "error"
	Code            string `json:"code"`
	Message         string `json:"message"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// SlotReport summarizes what a slot holds.
type SlotReport struct {
	Key         string       `json:"key"`
	Present     bool         `json:"present"`
	Bytes       int          `json:"bytes"`
	Records     int          `json:"records"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// RunDiagnostics reads key from slot and checks that it decodes, that every
// record is well formed and that records are stored newest first. Only a
// failed read is returned as an error; everything else becomes a finding.
func RunDiagnostics(ctx context.Context, slot faultlog.Slot, key string) (SlotReport, error) {
	rep := SlotReport{Key: key, Diagnostics: []Diagnostic{}}

	raw, ok, err := slot.Read(ctx, key)
	if err != nil {
		return rep, fmt.Errorf("read slot %s: %w", key, err)
	}
	rep.Present = ok
	rep.Bytes = len(raw)
	if !ok || len(raw) == 0 {
		return rep, nil
	}

	var records []faultlog.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		corrupt := &SlotCorruptError{Key: key, Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			corrupt.Offset = syntaxErr.Offset
		}
		rep.Diagnostics = append(rep.Diagnostics, Diagnostic{
			Level:           "error",
			Code:            corrupt.ErrorCode(),
			Message:         corrupt.Error(),
			SuggestedAction: corrupt.SuggestedAction(),
		})
		return rep, nil
	}
	rep.Records = len(records)

	rep.Diagnostics = append(rep.Diagnostics, findInvalidRecords(records)...)
	rep.Diagnostics = append(rep.Diagnostics, findOutOfOrder(records)...)
	return rep, nil
}

func findInvalidRecords(records []faultlog.Record) []Diagnostic {
	var diags []Diagnostic
	for i, r := range records {
		if err := r.Validate(); err != nil {
			diags = append(diags, Diagnostic{
				Level:   "warning",
				Code:    "INVALID_RECORD",
				Message: fmt.Sprintf("record %d: %v", i+1, err),
			})
		}
	}
	return diags
}

// findOutOfOrder flags records older than the one stored after them. Records
// whose timestamps do not parse are skipped.
func findOutOfOrder(records []faultlog.Record) []Diagnostic {
	var diags []Diagnostic
	for i := 1; i < len(records); i++ {
		newer, errNewer := records[i-1].Time()
		older, errOlder := records[i].Time()
		if errNewer != nil || errOlder != nil {
			continue
		}
		if newer.Before(older) {
			diags = append(diags, Diagnostic{
				Level:   "warning",
				Code:    "OUT_OF_ORDER",
				Message: fmt.Sprintf("record %d (%s) is older than record %d (%s)", i, records[i-1].Timestamp, i+1, records[i].Timestamp),
			})
		}
	}
	return diags
}
