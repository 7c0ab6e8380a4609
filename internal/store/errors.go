package store

import (
	"errors"
	"strconv"

	"github.com/dotcommander/faultlog/internal/models"
)

// RecoverableError is an alias for models.RecoverableError so callers can
// type-assert store errors without importing models.
type RecoverableError = models.RecoverableError

var (
	// ErrSlotCorrupt is matched by SlotCorruptError.
	ErrSlotCorrupt = errors.New("slot corrupt")
	// ErrSlotUnavailable is matched by SlotUnavailableError.
	ErrSlotUnavailable = errors.New("slot unavailable")
)

// SlotCorruptError reports a slot whose value is not a JSON array of records.
type SlotCorruptError struct {
	Key    string
	Offset int64
	Err    error
}

func (e *SlotCorruptError) Error() string {
	return "slot " + e.Key + " holds malformed fault records: " + e.Err.Error()
}
func (e *SlotCorruptError) ErrorCode() string { return "SLOT_CORRUPT" }
func (e *SlotCorruptError) Context() map[string]string {
	return map[string]string{
		"key":    e.Key,
		"offset": strconv.FormatInt(e.Offset, 10),
	}
}
func (e *SlotCorruptError) SuggestedAction() string {
	return "faultlog clear --yes"
}
func (e *SlotCorruptError) Is(target error) bool { return target == ErrSlotCorrupt }
func (e *SlotCorruptError) Unwrap() error        { return e.Err }

// SlotUnavailableError reports a backend that could not be reached.
type SlotUnavailableError struct {
	Backend string
	Target  string
	Err     error
}

func (e *SlotUnavailableError) Error() string {
	return e.Backend + " slot unavailable: " + e.Err.Error()
}
func (e *SlotUnavailableError) ErrorCode() string { return "SLOT_UNAVAILABLE" }
func (e *SlotUnavailableError) Context() map[string]string {
	return map[string]string{
		"backend": e.Backend,
		"target":  e.Target,
	}
}
func (e *SlotUnavailableError) SuggestedAction() string {
	switch e.Backend {
	case "postgres":
		return "check database_url or FAULTLOG_DATABASE_URL"
	default:
		return "check db_path, FAULTLOG_DB_PATH or --db-path"
	}
}
func (e *SlotUnavailableError) Is(target error) bool { return target == ErrSlotUnavailable }
func (e *SlotUnavailableError) Unwrap() error        { return e.Err }
