package faultlog

import "context"

// Slot is a durable named key/value location. A Store keeps its whole record log
// as one JSON document in a single slot.
//
// Read reports ok=false when nothing is stored under key. Remove must not fail
// when key is absent.
type Slot interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// DefaultKey is the slot name used when no WithKey option is given.
const DefaultKey = "fault_records"
