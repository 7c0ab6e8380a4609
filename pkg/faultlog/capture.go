package faultlog

import (
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Capturer is the set of capture entry points a host wires into its fault
// signals. Every entry point builds a Record with the matching adapter and
// appends it to the store. None of them panics, whatever the input.
type Capturer struct {
	store *Store
	now   func() time.Time
	wg    sync.WaitGroup
}

// CaptureOption configures a Capturer.
type CaptureOption func(*Capturer)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) CaptureOption {
	return func(c *Capturer) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCapturer returns entry points that append to store.
func NewCapturer(store *Store, opts ...CaptureOption) *Capturer {
	c := &Capturer{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store records are appended to.
func (c *Capturer) Store() *Store { return c.store }

// RuntimeException records an uncaught exception.
func (c *Capturer) RuntimeException(ev RuntimeEvent) Record {
	return c.capture(func(now time.Time) Record { return FromRuntime(ev, now) }, func(now time.Time) Record {
		return FromRuntime(RuntimeEvent{}, now)
	})
}

// RejectedOperation records a failed asynchronous operation nobody handled.
func (c *Capturer) RejectedOperation(reason any) Record {
	return c.capture(func(now time.Time) Record { return FromRejection(reason, now) }, func(now time.Time) Record {
		return FromRejection(nil, now)
	})
}

// BoundaryException records a fault caught by a boundary.
func (c *Capturer) BoundaryException(err error, info ComponentInfo) Record {
	return c.capture(func(now time.Time) Record { return FromBoundary(err, info, now) }, func(now time.Time) Record {
		return FromBoundary(nil, ComponentInfo{}, now)
	})
}

// capture builds with build, falling back to fallback if build panics, and
// appends the result.
func (c *Capturer) capture(build, fallback func(time.Time) Record) Record {
	now := c.now()
	r, ok := tryBuild(build, now)
	if !ok {
		r = fallback(now)
	}
	c.store.Append(r)
	return r
}

func tryBuild(build func(time.Time) Record, now time.Time) (r Record, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return build(now), true
}

// Recover turns an in-flight panic into a runtime-exception record and stops
// the panic. It must be deferred directly:
//
//	defer capturer.Recover()
func (c *Capturer) Recover() {
	v := recover()
	if v == nil {
		return
	}
	c.recovered(v)
}

func (c *Capturer) recovered(v any) {
	file, line := panicSite()
	perr := &PanicError{Value: v, Stack: string(debug.Stack())}
	c.RuntimeException(RuntimeEvent{
		Message:  panicMessage(v),
		Filename: file,
		Line:     line,
		Err:      perr,
		Stack:    perr.Stack,
	})
}

// Go runs fn on a new goroutine. A returned error, or a panic, is an unhandled
// rejection and is recorded as rejected-operation.
func (c *Capturer) Go(fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if v := recover(); v != nil {
				c.RejectedOperation(&PanicError{Value: v, Stack: string(debug.Stack())})
			}
		}()
		if err := fn(); err != nil {
			c.RejectedOperation(err)
		}
	}()
}

// Wait blocks until every operation started with Go has finished.
func (c *Capturer) Wait() {
	c.wg.Wait()
}

func panicMessage(v any) string {
	if msg := messageOf(v); msg != "" {
		return msg
	}
	return stringOf(v)
}

// panicSite returns the file and line of the frame that panicked. It walks up
// from the deferred call to runtime.gopanic and skips the runtime frames above
// it (sigpanic, panicmem, map internals for runtime errors).
func panicSite() (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	sawPanic := false
	for {
		f, more := frames.Next()
		if sawPanic && !isRuntimeFrame(f.Function) {
			return f.File, f.Line
		}
		if f.Function == "runtime.gopanic" {
			sawPanic = true
		}
		if !more {
			return "", 0
		}
	}
}

func isRuntimeFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") || strings.HasPrefix(fn, "internal/runtime/")
}
