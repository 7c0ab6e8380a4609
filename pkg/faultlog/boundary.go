package faultlog

import (
	"runtime/debug"
	"strings"
)

// Boundary is one node of a component tree. Guard runs work inside the node and
// turns a panic into a boundary-exception record carrying the node's ancestry.
type Boundary struct {
	capturer *Capturer
	name     string
	parent   *Boundary
}

// Boundary returns a root boundary named name.
func (c *Capturer) Boundary(name string) *Boundary {
	return &Boundary{capturer: c, name: name}
}

// Child returns a boundary nested under b.
func (b *Boundary) Child(name string) *Boundary {
	return &Boundary{capturer: b.capturer, name: name, parent: b}
}

// Name returns the component name of b.
func (b *Boundary) Name() string { return b.name }

// ComponentStack renders the ancestry of b, innermost first, one
// "    in <name>" line per level.
func (b *Boundary) ComponentStack() string {
	var lines []string
	for n := b; n != nil; n = n.parent {
		if n.name == "" {
			continue
		}
		lines = append(lines, "    in "+n.name)
	}
	return strings.Join(lines, "\n")
}

// Guard runs fn. A panic inside fn is recorded and returned as a *PanicError so
// the caller can render a fallback. An error returned by fn is passed through
// and not recorded.
func (b *Boundary) Guard(fn func() error) (err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		perr := &PanicError{Value: v, Stack: string(debug.Stack())}
		b.capturer.BoundaryException(boundaryError{perr}, ComponentInfo{ComponentStack: b.ComponentStack()})
		err = perr
	}()
	return fn()
}

// boundaryError reports the panic value itself as the message, the way a
// thrown error reads inside a boundary.
type boundaryError struct {
	*PanicError
}

func (e boundaryError) Error() string { return panicMessage(e.Value) }
