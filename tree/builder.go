// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import (
	"errors"
	"fmt"

	"github.com/creachadair/jpack"
	"github.com/creachadair/mds/stack"
)

// Errors reported by a Builder for event sequences that do not describe a
// single well-formed tree.
var (
	// ErrExtraValue means a value was reported after the root was complete.
	ErrExtraValue = errors.New("more than one top-level value")

	// ErrUnbalanced means a container was closed when none was open.
	ErrUnbalanced = errors.New("end of container without a beginning")

	// ErrCount means the declared size of a closing container does not match
	// the values reported since it began.
	ErrCount = errors.New("container size does not match its contents")

	// ErrKindMismatch means an object was closed as an array, or vice versa.
	ErrKindMismatch = errors.New("container kind mismatch")

	// ErrIncomplete means the events did not describe a complete value.
	ErrIncomplete = errors.New("incomplete value")
)

// A slot is the location reserved for a value that is not yet finished:
// either the root, or a position in the pending buffer.
type slot struct {
	root  bool
	index int // offset in pending; meaningful only if !root
}

// A Builder implements the jpack.Handler interface to construct a tree from
// stream events.
//
// Values that have been reported but not yet attached to a finished container
// are kept in a flat pending buffer. Each open container reserves a slot of
// its own, in the pending buffer or at the root, and the location of that
// slot is kept on a stack. When the container ends, its members are the run
// at the tail of the pending buffer. They are moved into storage from the
// allocator, and the finished container replaces them in its slot.
//
// After any method reports an error, the Builder is unusable, and every
// subsequent method reports the same error.
type Builder struct {
	alloc   Allocator
	copyAll bool // copy strings even when they are not transient

	root    Value
	hasRoot bool
	pending []Value
	open    *stack.Stack[slot]
	err     error
}

var _ jpack.Handler = (*Builder)(nil)

// NewBuilder constructs a Builder that allocates storage from alloc.
// If alloc == nil, a new Arena with default options is used.
func NewBuilder(alloc Allocator) *Builder {
	if alloc == nil {
		alloc = NewArena(nil)
	}
	return &Builder{alloc: alloc, open: stack.New[slot]()}
}

// CopyStrings configures b to copy all string text into its allocator (true),
// or only text that the parser marks as transient (false).
func (b *Builder) CopyStrings(ok bool) { b.copyAll = ok }

// Result returns the completed root value. It reports an error if b failed,
// if no value was reported, or if a container is still open.
func (b *Builder) Result() (Value, error) {
	if b.err != nil {
		return Nil, b.err
	} else if !b.hasRoot || !b.open.IsEmpty() {
		return Nil, ErrIncomplete
	}
	return b.root, nil
}

// acquire reserves a slot for a new value. While no container is open, the
// only available slot is the root, and it may be taken exactly once.
// Otherwise a new slot is added at the end of the pending buffer.
func (b *Builder) acquire() (slot, error) {
	if b.open.IsEmpty() {
		if b.hasRoot {
			return slot{}, ErrExtraValue
		}
		b.hasRoot = true
		return slot{root: true}, nil
	}
	b.pending = append(b.pending, Value{})
	return slot{index: len(b.pending) - 1}, nil
}

// at returns the value at s. The result must not be retained across changes
// to the pending buffer.
func (b *Builder) at(s slot) *Value {
	if s.root {
		return &b.root
	}
	return &b.pending[s.index]
}

// fail records err as the sticky failure of b, and returns it.
func (b *Builder) fail(err error) error {
	b.err = err
	return err
}

// put stores v in a newly-acquired slot.
func (b *Builder) put(v Value) error {
	if b.err != nil {
		return b.err
	}
	s, err := b.acquire()
	if err != nil {
		return b.fail(err)
	}
	*b.at(s) = v
	return nil
}

// Null implements part of the jpack.Handler interface.
func (b *Builder) Null() error { return b.put(Nil) }

// Bool implements part of the jpack.Handler interface.
func (b *Builder) Bool(v bool) error { return b.put(Bool(v)) }

// Int implements part of the jpack.Handler interface.
// Non-negative values are stored as unsigned integers.
func (b *Builder) Int(v int64) error { return b.put(Int(v)) }

// Uint implements part of the jpack.Handler interface.
func (b *Builder) Uint(v uint64) error { return b.put(Uint(v)) }

// Float implements part of the jpack.Handler interface.
func (b *Builder) Float(v float64) error { return b.put(Float(v)) }

// String implements part of the jpack.Handler interface.
func (b *Builder) String(text []byte, transient bool) error {
	if b.err != nil {
		return b.err
	}
	if transient || b.copyAll {
		cp, err := b.alloc.Copy(text)
		if err != nil {
			return b.fail(fmt.Errorf("copy string: %w", err))
		}
		text = cp
	}
	return b.put(Bytes(text))
}

// Key implements part of the jpack.Handler interface. A key consisting only
// of decimal digits is stored as an unsigned integer; any other key is stored
// as a string.
func (b *Builder) Key(text []byte, transient bool) error {
	if u, ok := ParseDigits(text); ok {
		return b.Uint(u)
	}
	return b.String(text, transient)
}

// BeginObject implements part of the jpack.Handler interface.
func (b *Builder) BeginObject() error { return b.begin(MapKind) }

// BeginArray implements part of the jpack.Handler interface.
func (b *Builder) BeginArray() error { return b.begin(ArrayKind) }

func (b *Builder) begin(kind Kind) error {
	if b.err != nil {
		return b.err
	}
	s, err := b.acquire()
	if err != nil {
		return b.fail(err)
	}
	*b.at(s) = Value{kind: kind} // storage is filled in when the container ends
	b.open.Push(s)
	return nil
}

// EndObject implements part of the jpack.Handler interface.
func (b *Builder) EndObject(members int) error {
	top, err := b.end(MapKind, 2*members)
	if err != nil {
		return err
	}
	var kvs []KV
	if members > 0 {
		kvs, err = b.alloc.Pairs(members)
		if err != nil {
			return b.fail(fmt.Errorf("allocate %d pairs: %w", members, err))
		}
		tail := b.pending[len(b.pending)-2*members:]
		for i := range kvs {
			kvs[i] = KV{Key: tail[2*i], Val: tail[2*i+1]}
		}
	}
	b.finish(top, 2*members).kvs = kvs
	return nil
}

// EndArray implements part of the jpack.Handler interface.
func (b *Builder) EndArray(elements int) error {
	top, err := b.end(ArrayKind, elements)
	if err != nil {
		return err
	}
	var vs []Value
	if elements > 0 {
		vs, err = b.alloc.Values(elements)
		if err != nil {
			return b.fail(fmt.Errorf("allocate %d values: %w", elements, err))
		}
		copy(vs, b.pending[len(b.pending)-elements:])
	}
	b.finish(top, elements).arr = vs
	return nil
}

// end checks that the innermost open container has the given kind, and that
// exactly n pending values follow its slot. It returns the slot of that
// container.
func (b *Builder) end(kind Kind, n int) (slot, error) {
	if b.err != nil {
		return slot{}, b.err
	}
	top, ok := b.open.Peek(0)
	if !ok {
		return slot{}, b.fail(ErrUnbalanced)
	}
	base := 0
	if !top.root {
		base = top.index + 1
	}
	if have := len(b.pending) - base; have != n {
		return slot{}, b.fail(fmt.Errorf("%w: %v declares %d values, have %d", ErrCount, kind, n, have))
	}
	if got := b.at(top).kind; got != kind {
		return slot{}, b.fail(fmt.Errorf("%w: closing %v, open %v", ErrKindMismatch, kind, got))
	}
	return top, nil
}

// finish closes the container at top, the slot returned by end, whose n
// members have been moved to their own storage. It drops them from the
// pending buffer and returns the container's slot for the caller to fill.
func (b *Builder) finish(top slot, n int) *Value {
	b.open.Pop() // end has checked that top is the innermost open container
	tail := len(b.pending) - n
	clear(b.pending[tail:]) // release references held by the buffer
	b.pending = b.pending[:tail]
	return b.at(top)
}
