// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import (
	"fmt"
	"io"

	"github.com/creachadair/jpack"
)

// DecodeError is the concrete type of errors reported by Decode. The same
// type reports malformed input, event sequences the builder cannot
// assemble, and allocation failures; use errors.Is or errors.As on the
// wrapped error to tell them apart.
type DecodeError struct {
	Location jpack.LineCol // where decoding stopped
	Err      error         // the underlying cause
}

// Error satisfies the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at %s: %v", e.Location, e.Err)
}

// Unwrap supports error wrapping.
func (e *DecodeError) Unwrap() error { return e.Err }

// An Option configures Decode.
type Option func(*config)

type config struct {
	comments  bool
	tcommas   bool
	copyAll   bool
	arenaOpts ArenaOptions
	alloc     Allocator
}

// WithComments allows // and /* */ comments in the input.
func WithComments() Option { return func(c *config) { c.comments = true } }

// WithTrailingCommas allows a comma after the last member of an object or
// element of an array.
func WithTrailingCommas() Option { return func(c *config) { c.tcommas = true } }

// WithCopyStrings copies all string text into the arena, so that the tree
// does not refer to the input buffer.
func WithCopyStrings() Option { return func(c *config) { c.copyAll = true } }

// WithInterning makes copied strings with equal contents share storage.
func WithInterning() Option { return func(c *config) { c.arenaOpts.Intern = true } }

// WithMaxBytes bounds the storage allocated for one decode. Input whose tree
// needs more fails with an error wrapping ErrExhausted.
func WithMaxBytes(n int64) Option { return func(c *config) { c.arenaOpts.MaxBytes = n } }

// WithBlockLen sets the number of elements per arena block.
func WithBlockLen(n int) Option { return func(c *config) { c.arenaOpts.BlockLen = n } }

// WithAllocator makes Decode allocate from a instead of a new Arena. The
// arena options set by other options are then ignored.
func WithAllocator(a Allocator) Option { return func(c *config) { c.alloc = a } }

// Decode parses input, which must contain exactly one JSON value, and returns
// the corresponding tree. Unless WithCopyStrings is set, strings in the tree
// may refer to input, which the caller must then keep alive and unmodified
// for as long as the tree is in use.
//
// All failures are reported as a *DecodeError, and no partial tree is
// returned.
func Decode(input []byte, opts ...Option) (Value, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	alloc := cfg.alloc
	if alloc == nil {
		alloc = NewArena(&cfg.arenaOpts)
	}

	b := NewBuilder(alloc)
	b.CopyStrings(cfg.copyAll)

	st := jpack.NewStream(input)
	st.AllowComments(cfg.comments)
	st.AllowTrailingCommas(cfg.tcommas)
	if err := st.Parse(b); err != nil {
		return Nil, &DecodeError{Location: st.Location().First, Err: err}
	}
	v, err := b.Result()
	if err != nil {
		return Nil, &DecodeError{Location: st.Location().Last, Err: err}
	}
	return v, nil
}

// DecodeReader reads all of r and decodes it as Decode does. The tree may
// refer to the buffer read from r, which is not otherwise retained.
func DecodeReader(r io.Reader, opts ...Option) (Value, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return Nil, &DecodeError{Err: fmt.Errorf("read input: %w", err)}
	}
	return Decode(input, opts...)
}
