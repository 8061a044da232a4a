// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the structure of a tree.Value.
package cursor

import (
	"fmt"
	"strconv"

	"github.com/creachadair/jpack/tree"
)

// Path traverses a sequential path into the structure of v where path elements
// are as documented for the Cursor.Down method.  This is a convenience wrapper
// for creating a cursor, applying path, and retrieving its value.
func Path(v tree.Value, path ...any) (tree.Value, error) {
	c := New(v).Down(path...)
	if err := c.Err(); err != nil {
		return tree.Nil, err
	}
	return c.Value(), nil
}

// A Cursor is a pointer that navigates into the structure of a tree.Value.
type Cursor struct {
	org tree.Value
	stk []tree.Value
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin tree.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() tree.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() tree.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of values from the origin to the current
// location in c.
func (c *Cursor) Path() []tree.Value {
	return append([]tree.Value{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are strings, integers, uint64 map keys,
// or functions. If the path is valid, the element reached becomes the current
// value. If the path cannot be completely consumed, traversal stops and an
// error is recorded. Use Err to recover the error.
//
// If a path element is a string and the current value is a map, it selects
// the value of the first pair with that key; a string of decimal digits also
// selects an integer key with that value. If the current value is an array,
// the string must spell an integer, which is treated as an index.
//
// If a path element is an int, the current value must be an array, and the
// integer is an index into it. Negative indices count backward from the end
// (-1 is last, -2 second last). An error is reported if the index is out of
// bounds.
//
// If a path element is a uint64, the current value must be a map, and the
// element selects the value of the first pair with that integer key.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a signature
//
//	func(tree.Value) (tree.Value, error)
//
// If the function reports an error, traversal stops and the error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Value()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			switch cur.Kind() {
			case tree.MapKind:
				v, ok := cur.Find(t)
				if !ok {
					return c.setErrorf("key %q not found", t)
				}
				cur = c.push(v)
			case tree.ArrayKind:
				i, err := strconv.Atoi(t)
				if err != nil {
					return c.setErrorf("invalid array index %q", t)
				}
				next, ok := index(cur, i)
				if !ok {
					return c.setErrorf("array index %d out of bounds (n=%d)", i, cur.Len())
				}
				cur = c.push(next)
			default:
				return c.setErrorf("cannot traverse %v with %q", cur.Kind(), t)
			}

		case int:
			if cur.Kind() != tree.ArrayKind {
				return c.setErrorf("cannot traverse %v with %v", cur.Kind(), t)
			}
			next, ok := index(cur, t)
			if !ok {
				return c.setErrorf("array index %d out of bounds (n=%d)", t, cur.Len())
			}
			cur = c.push(next)

		case uint64:
			if cur.Kind() != tree.MapKind {
				return c.setErrorf("cannot traverse %v with %v", cur.Kind(), t)
			}
			v, ok := cur.FindUint(t)
			if !ok {
				return c.setErrorf("key %d not found", t)
			}
			cur = c.push(v)

		case func(tree.Value) (tree.Value, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(v tree.Value) tree.Value { c.stk = append(c.stk, v); return v }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func index(v tree.Value, i int) (tree.Value, bool) {
	n := v.Len()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return tree.Nil, false
	}
	return v.Index(i), true
}
