// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package arena implements bump allocation of typed storage from large
// blocks, with a shared bound on the total size handed out.
//
// Storage from an arena is never freed individually. A block is reclaimed by
// the garbage collector once nothing refers to any part of it, so everything
// allocated together goes away together.
package arena

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrExhausted is reported when an allocation would exceed the budget.
var ErrExhausted = errors.New("arena exhausted")

// A Budget bounds the total number of bytes allocated by the slabs that share
// it. A zero Budget, or one with Max == 0, is unbounded.
type Budget struct {
	Max  int64 // maximum bytes; 0 means no limit
	used int64
}

// Take charges n bytes to b, or reports ErrExhausted if that would exceed
// the limit. A nil *Budget accepts every request.
func (b *Budget) Take(n int64) error {
	if b == nil {
		return nil
	}
	if b.Max > 0 && b.used+n > b.Max {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrExhausted, n, b.used, b.Max)
	}
	b.used += n
	return nil
}

// Used reports the number of bytes charged to b.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

// DefaultBlockLen is the number of elements per block when none is given.
const DefaultBlockLen = 1024

// A Slab is a bump allocator for values of type T.
// A Slab is not safe for concurrent use.
type Slab[T any] struct {
	block    []T // current block; len is the number of elements in use
	blockLen int
	unit     int64 // size of one T in bytes
	budget   *Budget

	blocks int // number of blocks allocated, including dedicated ones
	elems  int // number of elements handed out
}

// NewSlab constructs a slab that allocates blocks of blockLen elements and
// charges its allocations to b. If blockLen <= 0, DefaultBlockLen is used.
// The budget may be nil.
func NewSlab[T any](blockLen int, b *Budget) *Slab[T] {
	if blockLen <= 0 {
		blockLen = DefaultBlockLen
	}
	return &Slab[T]{
		blockLen: blockLen,
		unit:     int64(reflect.TypeFor[T]().Size()),
		budget:   b,
	}
}

// Alloc returns a zeroed slice of n elements. The capacity of the slice is
// exactly n, so appending to it cannot disturb other allocations. Alloc
// returns nil without error for n <= 0.
func (s *Slab[T]) Alloc(n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := s.budget.Take(int64(n) * max(s.unit, 1)); err != nil {
		return nil, err
	}
	s.elems += n

	// Requests bigger than a quarter block get a dedicated allocation, so that
	// a large container does not waste the tail of a partly-used block.
	if n > s.blockLen/4 {
		s.blocks++
		return make([]T, n), nil
	}
	if len(s.block)+n > cap(s.block) {
		s.block = make([]T, 0, s.blockLen)
		s.blocks++
	}
	p := len(s.block)
	s.block = s.block[:p+n]
	return s.block[p : p+n : p+n], nil
}

// Stats reports the number of blocks and elements allocated by s.
func (s *Slab[T]) Stats() (blocks, elems int) { return s.blocks, s.elems }

// Release discards the current block. Storage already handed out remains
// valid for as long as it is referenced.
func (s *Slab[T]) Release() { s.block = nil }
