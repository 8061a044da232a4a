// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import "github.com/creachadair/jpack/internal/arena"

// ErrExhausted is reported by an Arena when an allocation would exceed its
// MaxBytes bound.
var ErrExhausted = arena.ErrExhausted

// An Allocator supplies the variable-length storage of a tree: copies of
// string text, and the element and pair arrays of finished containers.
// A failed allocation aborts the decode that requested it.
type Allocator interface {
	// Copy returns a copy of text in storage owned by the allocator.
	Copy(text []byte) ([]byte, error)

	// Values returns storage for n array elements.
	Values(n int) ([]Value, error)

	// Pairs returns storage for n map pairs.
	Pairs(n int) ([]KV, error)
}

// ArenaOptions configure an Arena. A nil *ArenaOptions provides defaults.
type ArenaOptions struct {
	// MaxBytes, if positive, bounds the total bytes the arena will allocate.
	// Requests beyond the bound fail with ErrExhausted.
	MaxBytes int64

	// BlockLen is the number of elements per storage block. If zero, a
	// default is used.
	BlockLen int

	// Intern, if true, makes copies of equal strings share storage.
	Intern bool
}

// An Arena is the default Allocator. It serves all allocations for one decode
// from a few large blocks, which are released together when nothing refers to
// the tree any longer. An Arena is not safe for concurrent use; give each
// decode its own.
type Arena struct {
	budget arena.Budget
	bytes  *arena.Slab[byte]
	values *arena.Slab[Value]
	pairs  *arena.Slab[KV]
	intern *arena.Interner
}

// NewArena constructs a new empty Arena.
func NewArena(opts *ArenaOptions) *Arena {
	var o ArenaOptions
	if opts != nil {
		o = *opts
	}
	a := &Arena{budget: arena.Budget{Max: o.MaxBytes}}
	a.bytes = arena.NewSlab[byte](o.BlockLen*16, &a.budget) // string blocks are byte-sized
	a.values = arena.NewSlab[Value](o.BlockLen, &a.budget)
	a.pairs = arena.NewSlab[KV](o.BlockLen, &a.budget)
	if o.Intern {
		a.intern = new(arena.Interner)
	}
	return a
}

// Copy implements part of the Allocator interface.
func (a *Arena) Copy(text []byte) ([]byte, error) {
	if a.intern != nil {
		if s, ok := a.intern.Lookup(text); ok {
			return s, nil
		}
	}
	buf, err := a.bytes.Alloc(len(text))
	if err != nil {
		return nil, err
	}
	copy(buf, text)
	if a.intern != nil && len(buf) != 0 {
		a.intern.Add(buf)
	}
	return buf, nil
}

// Values implements part of the Allocator interface.
func (a *Arena) Values(n int) ([]Value, error) { return a.values.Alloc(n) }

// Pairs implements part of the Allocator interface.
func (a *Arena) Pairs(n int) ([]KV, error) { return a.pairs.Alloc(n) }

// ArenaStats summarizes the allocations made by an Arena.
type ArenaStats struct {
	Bytes       int64 // total bytes allocated
	Blocks      int   // storage blocks, across all element types
	StringBytes int   // bytes of copied string text
	Values      int   // array elements
	Pairs       int   // map pairs
	Interned    int   // copies avoided by interning
}

// Stats reports allocation statistics for a.
func (a *Arena) Stats() ArenaStats {
	sb, sn := a.bytes.Stats()
	vb, vn := a.values.Stats()
	pb, pn := a.pairs.Stats()
	st := ArenaStats{
		Bytes:       a.budget.Used(),
		Blocks:      sb + vb + pb,
		StringBytes: sn,
		Values:      vn,
		Pairs:       pn,
	}
	if a.intern != nil {
		st.Interned = a.intern.Hits()
	}
	return st
}

// Release drops the arena's hold on its current blocks. Trees already built
// from a remain valid; subsequent allocations start new blocks, and strings
// copied after Release are no longer interned.
func (a *Arena) Release() {
	a.bytes.Release()
	a.values.Release()
	a.pairs.Release()
	a.intern = nil
}
