// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package arena

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// An Interner records byte strings by content, so that repeated strings can
// share a single copy. The zero value is ready for use.
type Interner struct {
	m    map[uint64][][]byte
	hits int
}

// Lookup returns a previously-added string equal to text, if there is one.
func (in *Interner) Lookup(text []byte) ([]byte, bool) {
	for _, s := range in.m[xxhash.Sum64(text)] {
		if bytes.Equal(s, text) {
			in.hits++
			return s, true
		}
	}
	return nil, false
}

// Add records text. The caller must not modify text afterward.
func (in *Interner) Add(text []byte) {
	if in.m == nil {
		in.m = make(map[uint64][][]byte)
	}
	h := xxhash.Sum64(text)
	in.m[h] = append(in.m[h], text)
}

// Len reports the number of distinct strings recorded.
func (in *Interner) Len() (n int) {
	for _, ss := range in.m {
		n += len(ss)
	}
	return n
}

// Hits reports the number of successful lookups.
func (in *Interner) Hits() int { return in.hits }
