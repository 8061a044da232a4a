// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jpack_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/creachadair/jpack"
	"github.com/creachadair/jpack/tree"
)

// benchInput generates a document shaped like a table of game records.
func benchInput(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i := range n {
		if i > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, `"%d": {"m_strName": "card\t%d", "m_iCost": %d, "m_fRate": %d.5, "tags": [true, null, -%d]}`,
			4000+i, i, i*10, i, i)
	}
	buf.WriteString("}")
	return buf.Bytes()
}

func BenchmarkScanner(b *testing.B) {
	input := benchInput(2000)
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Decoder", func(b *testing.B) {
		for b.Loop() {
			dec := json.NewDecoder(bytes.NewReader(input))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	b.Run("Scanner", func(b *testing.B) {
		for b.Loop() {
			s := jpack.NewScanner(input)
			for s.Next() {
				// The standard library Decoder converts tokens to values.
				// For a fair comparison, do the same for string and numbers.
				switch s.Token() {
				case jpack.String:
					s.Unescape()
				case jpack.Integer:
					s.Int64()
				case jpack.Number:
					s.Float64()
				}
			}
			if err := s.Err(); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	input := benchInput(2000)

	b.Run("Unmarshal", func(b *testing.B) {
		for b.Loop() {
			var v any
			if err := json.Unmarshal(input, &v); err != nil {
				b.Fatalf("Unmarshal: %v", err)
			}
		}
	})
	b.Run("Tree", func(b *testing.B) {
		for b.Loop() {
			if _, err := tree.Decode(input); err != nil {
				b.Fatalf("Decode: %v", err)
			}
		}
	})
	b.Run("TreeCopy", func(b *testing.B) {
		for b.Loop() {
			if _, err := tree.Decode(input, tree.WithCopyStrings(), tree.WithInterning()); err != nil {
				b.Fatalf("Decode: %v", err)
			}
		}
	})
}
