// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package tree defines a compact tagged-value tree for JSON data, and a
// builder that constructs such trees directly from jpack stream events.
//
// A Value is one of a closed set of kinds: nil, Boolean, unsigned integer,
// signed (negative) integer, floating-point, string, array, or map. Array and
// map storage is allocated from an Arena and is never modified after the
// container is complete. Map entries keep their input order, and duplicate
// keys are retained.
//
// # Lifetimes
//
// By default, a string that needs no unescaping refers directly into the
// input passed to Decode, and remains valid only while that buffer is alive
// and unmodified. Use WithCopyStrings to make the tree independent of the
// input.
//
// # Keys
//
// An object key made up entirely of decimal digits is stored as an unsigned
// integer rather than a string, so that it can populate integer-keyed maps.
// This is lossy: the keys "7" and "007" both decode as Uint(7).
package tree

import (
	"bytes"
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/creachadair/jpack/internal/escape"
	"go4.org/mem"
)

// Kind identifies the variant of a Value.
type Kind byte

// Constants defining the valid Kind values.
const (
	NilKind    Kind = iota // null
	BoolKind               // true or false
	UintKind               // non-negative integer
	IntKind                // negative integer
	FloatKind              // floating-point number
	StringKind             // string
	ArrayKind              // ordered sequence of values
	MapKind                // ordered sequence of key/value pairs
)

var kindStr = [...]string{
	NilKind:    "nil",
	BoolKind:   "bool",
	UintKind:   "uint",
	IntKind:    "int",
	FloatKind:  "float",
	StringKind: "string",
	ArrayKind:  "array",
	MapKind:    "map",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindStr[k]
}

// A Value is a tagged JSON value. The zero Value is nil.
type Value struct {
	kind Kind
	n    uint64  // payload of BoolKind, UintKind, IntKind, FloatKind
	str  []byte  // StringKind
	arr  []Value // ArrayKind
	kvs  []KV    // MapKind
}

// A KV is a single key/value pair of a map.
type KV struct {
	Key, Val Value
}

// Nil is the nil value.
var Nil Value

// Bool returns a Boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: BoolKind, n: 1}
	}
	return Value{kind: BoolKind}
}

// Uint returns an unsigned integer value.
func Uint(u uint64) Value { return Value{kind: UintKind, n: u} }

// Int returns an integer value. Non-negative values have UintKind, as they do
// in decoded trees.
func Int(i int64) Value {
	if i >= 0 {
		return Uint(uint64(i))
	}
	return Value{kind: IntKind, n: uint64(i)}
}

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: FloatKind, n: math.Float64bits(f)} }

// String returns a string value with a copy of s.
func String(s string) Value { return Value{kind: StringKind, str: []byte(s)} }

// Bytes returns a string value that refers to b without copying it.
func Bytes(b []byte) Value { return Value{kind: StringKind, str: b} }

// Array returns an array value with the given elements.
func Array(vs ...Value) Value { return Value{kind: ArrayKind, arr: vs} }

// Map returns a map value with the given pairs.
func Map(kvs ...KV) Value { return Value{kind: MapKind, kvs: kvs} }

// Field returns a pair with a string key, for use with Map.
func Field(key string, val Value) KV { return KV{Key: String(key), Val: val} }

// Kind reports the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is nil.
func (v Value) IsNil() bool { return v.kind == NilKind }

// A KindError is the panic value reported when an accessor is applied to a
// Value of the wrong kind.
type KindError struct {
	Method string
	Kind   Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("tree: call of Value.%s on %v value", e.Method, e.Kind)
}

func (v Value) mustBe(method string, k Kind) {
	if v.kind != k {
		panic(&KindError{Method: method, Kind: v.kind})
	}
}

// Bool returns the value of a Boolean. It panics if v is not a Boolean.
func (v Value) Bool() bool { v.mustBe("Bool", BoolKind); return v.n != 0 }

// Uint returns the value of an unsigned integer. It panics if v does not have
// UintKind.
func (v Value) Uint() uint64 { v.mustBe("Uint", UintKind); return v.n }

// Int returns the value of a negative integer. It panics if v does not have
// IntKind.
func (v Value) Int() int64 { v.mustBe("Int", IntKind); return int64(v.n) }

// Float returns the value of a floating-point number. It panics if v does
// not have FloatKind.
func (v Value) Float() float64 { v.mustBe("Float", FloatKind); return math.Float64frombits(v.n) }

// Bytes returns the contents of a string. The caller must not modify the
// result. It panics if v is not a string.
func (v Value) Bytes() []byte { v.mustBe("Bytes", StringKind); return v.str }

// Str returns a copy of the contents of a string. It panics if v is not a
// string.
func (v Value) Str() string { v.mustBe("Str", StringKind); return string(v.str) }

// Len reports the number of elements of an array, pairs of a map, or bytes of
// a string. It returns 0 for other kinds.
func (v Value) Len() int {
	switch v.kind {
	case StringKind:
		return len(v.str)
	case ArrayKind:
		return len(v.arr)
	case MapKind:
		return len(v.kvs)
	}
	return 0
}

// Index returns the ith element of an array. It panics if v is not an array
// or i is out of range.
func (v Value) Index(i int) Value { v.mustBe("Index", ArrayKind); return v.arr[i] }

// Pair returns the ith pair of a map. It panics if v is not a map or i is out
// of range.
func (v Value) Pair(i int) KV { v.mustBe("Pair", MapKind); return v.kvs[i] }

// Elems returns an iterator over the index and value of each element of an
// array. It panics if v is not an array.
func (v Value) Elems() iter.Seq2[int, Value] {
	v.mustBe("Elems", ArrayKind)
	return func(yield func(int, Value) bool) {
		for i, e := range v.arr {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Pairs returns an iterator over the key and value of each pair of a map, in
// order. It panics if v is not a map.
func (v Value) Pairs() iter.Seq2[Value, Value] {
	v.mustBe("Pairs", MapKind)
	return func(yield func(Value, Value) bool) {
		for _, kv := range v.kvs {
			if !yield(kv.Key, kv.Val) {
				return
			}
		}
	}
}

// Find returns the value of the first pair of a map whose key is the string
// key, and reports whether one was found. A key made of decimal digits also
// matches the unsigned integer it spells, since decoding stores such keys as
// integers. Find returns false if v is not a map.
func (v Value) Find(key string) (Value, bool) {
	if v.kind != MapKind {
		return Nil, false
	}
	u, digits := ParseDigits([]byte(key))
	for _, kv := range v.kvs {
		switch kv.Key.kind {
		case StringKind:
			if string(kv.Key.str) == key {
				return kv.Val, true
			}
		case UintKind:
			if digits && kv.Key.n == u {
				return kv.Val, true
			}
		}
	}
	return Nil, false
}

// FindUint returns the value of the first pair of a map whose key is the
// unsigned integer key, and reports whether one was found. FindUint returns
// false if v is not a map.
func (v Value) FindUint(key uint64) (Value, bool) {
	if v.kind != MapKind {
		return Nil, false
	}
	for _, kv := range v.kvs {
		if kv.Key.kind == UintKind && kv.Key.n == key {
			return kv.Val, true
		}
	}
	return Nil, false
}

// ParseDigits reports whether text is non-empty and consists entirely of
// decimal digits whose value fits in a uint64, and if so returns that value.
func ParseDigits(text []byte) (uint64, bool) {
	if len(text) == 0 {
		return 0, false
	}
	for _, b := range text {
		if b < '0' || b > '9' {
			return 0, false
		}
	}
	u, err := mem.ParseUint(mem.B(text), 10, 64)
	if err != nil {
		return 0, false // out of range
	}
	return u, true
}

// AsInt64 converts a numeric value to int64. Integers of either kind convert
// if they are in range; floats convert if they have no fractional part and are
// in range.
func (v Value) AsInt64() (int64, error) {
	switch v.kind {
	case UintKind:
		if v.n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v.n)
		}
		return int64(v.n), nil
	case IntKind:
		return int64(v.n), nil
	case FloatKind:
		f := math.Float64frombits(v.n)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("value %v is not representable as int64", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %v value to int64", v.kind)
}

// AsUint64 converts a numeric value to uint64. Negative integers are rejected;
// floats convert if they have no fractional part and are in range.
func (v Value) AsUint64() (uint64, error) {
	switch v.kind {
	case UintKind:
		return v.n, nil
	case IntKind:
		return 0, fmt.Errorf("negative value %d cannot be converted to uint64", int64(v.n))
	case FloatKind:
		f := math.Float64frombits(v.n)
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("value %v is not representable as uint64", f)
		}
		return uint64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %v value to uint64", v.kind)
}

// AsFloat64 converts a numeric value to float64.
func (v Value) AsFloat64() (float64, error) {
	switch v.kind {
	case UintKind:
		return float64(v.n), nil
	case IntKind:
		return float64(int64(v.n)), nil
	case FloatKind:
		return math.Float64frombits(v.n), nil
	}
	return 0, fmt.Errorf("cannot convert %v value to float64", v.kind)
}

// Equal reports whether v and w are structurally equal. Values of different
// kinds are never equal, so Uint(1) and Float(1) differ. Floats compare by
// value, so NaN is not equal to itself.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case NilKind:
		return true
	case FloatKind:
		return v.Float() == w.Float()
	case StringKind:
		return string(v.str) == string(w.str)
	case ArrayKind:
		if len(v.arr) != len(w.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(w.arr[i]) {
				return false
			}
		}
		return true
	case MapKind:
		if len(v.kvs) != len(w.kvs) {
			return false
		}
		for i := range v.kvs {
			if !v.kvs[i].Key.Equal(w.kvs[i].Key) || !v.kvs[i].Val.Equal(w.kvs[i].Val) {
				return false
			}
		}
		return true
	}
	return v.n == w.n
}

// String renders v in a compact debugging notation that shows the kind of
// each number, for example {"a": 1u, "b": [-2, 0.5]}.
func (v Value) String() string { return string(v.appendTo(nil)) }

func (v Value) appendTo(buf []byte) []byte {
	switch v.kind {
	case NilKind:
		return append(buf, "nil"...)
	case BoolKind:
		return strconv.AppendBool(buf, v.n != 0)
	case UintKind:
		return append(strconv.AppendUint(buf, v.n, 10), 'u')
	case IntKind:
		return strconv.AppendInt(buf, int64(v.n), 10)
	case FloatKind:
		start := len(buf)
		buf = strconv.AppendFloat(buf, math.Float64frombits(v.n), 'g', -1, 64)
		if !bytes.ContainsAny(buf[start:], ".eIN") {
			buf = append(buf, ".0"...) // mark integral floats
		}
		return buf
	case StringKind:
		buf = append(buf, '"')
		buf = escape.Quote(buf, mem.B(v.str))
		return append(buf, '"')
	case ArrayKind:
		buf = append(buf, '[')
		for i, e := range v.arr {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = e.appendTo(buf)
		}
		return append(buf, ']')
	case MapKind:
		buf = append(buf, '{')
		for i, kv := range v.kvs {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = kv.Key.appendTo(buf)
			buf = append(buf, ": "...)
			buf = kv.Val.appendTo(buf)
		}
		return append(buf, '}')
	}
	return fmt.Appendf(buf, "<%v>", v.kind)
}
