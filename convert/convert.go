// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package convert maps a decoded tree.Value onto Go values of declared types.
//
// Conversion follows the shape of the destination:
//
//	Go type                | accepted tree values
//	---------------------- | ---------------------------------------------
//	bool                   | bool
//	int, int8, ... int64   | uint or int in range, integral float in range
//	uint, uint8, ... uint64| uint in range, integral float in range
//	float32, float64       | any number
//	string                 | string
//	[]byte                 | string (copied)
//	slice, array           | array
//	map[K]V                | map; K may be a string or integer type
//	struct                 | map (by field name) or array (by position)
//	pointer                | as the element type; nil sets a nil pointer
//	interface{}            | any value, as nil, bool, uint64, int64, float64,
//	                       | string, []any, map[string]any or map[any]any
//	tree.Value             | any value, unconverted
//
// A nil value sets any destination to its zero value. Types that implement
// Unpacker take over their own conversion.
//
// # Struct fields
//
// A map key selects the exported struct field whose `jpack` tag names it. A
// field without a tag name matches its Go name, or failing that the snake_case
// or lowerCamelCase form of its Go name. A tag of "-" skips the field. The tag
// option "required" makes the absence of the field an error:
//
//	type Item struct {
//	    Name string `jpack:"m_strName,required"`
//	    Cost int    `jpack:"m_iCost"`
//	}
//
// Keys that match no field are ignored.
package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/creachadair/jpack/tree"
)

// Errors wrapped by *Error to classify conversion failures.
var (
	ErrTypeMismatch = errors.New("type mismatch")
	ErrMissingField = errors.New("missing required field")
	ErrOverflow     = errors.New("value out of range")
)

// Error is the concrete type of errors reported by Into.
type Error struct {
	Path    string // location in the destination, e.g. "user.items[2]"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("convert %s: %s", e.Path, e.Message)
	}
	return "convert: " + e.Message
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.Err }

// An Unpacker is a type that converts a tree.Value into itself. Into calls
// UnpackValue in place of its own conversion for destinations of this type.
type Unpacker interface {
	UnpackValue(v tree.Value) error
}

var (
	unpackerType = reflect.TypeFor[Unpacker]()
	valueType    = reflect.TypeFor[tree.Value]()
)

// Into converts v into the value pointed to by dst.
func Into(v tree.Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &Error{Message: fmt.Sprintf("destination must be a non-nil pointer, not %T", dst)}
	}
	return into(v, rv.Elem(), "")
}

func into(v tree.Value, rv reflect.Value, path string) error {
	if u, ok := unpacker(rv); ok {
		if err := u.UnpackValue(v); err != nil {
			var cerr *Error
			if errors.As(err, &cerr) {
				return err
			}
			return &Error{Path: path, Message: err.Error(), Err: err}
		}
		return nil
	}
	if rv.Type() == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}
	if v.IsNil() {
		rv.SetZero()
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return into(v, rv.Elem(), path)

	case reflect.Bool:
		if v.Kind() != tree.BoolKind {
			return mismatch(path, rv, v)
		}
		rv.SetBool(v.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !isNumber(v) {
			return mismatch(path, rv, v)
		}
		n, err := v.AsInt64()
		if err != nil || rv.OverflowInt(n) {
			return overflow(path, rv, v)
		}
		rv.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if !isNumber(v) {
			return mismatch(path, rv, v)
		}
		n, err := v.AsUint64()
		if err != nil || rv.OverflowUint(n) {
			return overflow(path, rv, v)
		}
		rv.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := v.AsFloat64()
		if err != nil {
			return mismatch(path, rv, v)
		} else if rv.OverflowFloat(f) {
			return overflow(path, rv, v)
		}
		rv.SetFloat(f)

	case reflect.String:
		if v.Kind() != tree.StringKind {
			return mismatch(path, rv, v)
		}
		rv.SetString(v.Str())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 && v.Kind() == tree.StringKind {
			rv.SetBytes(append([]byte(nil), v.Bytes()...))
			return nil
		}
		if v.Kind() != tree.ArrayKind {
			return mismatch(path, rv, v)
		}
		rv.Set(reflect.MakeSlice(rv.Type(), v.Len(), v.Len()))
		return intoElems(v, rv, path)

	case reflect.Array:
		if v.Kind() != tree.ArrayKind {
			return mismatch(path, rv, v)
		} else if v.Len() > rv.Len() {
			return &Error{
				Path:    path,
				Message: fmt.Sprintf("array of %d elements does not fit %v", v.Len(), rv.Type()),
				Err:     ErrOverflow,
			}
		}
		rv.SetZero()
		return intoElems(v, rv, path)

	case reflect.Map:
		return intoMap(v, rv, path)

	case reflect.Struct:
		return intoStruct(v, rv, path)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return &Error{Path: path, Message: fmt.Sprintf("unsupported type %v", rv.Type())}
		}
		rv.Set(reflect.ValueOf(Natural(v)))

	default:
		return &Error{Path: path, Message: fmt.Sprintf("unsupported type %v", rv.Type())}
	}
	return nil
}

// unpacker reports whether rv, or a pointer to it, implements Unpacker.
func unpacker(rv reflect.Value) (Unpacker, bool) {
	if rv.CanAddr() && rv.Addr().Type().Implements(unpackerType) {
		return rv.Addr().Interface().(Unpacker), true
	}
	if rv.Kind() != reflect.Pointer && rv.Type().Implements(unpackerType) {
		return rv.Interface().(Unpacker), true
	}
	return nil, false
}

func intoElems(v tree.Value, rv reflect.Value, path string) error {
	for i, e := range v.Elems() {
		if err := into(e, rv.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func intoMap(v tree.Value, rv reflect.Value, path string) error {
	if v.Kind() != tree.MapKind {
		return mismatch(path, rv, v)
	}
	typ := rv.Type()
	m := reflect.MakeMapWithSize(typ, v.Len())
	for key, val := range v.Pairs() {
		kv := reflect.New(typ.Key()).Elem()
		kpath := joinPath(path, keyString(key))
		if err := intoKey(key, kv, kpath); err != nil {
			return err
		}
		ev := reflect.New(typ.Elem()).Elem()
		if err := into(val, ev, kpath); err != nil {
			return err
		}
		m.SetMapIndex(kv, ev)
	}
	rv.Set(m)
	return nil
}

// intoKey converts a map key. Integer keys convert to string keys as their
// decimal representation, and string keys convert to integer keys if they
// spell an integer.
func intoKey(key tree.Value, kv reflect.Value, path string) error {
	switch kv.Kind() {
	case reflect.String:
		switch key.Kind() {
		case tree.StringKind, tree.UintKind, tree.IntKind:
			kv.SetString(keyString(key))
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		var err error
		switch key.Kind() {
		case tree.UintKind, tree.IntKind:
			n, err = key.AsInt64()
		case tree.StringKind:
			n, err = strconv.ParseInt(key.Str(), 10, 64)
		default:
			return keyMismatch(path, kv, key)
		}
		if err != nil || kv.OverflowInt(n) {
			return overflow(path, kv, key)
		}
		kv.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		var err error
		switch key.Kind() {
		case tree.UintKind, tree.IntKind:
			n, err = key.AsUint64()
		case tree.StringKind:
			n, err = strconv.ParseUint(key.Str(), 10, 64)
		default:
			return keyMismatch(path, kv, key)
		}
		if err != nil || kv.OverflowUint(n) {
			return overflow(path, kv, key)
		}
		kv.SetUint(n)
		return nil

	default:
		return into(key, kv, path)
	}
	return keyMismatch(path, kv, key)
}

func intoStruct(v tree.Value, rv reflect.Value, path string) error {
	fields := fieldsOf(rv.Type())
	seen := make([]bool, len(fields.list))
	switch v.Kind() {
	case tree.MapKind:
		for key, val := range v.Pairs() {
			name := keyString(key)
			i, ok := fields.lookup(name)
			if !ok {
				continue // unknown keys are ignored
			}
			f := fields.list[i]
			if err := into(val, rv.FieldByIndex(f.index), joinPath(path, f.name)); err != nil {
				return err
			}
			seen[i] = true
		}

	case tree.ArrayKind:
		// Positional: the elements populate the fields in declaration order.
		for i, e := range v.Elems() {
			if i >= len(fields.list) {
				break
			}
			f := fields.list[i]
			if err := into(e, rv.FieldByIndex(f.index), joinPath(path, f.name)); err != nil {
				return err
			}
			seen[i] = true
		}

	default:
		return mismatch(path, rv, v)
	}

	for i, f := range fields.list {
		if f.required && !seen[i] {
			return &Error{
				Path:    joinPath(path, f.name),
				Message: "required field is missing",
				Err:     ErrMissingField,
			}
		}
	}
	return nil
}

// Natural converts v to a Go value of its natural type: nil, bool, uint64,
// int64, float64, string, []any, or a map. A map whose keys are all strings
// converts to map[string]any; any other map converts to map[any]any.
func Natural(v tree.Value) any {
	switch v.Kind() {
	case tree.BoolKind:
		return v.Bool()
	case tree.UintKind:
		return v.Uint()
	case tree.IntKind:
		return v.Int()
	case tree.FloatKind:
		return v.Float()
	case tree.StringKind:
		return v.Str()
	case tree.ArrayKind:
		out := make([]any, v.Len())
		for i, e := range v.Elems() {
			out[i] = Natural(e)
		}
		return out
	case tree.MapKind:
		allStrings := true
		for key := range v.Pairs() {
			if key.Kind() != tree.StringKind {
				allStrings = false
				break
			}
		}
		if allStrings {
			out := make(map[string]any, v.Len())
			for key, val := range v.Pairs() {
				out[key.Str()] = Natural(val)
			}
			return out
		}
		out := make(map[any]any, v.Len())
		for key, val := range v.Pairs() {
			out[Natural(key)] = Natural(val)
		}
		return out
	}
	return nil
}

func isNumber(v tree.Value) bool {
	switch v.Kind() {
	case tree.UintKind, tree.IntKind, tree.FloatKind:
		return true
	}
	return false
}

// keyString renders a map key for field matching and error paths.
func keyString(key tree.Value) string {
	switch key.Kind() {
	case tree.StringKind:
		return key.Str()
	case tree.UintKind:
		return strconv.FormatUint(key.Uint(), 10)
	case tree.IntKind:
		return strconv.FormatInt(key.Int(), 10)
	}
	return key.String()
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	if strings.HasPrefix(name, "[") {
		return path + name
	}
	return path + "." + name
}

func mismatch(path string, rv reflect.Value, v tree.Value) error {
	return &Error{
		Path:    path,
		Message: fmt.Sprintf("cannot convert %v value to %v", v.Kind(), rv.Type()),
		Err:     ErrTypeMismatch,
	}
}

func keyMismatch(path string, kv reflect.Value, key tree.Value) error {
	return &Error{
		Path:    path,
		Message: fmt.Sprintf("cannot convert %v key to %v", key.Kind(), kv.Type()),
		Err:     ErrTypeMismatch,
	}
}

func overflow(path string, rv reflect.Value, v tree.Value) error {
	return &Error{
		Path:    path,
		Message: fmt.Sprintf("value %v does not fit %v", v, rv.Type()),
		Err:     ErrOverflow,
	}
}
