// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package convert

import (
	"reflect"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
)

type field struct {
	name     string // the name used in error paths
	index    []int
	required bool
}

type fieldSet struct {
	list  []field
	names map[string]int // tag names and Go names
	alts  map[string]int // case-converted forms of untagged Go names
}

func (fs *fieldSet) lookup(name string) (int, bool) {
	if i, ok := fs.names[name]; ok {
		return i, true
	}
	i, ok := fs.alts[name]
	return i, ok
}

var fieldCache sync.Map // reflect.Type → *fieldSet

// fieldsOf returns the convertible fields of the struct type t, in
// declaration order.
func fieldsOf(t reflect.Type) *fieldSet {
	if fs, ok := fieldCache.Load(t); ok {
		return fs.(*fieldSet)
	}
	fs := &fieldSet{names: make(map[string]int), alts: make(map[string]int)}
	for j := range t.NumField() {
		sf := t.Field(j)
		if !sf.IsExported() {
			continue
		}
		tag, opts, _ := strings.Cut(sf.Tag.Get("jpack"), ",")
		if tag == "-" && opts == "" {
			continue
		}
		f := field{name: sf.Name, index: sf.Index}
		for opt := range strings.SplitSeq(opts, ",") {
			if opt == "required" {
				f.required = true
			}
		}
		i := len(fs.list)
		if tag != "" {
			f.name = tag
			fs.names[tag] = i
		} else {
			fs.names[sf.Name] = i
			for _, alt := range []string{strcase.ToSnake(sf.Name), strcase.ToLowerCamel(sf.Name)} {
				if _, ok := fs.alts[alt]; !ok {
					fs.alts[alt] = i
				}
			}
		}
		fs.list = append(fs.list, f)
	}
	v, _ := fieldCache.LoadOrStore(t, fs)
	return v.(*fieldSet)
}
