// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

// shortEsc maps control characters that have a two-byte escape to the letter
// of that escape. Other control characters are written as \u00XX.
var shortEsc = [' ']byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
}

const hexDigit = "0123456789abcdef"

// Line and paragraph separators are legal in JSON strings, but not in
// JavaScript source, so they are always escaped.
const (
	lineSep = 0x2028
	paraSep = 0x2029
)

// Quote escapes the characters of src for inclusion in a JSON string, and
// appends the result to dst. Quotation marks are not added. Invalid UTF-8 is
// written as an escaped replacement rune.
func Quote(dst []byte, src mem.RO) []byte {
	run := 0 // start of the pending run of bytes that need no escape
	for i := 0; i < src.Len(); {
		c := src.At(i)
		if c < utf8.RuneSelf {
			if c >= ' ' && c != '"' && c != '\\' {
				i++
				continue
			}
			dst = mem.Append(dst, src.Slice(run, i))
			if c >= ' ' {
				dst = append(dst, '\\', c)
			} else if e := shortEsc[c]; e != 0 {
				dst = append(dst, '\\', e)
			} else {
				dst = appendUnicode(dst, rune(c))
			}
			i++
			run = i
			continue
		}

		r, n := mem.DecodeRune(src.SliceFrom(i))
		if r == utf8.RuneError || r == lineSep || r == paraSep {
			dst = mem.Append(dst, src.Slice(run, i))
			dst = appendUnicode(dst, r)
			run = i + n
		}
		i += n
	}
	return mem.Append(dst, src.SliceFrom(run))
}

// appendUnicode appends the \uXXXX escape of r, which must be in the BMP.
func appendUnicode(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigit[r>>12&0xf], hexDigit[r>>8&0xf], hexDigit[r>>4&0xf], hexDigit[r&0xf])
}
