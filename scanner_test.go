// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jpack_test

import (
	"testing"

	"github.com/creachadair/jpack"
	"github.com/google/go-cmp/cmp"
)

func TestScanner(t *testing.T) {
	tests := []struct {
		input string
		want  []jpack.Token
	}{
		// Empty inputs
		{"", nil},
		{"  ", nil},
		{"\n\n  \n", nil},
		{"\t  \r\n \t  \r\n", nil},

		// Constants
		{"true false null", []jpack.Token{jpack.True, jpack.False, jpack.Null}},

		// Punctuation
		{"{ [ ] } , :", []jpack.Token{
			jpack.LBrace, jpack.LSquare, jpack.RSquare, jpack.RBrace, jpack.Comma, jpack.Colon,
		}},

		// Strings
		{`"" "a b c" "a\nb\tc"`, []jpack.Token{jpack.String, jpack.String, jpack.String}},
		{`"\"\\\/\b\f\n\r\t"`, []jpack.Token{jpack.String}},
		{`"\u0000\u01fc\uAA9c"`, []jpack.Token{jpack.String}},
		{`"ünïcödé ☃"`, []jpack.Token{jpack.String}},

		// Numbers
		{`0 -1 5139 2.3 5e+9 3.6E+4 -0.001E-100`, []jpack.Token{
			jpack.Integer, jpack.Integer, jpack.Integer,
			jpack.Number, jpack.Number, jpack.Number, jpack.Number,
		}},
		{`18446744073709551616 -9223372036854775809`, []jpack.Token{jpack.Integer, jpack.Integer}},

		// Mixed types
		{`{true,"false":-15 null[]}`, []jpack.Token{
			jpack.LBrace, jpack.True, jpack.Comma, jpack.String, jpack.Colon,
			jpack.Integer, jpack.Null, jpack.LSquare, jpack.RSquare, jpack.RBrace,
		}},
		{`{"a": true, "b":[null, 1, 0.5]}`, []jpack.Token{
			jpack.LBrace,
			jpack.String, jpack.Colon, jpack.True, jpack.Comma,
			jpack.String, jpack.Colon,
			jpack.LSquare,
			jpack.Null, jpack.Comma, jpack.Integer, jpack.Comma, jpack.Number,
			jpack.RSquare,
			jpack.RBrace,
		}},
		{`"a",1,true
       false["b"]
       `, []jpack.Token{
			jpack.String, jpack.Comma, jpack.Integer, jpack.Comma, jpack.True,
			jpack.False, jpack.LSquare, jpack.String, jpack.RSquare,
		}},
	}

	for _, test := range tests {
		var got []jpack.Token
		s := jpack.NewScanner([]byte(test.input))
		for s.Next() {
			got = append(got, s.Token())
		}
		if s.Err() != nil {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScanner_errors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"abc`, `unterminated string (offset 4)`},
		{"\"a\x01b\"", `unescaped control '\x01' (offset 3)`},
		{"\"a\xffb\"", `invalid UTF-8 in string (offset 3)`},
		{`"\q"`, `invalid 'q' after escape (offset 3)`},
		{`"\u12x4"`, `invalid Unicode escape: not a hex digit: 'x' (offset 6)`},
		{`01`, `extra leading zeroes (offset 2)`},
		{`-`, `want digit, got error: EOF (offset 1)`},
		{`-x`, `got 'x', want digit (offset 1)`},
		{`1.`, `no digits after decimal point (offset 2)`},
		{`1e`, `want sign or digit in exponent (offset 2)`},
		{`1e+`, `missing exponent digits (offset 3)`},
		{`nope`, `unknown constant "nope" (offset 4)`},
		{`@`, `unexpected '@' (offset 1)`},
		{`/* x */`, `unexpected '/' (offset 1)`}, // comments not enabled
	}
	for _, test := range tests {
		s := jpack.NewScanner([]byte(test.input))
		for s.Next() {
			// skip valid tokens
		}
		if s.Err() == nil {
			t.Errorf("Input %#q: got no error, want %q", test.input, test.want)
		} else if got := s.Err().Error(); got != test.want {
			t.Errorf("Input %#q: got error %q, want %q", test.input, got, test.want)
		}
	}
}

func TestScanner_withComments(t *testing.T) {
	tests := []struct {
		input string
		want  []jpack.Token
		coms  []string
	}{
		{"/* block comment */\n\n\n", []jpack.Token{jpack.BlockComment},
			[]string{"/* block comment */"}},
		{"// line 1\n\n// line 2\n", []jpack.Token{jpack.LineComment, jpack.LineComment},
			[]string{"// line 1\n", "// line 2\n"}}, // N.B. includes terminating newline, if present
		{"// line at EOF", []jpack.Token{jpack.LineComment},
			[]string{"// line at EOF"}},
		{`{
 "x": 1, // howdy do
 "y" /* hide me */ : 2.0 }`, []jpack.Token{
			jpack.LBrace, jpack.String, jpack.Colon, jpack.Integer, jpack.Comma, jpack.LineComment,
			jpack.String, jpack.BlockComment, jpack.Colon, jpack.Number, jpack.RBrace,
		}, []string{
			"// howdy do\n", "/* hide me */",
		}},

		{`"a" // line
false /*
  this is a comment
*/ 1 null [ {} ]`, []jpack.Token{
			jpack.String, jpack.LineComment, jpack.False, jpack.BlockComment,
			jpack.Integer, jpack.Null, jpack.LSquare, jpack.LBrace, jpack.RBrace, jpack.RSquare,
		}, []string{
			"// line\n", "/*\n  this is a comment\n*/",
		}},

		{"/* x */\n{\n}//foo", []jpack.Token{
			jpack.BlockComment, jpack.LBrace, jpack.RBrace, jpack.LineComment,
		}, []string{
			"/* x */", "//foo",
		}},

		{"/**\n*/", []jpack.Token{jpack.BlockComment}, []string{"/**\n*/"}},

		{`/**/"foo"/***/"bar"/****/"baz"/*****/false/*x*/null`, []jpack.Token{
			jpack.BlockComment, jpack.String,
			jpack.BlockComment, jpack.String,
			jpack.BlockComment, jpack.String,
			jpack.BlockComment, jpack.False,
			jpack.BlockComment, jpack.Null,
		}, []string{
			"/**/", "/***/", "/****/", "/*****/", "/*x*/",
		}},
	}

	for _, test := range tests {
		var got []jpack.Token
		var coms []string
		s := jpack.NewScanner([]byte(test.input))
		s.AllowComments(true)
		for s.Next() {
			got = append(got, s.Token())
			if tok := s.Token(); tok == jpack.LineComment || tok == jpack.BlockComment {
				coms = append(coms, string(s.Text()))
			}
		}
		if s.Err() != nil {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
		if diff := cmp.Diff(test.coms, coms); diff != "" {
			t.Errorf("Input: %#q\nComments: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScanner_decodeAs(t *testing.T) {
	mustScan := func(t *testing.T, input string, want jpack.Token) *jpack.Scanner {
		t.Helper()
		s := jpack.NewScanner([]byte(input))
		if !s.Next() {
			t.Fatalf("Next failed: %v", s.Err())
		} else if s.Token() != want {
			t.Fatalf("Next token: got %v, want %v", s.Token(), want)
		}
		return s
	}

	t.Run("Integer", func(t *testing.T) {
		s := mustScan(t, `-15`, jpack.Integer)
		if v, err := s.Int64(); err != nil || v != -15 {
			t.Errorf("Int64: got %v, %v; want -15, nil", v, err)
		}
		if _, err := s.Uint64(); err == nil {
			t.Error("Uint64: got nil, want error")
		}
	})
	t.Run("Number", func(t *testing.T) {
		s := mustScan(t, `3.25e-5`, jpack.Number)
		if v, err := s.Float64(); err != nil || v != 3.25e-5 {
			t.Errorf("Float64: got %v, %v; want 3.25e-5, nil", v, err)
		}
	})
	t.Run("Constants", func(t *testing.T) {
		mustScan(t, `true`, jpack.True)
		mustScan(t, `false`, jpack.False)
		mustScan(t, `null`, jpack.Null)
	})
	t.Run("String", func(t *testing.T) {
		const wantText = `"a\tb\u0020c\n"` // as written
		const wantDec = "a\tb c\n"            // with escapes undone
		s := mustScan(t, `"a\tb\u0020c\n"`, jpack.String)
		text := s.Text()
		if got := string(text); got != wantText {
			t.Errorf("Text: got %#q, want %#q", got, wantText)
		}
		if u, err := jpack.Unquote(text); err != nil {
			t.Errorf("Unquote failed: %v", err)
		} else if got := string(u); got != wantDec {
			t.Errorf("Unquote: got %#q, want %#q", got, wantDec)
		}
		if u, transient, err := s.Unescape(); err != nil {
			t.Errorf("Unescape failed: %v", err)
		} else if got := string(u); got != wantDec || !transient {
			t.Errorf("Unescape: got %#q, %v; want %#q, true", got, transient, wantDec)
		}
	})
	t.Run("PlainString", func(t *testing.T) {
		input := []byte(`"plain"`)
		s := jpack.NewScanner(input)
		if !s.Next() {
			t.Fatalf("Next failed: %v", s.Err())
		}
		u, transient, err := s.Unescape()
		if err != nil {
			t.Fatalf("Unescape failed: %v", err)
		} else if transient {
			t.Error("Unescape: plain string is transient")
		}
		// The result is a view of the input, capped so it cannot be extended.
		input[1] = 'P'
		if got := string(u); got != "Plain" {
			t.Errorf("Unescape: got %q, want view of input %q", got, "Plain")
		}
		if cap(u) != len(u) {
			t.Errorf("Unescape: cap = %d, want %d", cap(u), len(u))
		}
	})
	t.Run("NotString", func(t *testing.T) {
		s := mustScan(t, `12`, jpack.Integer)
		if _, _, err := s.Unescape(); err == nil {
			t.Error("Unescape: got nil, want error")
		}
	})
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{" ", `" "`},
		{"a\t\nb", `"a\t\nb"`},
		{"\x00\x01\x02", `"\u0000\u0001\u0002"`},
		{`a "b c\" d"`, `"a \"b c\\\" d\""`},
		{`\ufffd`, `"\\ufffd"`},
		{"\u2028 \u2029 \ufffd", `"\u2028 \u2029 \ufffd"`},
		{"This is the end\v", `"This is the end\u000b"`},
		{"<\x1e>", `"<\u001e>"`},
	}
	for _, test := range tests {
		got := jpack.Quote(test.input)
		if got != test.want {
			t.Errorf("Input: %#q\nGot:  %#q\nWant: %#q", test.input, got, test.want)
		}
	}
}

func TestScannerLoc(t *testing.T) {
	type tokPos struct {
		Tok jpack.Token
		Pos string
	}
	tests := []struct {
		input string
		want  []tokPos
	}{
		{"", nil},
		{"{ }", []tokPos{{jpack.LBrace, "1:0-1"}, {jpack.RBrace, "1:2-3"}}},
		{`"foo" // bar`, []tokPos{{jpack.String, "1:0-5"}, {jpack.LineComment, "1:6-12"}}},
		{"/* ok */\ntrue\n false\n", []tokPos{{jpack.BlockComment, "1:0-8"}, {jpack.True, "2:0-4"}, {jpack.False, "3:1-6"}}},
		{"/* abc */", []tokPos{{jpack.BlockComment, "1:0-9"}}},
		{"/* ok\n*/\n null", []tokPos{{jpack.BlockComment, "1:0-2:2"}, {jpack.Null, "3:1-5"}}},
		{"// first\n[1, /*x*/, 2\n]", []tokPos{
			{jpack.LineComment, "1:0-2:0"}, {jpack.LSquare, "2:0-1"}, {jpack.Integer, "2:1-2"},
			{jpack.Comma, "2:2-3"}, {jpack.BlockComment, "2:4-9"}, {jpack.Comma, "2:9-10"},
			{jpack.Integer, "2:11-12"}, {jpack.RSquare, "3:0-1"},
		}},
	}
	for _, tc := range tests {
		var got []tokPos
		s := jpack.NewScanner([]byte(tc.input))
		s.AllowComments(true)
		for s.Next() {
			got = append(got, tokPos{s.Token(), s.Location().String()})
		}
		if s.Err() != nil {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", tc.input, diff)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string
		want  string
		fail  bool
	}{
		{``, ``, true},                        // missing quotes
		{`"missing quote`, ``, true},          // missing quotes
		{`missing quote"`, ``, true},          // missing quotes
		{`""`, ``, false},                     // ok
		{`"ok go"`, "ok go", false},           // ok
		{`"abc\ndef"`, "abc\ndef", false},     // C escapes
		{`"\tabc\n"`, "\tabc\n", false},       // C escapes
		{`"\b\f\n\r\t"`, "\b\f\n\r\t", false}, // C escapes
		{`"a \u0026 b"`, "a & b", false},      // short Unicode escape
		{`"\ud83d\ude00"`, "\U0001f600", false}, // surrogate pair
		{`"\ud83d"`, "\ufffd", false},            // unpaired surrogate
		{`"\u"`, ``, true},                    // incomplete Unicode escape
		{`"\u00"`, ``, true},                  // incomplete Unicode escape
		{`"\u00x9"`, "\ufffd", false},         // invalid Unicode escape
		{`"\u019 "`, "\ufffd", false},         // invalid Unicode escape
		{`"a\"b"`, `a"b`, false},              // ok
		{`"a\\b\\cd"`, `a\b\cd`, false},       // ok
	}

	for _, test := range tests {
		got, err := jpack.Unquote([]byte(test.input))
		if err != nil {
			if !test.fail {
				t.Errorf("Unquote(%#q): got %v, want no error", test.input, err)
			} else {
				t.Logf("Unquote(%#q): got expected error: %v", test.input, err)
			}
		} else if test.fail {
			t.Errorf("Unquote(%#q): got nil, want error", test.input)
		}
		if cmp := string(got); cmp != test.want {
			t.Errorf("Unquote(%#q): got %#q, want %#q", test.input, cmp, test.want)
		}
	}
}
