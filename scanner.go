// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jpack

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jpack/internal/escape"
	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null

	BlockComment // comment: /* ... */
	LineComment  // comment: // ... <LF>
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",

	BlockComment: "block comment",
	LineComment:  "line comment",
}

func (t Token) String() string {
	if int(t) >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[t]
}

// A Scanner reads lexical tokens from a source buffer. Each call to Next
// advances the scanner to the next token, or reports an error.
//
// Token text is a view into the source buffer. The caller must not modify the
// buffer while the scanner, or any text it returned, is in use.
type Scanner struct {
	src      []byte
	comments bool   // allow comments
	dec      []byte // scratch buffer for unescaped strings
	tok      Token
	esc      bool // current string token contains escapes
	err      error

	pos, end int // start and end offsets of current token
	last     int // size in bytes of last-read input rune

	// Line and column before the last-read rune, for unrune.
	prevLine, prevCol int

	// Apparent line and column offsets (0-based)
	pline, pcol int
	eline, ecol int
}

// NewScanner constructs a new lexical scanner that consumes input from src.
func NewScanner(src []byte) *Scanner { return &Scanner{src: src} }

// AllowComments configures the scanner to report (true) or reject (false)
// comment tokens. Comments are a non-standard extension of JSON.  If
// enabled, C++ style block comments (/* ... */) and line comments (// ...)
// are recognized and emitted as tokens.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// Next advances s to the next token of the input and reports whether a token
// is available. At the end of the input Next returns false and Err returns
// nil. Otherwise, when Next returns false, Err reports what went wrong.
func (s *Scanner) Next() bool {
	s.err = nil
	s.tok = Invalid
	s.esc = false
	s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol

	for {
		ch, err := s.rune()
		if err != nil {
			return false // end of input
		}

		// Discard whitespace.
		if isSpace(ch) {
			s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
			continue
		}

		// Handle punctuation.
		if t, ok := selfDelim(ch); ok {
			s.tok = t
			return true
		}

		switch {
		case isNumStart(ch):
			err = s.scanNumber(ch)
		case ch == '"':
			err = s.scanString()
		case ch == '/' && s.comments:
			err = s.scanComment()
		case ch == 't':
			err = s.scanName(True, "true")
		case ch == 'f':
			err = s.scanName(False, "false")
		case ch == 'n':
			err = s.scanName(Null, "null")
		default:
			err = s.failf("unexpected %q", ch)
		}
		return err == nil
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next, or nil at the end of input.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token. The result is a view
// into the source buffer.
func (s *Scanner) Text() []byte { return s.src[s.pos:s.end:s.end] }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return append([]byte(nil), s.Text()...) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.pline + 1, Column: s.pcol},
		Last:  LineCol{Line: s.eline + 1, Column: s.ecol},
	}
}

// Unescape returns the contents of the current string token with its
// quotation marks removed and its escape sequences decoded.
//
// If the token has no escape sequences, the result is a view into the source
// buffer and transient is false. Otherwise the contents are decoded into a
// scratch buffer that the next call to Unescape overwrites, and transient is
// true.
func (s *Scanner) Unescape() (text []byte, transient bool, err error) {
	if s.tok != String {
		return nil, false, fmt.Errorf("token is %v, not string", s.tok)
	}
	body := s.src[s.pos+1 : s.end-1 : s.end-1]
	if !s.esc {
		return body, false, nil
	}
	dec, err := escape.Unquote(s.dec[:0], mem.B(body))
	if err != nil {
		return nil, false, err
	}
	s.dec = dec
	return dec, true, nil
}

// Int64 parses the text of the current token as a signed integer.
func (s *Scanner) Int64() (int64, error) { return mem.ParseInt(mem.B(s.Text()), 10, 64) }

// Uint64 parses the text of the current token as an unsigned integer.
func (s *Scanner) Uint64() (uint64, error) { return mem.ParseUint(mem.B(s.Text()), 10, 64) }

// Float64 parses the text of the current token as a floating-point number.
func (s *Scanner) Float64() (float64, error) { return mem.ParseFloat(mem.B(s.Text()), 64) }

func (s *Scanner) scanString() error {
	for {
		ch, err := s.rune()
		if err != nil {
			return s.failf("unterminated string")
		}
		switch {
		case ch == '"':
			s.tok = String
			return nil
		case ch == '\\':
			s.esc = true
			if err := s.scanEscape(); err != nil {
				return err
			}
		case ch < ' ':
			return s.failf("unescaped control %q", ch)
		case ch == utf8.RuneError && s.last == 1:
			return s.failf("invalid UTF-8 in string")
		}
	}
}

// scanEscape consumes the remainder of a \-escape.
func (s *Scanner) scanEscape() error {
	ch, err := s.rune()
	if err != nil {
		return s.failf("incomplete escape sequence")
	}
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return nil
	case 'u':
		if err := s.readHex4(); err != nil {
			return s.failf("invalid Unicode escape: %w", err)
		}
		return nil
	}
	return s.failf("invalid %q after escape", ch)
}

func (s *Scanner) scanNumber(start rune) error {
	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start.
		if _, err := s.require(isDigit, "digit"); err != nil {
			return err
		}
	}
	s.skipWhile(isDigit)

	// Check for extra leading zeroes, which are disallowed by the JSON spec.
	// That is: 0.12 is OK, 01.2 is not.
	if hasExtraLeadingZeroes(s.Text()) {
		return s.failf("extra leading zeroes")
	}
	s.tok = Integer

	// If a decimal point follows, consume a fractional part.
	if s.accept('.') {
		if s.skipWhile(isDigit) == 0 {
			return s.failf("no digits after decimal point")
		}
		s.tok = Number
	}

	// If an exponent follows, consume it.
	if s.accept('e') || s.accept('E') {
		sign := s.accept('-') || s.accept('+')
		if s.skipWhile(isDigit) == 0 {
			if sign {
				return s.failf("missing exponent digits")
			}
			return s.failf("want sign or digit in exponent")
		}
		s.tok = Number
	}
	return nil
}

func (s *Scanner) scanComment() error {
	ch, err := s.rune()
	if err != nil {
		return s.failf("incomplete comment")
	}
	switch ch {
	case '/': // line comment to LF, inclusive
		s.readWhile(isNotLF)
		s.tok = LineComment
		return nil

	case '*': // block comment
		for {
			if _, _, err := s.readWhile(isNotStar); err != nil {
				return s.failf("unterminated block comment")
			}

			// We have "*"; check whether "/" follows to end the comment.
			next, err := s.rune()
			if err != nil {
				return s.failf("unterminated block comment")
			} else if next == '/' {
				s.tok = BlockComment
				return nil
			} else if next == '*' {
				s.unrune() // it may begin the terminator
			}
		}

	default:
		s.unrune()
		return s.failf("invalid %q in comment", ch)
	}
}

func (s *Scanner) scanName(tok Token, want string) error {
	s.skipWhile(isNameRune)
	if got := mem.B(s.Text()); !got.Equal(mem.S(want)) {
		return s.failf("unknown constant %q", got.StringCopy())
	}
	s.tok = tok
	return nil
}

func (s *Scanner) rune() (rune, error) {
	if s.end >= len(s.src) {
		s.last = 0
		return 0, io.EOF
	}
	ch, nb := rune(s.src[s.end]), 1
	if ch >= utf8.RuneSelf {
		ch, nb = utf8.DecodeRune(s.src[s.end:])
	}
	s.last = nb
	s.prevLine, s.prevCol = s.eline, s.ecol
	s.end += nb
	if ch == '\n' {
		s.eline++
		s.ecol = 0
	} else {
		s.ecol += nb
	}
	return ch, nil
}

func (s *Scanner) unrune() {
	if s.last == 0 {
		return
	}
	s.end -= s.last
	s.eline, s.ecol = s.prevLine, s.prevCol
	s.last = 0
}

// accept consumes the next rune if it equals want, and reports whether it did.
func (s *Scanner) accept(want rune) bool {
	ch, err := s.rune()
	if err == nil && ch == want {
		return true
	}
	s.unrune()
	return false
}

// require reads a single rune matching f from the input, or returns an error
// mentioning the desired label.
func (s *Scanner) require(f func(rune) bool, label string) (rune, error) {
	ch, err := s.rune()
	if err != nil {
		return 0, s.failf("want %s, got error: %w", label, err)
	} else if !f(ch) {
		s.unrune()
		return 0, s.failf("got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input until EOF or until a rune
// not matching f is found. The first non-matching rune (if any) is consumed
// and returned. The int reports the number of matching runes consumed.
func (s *Scanner) readWhile(f func(rune) bool) (int, rune, error) {
	var nr int
	for {
		ch, err := s.rune()
		if err != nil {
			return nr, 0, err
		} else if !f(ch) {
			return nr, ch, nil
		}
		nr++
	}
}

// skipWhile is as readWhile, but leaves the first non-matching rune unread.
func (s *Scanner) skipWhile(f func(rune) bool) int {
	nr, _, err := s.readWhile(f)
	if err == nil {
		s.unrune()
	}
	return nr
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() error {
	for range 4 {
		ch, err := s.rune()
		if err != nil {
			return err
		} else if !isHexDigit(ch) {
			return fmt.Errorf("not a hex digit: %q", ch)
		}
	}
	return nil
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) failf(msg string, args ...any) error {
	s.err = posError{s.end, fmt.Errorf(msg, args...)}
	return s.err
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNotStar(ch rune) bool  { return ch != '*' }
func isNotLF(ch rune) bool    { return ch != '\n' }
func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, which RFC 8259 disallows.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1
	}
	return false
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Token, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
