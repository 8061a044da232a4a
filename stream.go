// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jpack

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// A Handler handles events from parsing an input stream. If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The text passed to Key and String has quotation marks removed and escapes
// decoded. If transient is false, text is a view into the input buffer and
// remains valid as long as that buffer does. If transient is true, text is
// only valid for the duration of the call, and the handler must copy it to
// retain it.
type Handler interface {
	// Begin a new object.
	BeginObject() error

	// End the most-recently-opened object, which has the given number of
	// key/value members.
	EndObject(members int) error

	// Begin a new array.
	BeginArray() error

	// End the most-recently-opened array, which has the given number of
	// elements.
	EndArray(elements int) error

	// Report the key of an object member. The value follows.
	Key(text []byte, transient bool) error

	// Report a null constant.
	Null() error

	// Report a Boolean constant.
	Bool(v bool) error

	// Report a negative integer.
	Int(v int64) error

	// Report a non-negative integer.
	Uint(v uint64) error

	// Report a number with a fraction or exponent, or an integer too large
	// to represent in 64 bits.
	Float(v float64) error

	// Report a string value.
	String(text []byte, transient bool) error
}

// CommentHandler is an optional interface that a Handler may implement to
// handle comment tokens. If a handler implements this method and comments are
// enabled in the scanner, Comment will be called for each comment token that
// occurs in the input. If the handler does not provide this method, comments
// will be silently discarded.
type CommentHandler interface {
	// Process the line or block comment with the given text.
	// Line comments include their leading "//" and trailing newline (if present).
	// Block comments include their leading "/*" and trailing "*/".
	Comment(text []byte)
}

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
type Stream struct {
	s      *Scanner
	tcomma bool // allow trailing commas in objects and arrays
}

// NewStream constructs a new Stream that consumes input from src.
// Non-transient text delivered to a handler refers into src.
func NewStream(src []byte) *Stream { return &Stream{s: NewScanner(src)} }

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream { return &Stream{s: s} }

// AllowComments configures the scanner associated with s to report (true) or
// reject (false) comment tokens.
func (s *Stream) AllowComments(ok bool) { s.s.AllowComments(ok) }

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// trailing commas in objects and arrays.
func (s *Stream) AllowTrailingCommas(ok bool) { s.tcomma = ok }

// Location reports the location of the most recent token read by s.
func (s *Stream) Location() Location { return s.s.Location() }

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *SyntaxError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input stream and delivers events to h until either an error
// occurs or the input is exhausted. Every top-level value in the input is
// delivered. In case of a syntax error, the returned error has type
// [*SyntaxError].
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	for s.nextToken(h) {
		s.parseElement(h)
	}
	s.checkScan()
	return nil
}

// ErrNoInput is reported by ParseOne when no further value is available.
var ErrNoInput = errors.New("no more input")

// ParseOne parses a single value from the input stream and delivers events to
// h until the value is complete or an error occurs. If no further value is
// available from the input, ParseOne returns ErrNoInput. In case of a syntax
// error, the returned error has type [*SyntaxError].
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)

	if !s.nextToken(h) {
		s.checkScan()
		return ErrNoInput
	}
	s.parseElement(h)
	return nil
}

// parseElement consumes a single value of any type.
// Precondition: token != Invalid.
func (s *Stream) parseElement(h Handler) {
	switch tok := s.s.Token(); tok {
	case LBrace:
		s.checkError(h.BeginObject())
		n := s.parseMembers(h)
		s.require(RBrace)
		s.checkError(h.EndObject(n))
	case LSquare:
		s.checkError(h.BeginArray())
		n := s.parseElements(h)
		s.require(RSquare)
		s.checkError(h.EndArray(n))
	case String:
		text, transient := s.unescape()
		s.checkError(h.String(text, transient))
	case Integer:
		s.parseInteger(h)
	case Number:
		v, err := s.s.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			s.syntaxError(err, "invalid number: %v", err)
		}
		s.checkError(h.Float(v))
	case True, False:
		s.checkError(h.Bool(tok == True))
	case Null:
		s.checkError(h.Null())
	case RBrace, RSquare, Comma, Colon:
		s.syntaxError(nil, "unexpected %v", tok)
	default:
		s.syntaxError(nil, "unknown token %v", tok)
	}
}

// parseInteger reports an integer token as Int if it is negative, or as Uint
// otherwise. The scanner has already checked the syntax, so a value that does
// not parse as a 64-bit integer is out of range and is reported as Float.
func (s *Stream) parseInteger(h Handler) {
	if s.s.Text()[0] == '-' {
		if v, err := s.s.Int64(); err == nil {
			s.checkError(h.Int(v))
			return
		}
	} else if v, err := s.s.Uint64(); err == nil {
		s.checkError(h.Uint(v))
		return
	}
	f, err := s.s.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		s.syntaxError(err, "invalid integer: %v", err)
	}
	s.checkError(h.Float(f))
}

// parseMembers consumes zero of more key:value object members, and returns
// the number of members consumed.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (s *Stream) parseMembers(h Handler) int {
	tok := s.advance(h, RBrace, String)
	if tok == RBrace {
		return 0 // end of object
	}
	var n int
	for {
		// Parse a single member: "key": value
		key, transient := s.unescape()
		s.checkError(h.Key(key, transient))
		s.advance(h, Colon)
		s.advance(h)
		s.parseElement(h)
		n++

		// Check whether we have more members (",") or are done ("}").
		tok := s.advance(h, RBrace, Comma)
		if tok == RBrace {
			return n // end of object
		} else if s.tcomma {
			// If trailing commas are allowed and the next token is a close
			// bracket, consider this a valid end of the object. Otherwise, it
			// must be a key for a subsequent element.
			next := s.advance(h, String, RBrace)
			if next == RBrace {
				return n // end of object with trailing comma
			}
		} else {
			s.advance(h, String) // advance to next key
		}
	}
}

// parseElements consumes zero or more comma-separated array values, and
// returns the number of values consumed.
// Precondition: token == LSquare.
// Postcondition: token == RSquare.
func (s *Stream) parseElements(h Handler) int {
	if tok := s.advance(h); tok == RSquare {
		return 0 // end of array
	}
	s.parseElement(h)
	n := 1
	for {
		tok := s.advance(h, RSquare, Comma)
		if tok == RSquare {
			return n // end of array
		}

		// If trailing commas are allowed and the next token is a close bracket,
		// consider this a valid end of the array; otherwise it will fail on the
		// next element
		if next := s.advance(h); s.tcomma && next == RSquare {
			return n // end of array with trailing comma
		}
		s.parseElement(h)
		n++
	}
}

// nextToken advances to the next non-comment token, and reports whether one
// is available.
func (s *Stream) nextToken(h Handler) bool {
	for s.s.Next() {
		// If we see a comment token, pass it to the handler if it implements
		// CommentHandler. Either way, discard the comment and fetch the next
		// available token for the rest of the parser.
		if tok := s.s.Token(); tok == LineComment || tok == BlockComment {
			if ch, ok := h.(CommentHandler); ok {
				ch.Comment(s.s.Text())
			}
			continue
		}
		return true
	}
	return false
}

// checkScan reports a syntax error if the scanner stopped for a reason other
// than the end of input.
func (s *Stream) checkScan() {
	if err := s.s.Err(); err != nil {
		s.syntaxError(err, "invalid input: %v", err)
	}
}

func (s *Stream) advance(h Handler, tokens ...Token) Token {
	if !s.nextToken(h) {
		s.checkScan()
		s.syntaxError(nil, "%v", tokLabel(tokens, "end of input"))
	}
	tok := s.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		s.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (s *Stream) require(token Token) {
	if tok := s.s.Token(); tok != token {
		s.syntaxError(nil, "expected %v, got %v", token, tok)
	}
}

func (s *Stream) unescape() ([]byte, bool) {
	text, transient, err := s.s.Unescape()
	if err != nil {
		s.syntaxError(err, "invalid string: %v", err)
	}
	return text, transient
}

func (s *Stream) syntaxError(err error, msg string, args ...any) {
	panic(&SyntaxError{
		Location: s.s.Location().First,
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("expected more input, got %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// SyntaxError is the concrete type of errors reported by the stream parser.
type SyntaxError struct {
	Location LineCol
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
