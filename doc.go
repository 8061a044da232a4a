// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jpack implements a JSON scanner and an event-driven stream parser,
// the front end for building compact tagged-value trees.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON held in memory.
// Construct a scanner from a byte slice and call its Next method to iterate
// over the tokens. Token text is a view into the source, not a copy:
//
//	s := jpack.NewScanner(input)
//	for s.Next() {
//	   log.Printf("Next token: %v %q", s.Token(), s.Text())
//	}
//
// Next returns false when the input has been fully consumed, or when a
// lexical error occurs. In the latter case, Err reports the error:
//
//	if err := s.Err(); err != nil {
//	   log.Fatalf("Scanning failed: %v", err)
//	}
//
// # Streaming
//
// The Stream type implements an event-driven stream parser for JSON.  The
// parser works by calling methods on a Handler value to report the structure
// of the input. In case of error, parsing is terminated and an error of
// concrete type *jpack.SyntaxError is returned.
//
// Construct a Stream from a byte slice, and call its Parse method. Parse
// returns nil if the input was fully processed without error. If a Handler
// method reports an error, parsing stops and that error is returned.
//
//	s := jpack.NewStream(input)
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns ErrNoInput if no further values are available.
//
// # Handlers
//
// The Handler interface accepts parser events from a Stream. The methods of
// a handler correspond to the syntax of JSON values:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }, with the member count
//	array      | BeginArray, EndArray      | [ ... ], with the element count
//	member     | Key                       | "key": (the value follows)
//	scalar     | Null, Bool, Int, Uint,    | null, true, false, numbers
//	           | Float                     |
//	string     | String                    | "..."
//
// Strings and keys are delivered unquoted. A string without escapes is passed
// as a view into the input buffer; a string with escapes is decoded into a
// scratch buffer and flagged as transient, so the handler knows it must copy
// the text to keep it.
//
// The parser ensures that corresponding Begin and End methods are correctly
// paired, or that a SyntaxError is reported.
//
// The tree package provides the Handler that builds tagged-value trees.
package jpack
