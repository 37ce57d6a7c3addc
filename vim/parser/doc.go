// Package parser provides an error-tolerant, lossless parser for a
// subset of Vim script.
//
// # Overview
//
// The parser turns source bytes into a concrete syntax tree that keeps
// every byte of the input, whitespace, comments and line continuations
// included. It is built for editor tooling where the document is
// malformed most of the time: parsing never fails, it recovers and
// reports diagnostics instead.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │  (green)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │                   │
//	                           ▼                   ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │   Trivia    │     │   Cursor    │
//	                    │ Attachment  │     │   (red)     │
//	                    └─────────────┘     └─────────────┘
//
// # Green and Red Layers
//
// Nodes and tokens (the green layer) carry only kind, width and text.
// They know nothing about where they sit in the document, which lets
// one subtree appear in many tree versions at once. Absolute positions
// come from the red layer: a Cursor pairs a green node with the offset
// where this particular occurrence starts, computed on the way down.
//
//	tree := parser.Parse(text)
//	root := tree.Root()                  // *Cursor at offset 0
//	stmt := root.Children()[0]           // first statement
//	stmt.Span()                          // absolute byte span
//
// # Trivia
//
// Whitespace, comments and line continuations never become tokens.
// Each run attaches as leading trivia of the next token, so the token
// stream alone reproduces the input byte for byte. Trivia after the
// last token belongs to the EOF token that ends every tree.
//
// # Error Recovery
//
// The parser never panics and never drops input. Malformed stretches
// become ErrorNode children covering the offending tokens, and each
// problem is reported once:
//
//	Root
//	├── LetStmt
//	│   ├── let
//	│   ├── ErrorNode("expected identifier, found `=`")
//	│   └── newline
//	└── EOF
//
// Recovery is bounded by line structure: a broken statement skips to
// its line end, an unknown leading token is consumed alone, and an
// unterminated block closes at end of file with its children kept.
//
// # Incremental Reparsing
//
// Reparse applies a byte edit to an existing tree and reuses every
// statement the edit cannot have touched, descending into block bodies
// so an edit inside an if body keeps the header and closer:
//
//	next := parser.Reparse(tree, parser.Edit{Start: 10, End: 11, NewText: []byte("ab")})
//
// The result is always equivalent to parsing the edited text from
// scratch; when splicing cannot be shown safe the driver parses the
// whole text instead.
//
// # Thread Safety
//
// Trees are immutable after construction and safe for concurrent
// readers. A Parser or Lexer instance is single-use and not safe for
// concurrent use.
package parser
