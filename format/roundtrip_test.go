package format

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/dhamidi/vimls/vim/parser"
)

// roundTripSources covers the statement mix the formatter sees in the
// wild: clean scripts, comment and blank layouts, continuations, and
// every recovery path the parser has. Formatting must never introduce
// a diagnostic and must be a fixpoint.
var roundTripSources = []struct {
	name   string
	source string
}{
	{"clean script", "let g:loaded = 1\ncall setup(g:loaded)\n"},
	{"nested blocks", "function! s:init(opts) abort\nif ready\nfor [k, v] in a:opts\ncall apply(k, v)\nendfor\nendif\nendfunction\n"},
	{"comments and blanks", "\" header\n\nlet a = 1 \" trailing\n\n\" footer\n"},
	{"continuation", "let msg = 'hello'\n      \\ . ' world'\n"},
	{"trailing comma", "call f(a,)\n"},
	{"broken statement between good ones", "let a = 1\nqqq zzz\nlet b = 2\n"},
	{"unterminated block", "if x\nlet a = 1\n"},
	{"stray closer", "endif\n"},
	{"unterminated string", "let a = 'oops\nlet b = 2\n"},
	{"comment hidden by continuation", "let a = 1 \" note\n      \\ . 2\n"},
	{"no final newline", "let a = 1"},
	{"comment at end of file", "let a = 1\n\" done"},
	{"empty", ""},
	{"only blank lines", "\n\n\n"},
}

func TestFormatRoundTrip(t *testing.T) {
	for _, tt := range roundTripSources {
		t.Run(tt.name, func(t *testing.T) {
			source := []byte(tt.source)
			before := parser.Parse(source)

			formatted, err := Format(source)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}

			after := parser.Parse(formatted)
			if len(after.Diagnostics()) > len(before.Diagnostics()) {
				t.Errorf("formatting introduced diagnostics:\nbefore: %v\nafter:  %v\noutput: %q",
					before.Diagnostics(), after.Diagnostics(), formatted)
			}

			again, err := Format(formatted)
			if err != nil {
				t.Fatalf("Format of formatted output: %v", err)
			}
			if !bytes.Equal(again, formatted) {
				t.Errorf("formatting is not a fixpoint:\nfirst:  %q\nsecond: %q", formatted, again)
			}
		})
	}
}

// tokenShape flattens a tree into kind/text pairs, dropping trivia and
// positions so that shapes compare equal across whitespace changes.
func tokenShape(tree *parser.Tree) []string {
	var shape []string
	for _, tok := range tree.Root().Tokens() {
		shape = append(shape, fmt.Sprintf("%s %q", tok.Kind, tok.Text))
	}
	return shape
}

func nodeShape(b *strings.Builder, c *parser.Cursor, depth int) {
	fmt.Fprintf(b, "%*s%s\n", depth*2, "", c.Kind())
	for _, child := range c.Children() {
		nodeShape(b, child, depth+1)
	}
}

// TestFormatPreservesShape checks that formatting clean sources only
// moves whitespace around: the token stream and node structure come out
// identical.
func TestFormatPreservesShape(t *testing.T) {
	sources := []struct {
		name   string
		source string
	}{
		{"statements", "let   a=1\ncall f( a,b )\n"},
		{"blocks", "if a\nif b\ncall f()\nendif\nendif\n"},
		{"function", "function! s:go(a, b) abort\nlet c = concat(a, b)\nendfunction\n"},
		{"for loop", "for [k, v] in pairs\ncall emit(k, v)\nendfor\n"},
		{"continuation", "let long = 'a'\n      \\ . 'b'\n"},
		{"comments", "\" note\nlet a = 1 \" trailing\n\nlet b = 2\n"},
	}
	for _, tt := range sources {
		t.Run(tt.name, func(t *testing.T) {
			source := []byte(tt.source)
			before := parser.Parse(source)
			if len(before.Diagnostics()) != 0 {
				t.Fatalf("source must parse cleanly, got %v", before.Diagnostics())
			}

			formatted, err := Format(source)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			after := parser.Parse(formatted)
			if len(after.Diagnostics()) != 0 {
				t.Fatalf("formatted output has diagnostics: %v\noutput: %q",
					after.Diagnostics(), formatted)
			}

			gotTokens := tokenShape(after)
			wantTokens := tokenShape(before)
			if len(gotTokens) != len(wantTokens) {
				t.Fatalf("token count changed by formatting: %d -> %d\noutput: %q",
					len(wantTokens), len(gotTokens), formatted)
			}
			for i := range wantTokens {
				if gotTokens[i] != wantTokens[i] {
					t.Errorf("token %d changed by formatting: %s -> %s\noutput: %q",
						i, wantTokens[i], gotTokens[i], formatted)
				}
			}

			var gotNodes, wantNodes strings.Builder
			nodeShape(&gotNodes, after.Root(), 0)
			nodeShape(&wantNodes, before.Root(), 0)
			if gotNodes.String() != wantNodes.String() {
				t.Errorf("node structure changed by formatting:\nbefore:\n%s\nafter:\n%s\noutput: %q",
					wantNodes.String(), gotNodes.String(), formatted)
			}
		})
	}
}
