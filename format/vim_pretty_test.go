package format

import (
	"strings"
	"testing"
)

func formatSource(t *testing.T, input string) string {
	t.Helper()
	out, err := Format([]byte(input))
	if err != nil {
		t.Fatalf("Format(%q): %v", input, err)
	}
	return string(out)
}

func TestFormatStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normalizes let spacing",
			input:    "let   a   =1\n",
			expected: "let a = 1\n",
		},
		{
			name:     "drops leading indent at top level",
			input:    "    let a = 1\n",
			expected: "let a = 1\n",
		},
		{
			name:     "call arguments",
			input:    "call foo( a,b )\n",
			expected: "call foo(a, b)\n",
		},
		{
			name:     "concat operator",
			input:    "let x = a.b\n",
			expected: "let x = a . b\n",
		},
		{
			name:     "inequality operator",
			input:    "let ok = a!=#'x'\n",
			expected: "let ok = a !=# 'x'\n",
		},
		{
			name:     "nested calls",
			input:    "call outer(inner( a ),b)\n",
			expected: "call outer(inner(a), b)\n",
		},
		{
			name:     "missing final newline",
			input:    "let a = 1",
			expected: "let a = 1\n",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSource(t, tt.input); got != tt.expected {
				t.Errorf("Format(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "if body indents",
			input:    "if x\ncall f()\nendif\n",
			expected: "if x\n  call f()\nendif\n",
		},
		{
			name:     "nested blocks indent per level",
			input:    "if a\nif b\ncall f()\nendif\nendif\n",
			expected: "if a\n  if b\n    call f()\n  endif\nendif\n",
		},
		{
			name:     "function header",
			input:    "function!  s:go( a, b )  abort\nlet c = concat(a,b)\nendfunction\n",
			expected: "function! s:go(a, b) abort\n  let c = concat(a, b)\nendfunction\n",
		},
		{
			name:     "function without arguments",
			input:    "function f()\nendfunction\n",
			expected: "function f()\nendfunction\n",
		},
		{
			name:     "for over pairs",
			input:    "for [ k,v ] in pairs\ncall emit(k,v)\nendfor\n",
			expected: "for [k, v] in pairs\n  call emit(k, v)\nendfor\n",
		},
		{
			name:     "for single variable",
			input:    "for item in all\ncall use(item)\nendfor\n",
			expected: "for item in all\n  call use(item)\nendfor\n",
		},
		{
			name:     "overindented body comes back",
			input:    "if x\n        let a = 1\nendif\n",
			expected: "if x\n  let a = 1\nendif\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSource(t, tt.input); got != tt.expected {
				t.Errorf("Format(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatTrivia(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trailing comment keeps one space",
			input:    "let a = 1    \" note\n",
			expected: "let a = 1 \" note\n",
		},
		{
			name:     "comment line indents with its block",
			input:    "if x\n\" why\ncall f()\nendif\n",
			expected: "if x\n  \" why\n  call f()\nendif\n",
		},
		{
			name:     "blank lines survive",
			input:    "let a = 1\n\n\nlet b = 2\n",
			expected: "let a = 1\n\n\nlet b = 2\n",
		},
		{
			name:     "continuation flattens",
			input:    "let long = 'a'\n      \\ . 'b'\n",
			expected: "let long = 'a' . 'b'\n",
		},
		{
			name:     "comment without final newline",
			input:    "\" note",
			expected: "\" note\n",
		},
		{
			name:     "comment buried in continuation stays verbatim",
			input:    "let a = 1 \" note\n      \\ . 2\n",
			expected: "let a = 1 \" note\n      \\ . 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSource(t, tt.input); got != tt.expected {
				t.Errorf("Format(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatBrokenInput(t *testing.T) {
	// Anything the parser could not fully understand comes back byte
	// for byte.
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing variable", input: "let = 5\n"},
		{name: "missing value", input: "let a =\n"},
		{name: "unterminated block", input: "if x\nlet a = 1\n"},
		{name: "stray closer", input: "endif\n"},
		{name: "unknown statement", input: "wibble a, b\n"},
		{name: "unterminated string", input: "let a = 'oops\n"},
		{name: "call without parens", input: "call f\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSource(t, tt.input); got != tt.input {
				t.Errorf("Format(%q) = %q, want input unchanged", tt.input, got)
			}
		})
	}
}

func TestFormatDropsTrailingComma(t *testing.T) {
	got := formatSource(t, "call f(a,)\n")
	if got != "call f(a)\n" {
		t.Errorf("Format dropped comma wrong: got %q", got)
	}
}

func TestFormatBrokenLineKeepsNeighbors(t *testing.T) {
	input := "let a = 1\nqqq zzz\nlet b = 2\n"
	got := formatSource(t, input)
	if got != input {
		t.Errorf("Format(%q) = %q, want input unchanged", input, got)
	}
}

func TestFormatBrokenBodyInsideCleanBlock(t *testing.T) {
	// The block header and closer still come out canonically; only
	// the broken line inside keeps its original text.
	input := "if  x\nlet = 2\nendif\n"
	got := formatSource(t, input)
	want := "if x\nlet = 2\nendif\n"
	if got != want {
		t.Errorf("Format(%q) = %q, want %q", input, got, want)
	}
}

func TestSetIndentWidth(t *testing.T) {
	var sb strings.Builder
	p := NewVimPrettyPrinter(&sb)
	p.SetIndentWidth(4)
	if p.indentStr != "    " {
		t.Errorf("SetIndentWidth(4): indentStr = %q", p.indentStr)
	}
	p.SetIndentWidth(0)
	if p.indentStr != "    " {
		t.Errorf("SetIndentWidth(0) should not change the indent, got %q", p.indentStr)
	}
}
