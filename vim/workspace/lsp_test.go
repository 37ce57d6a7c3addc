package workspace

import (
	"reflect"
	"testing"

	"github.com/dhamidi/vimls/vim/parser"
)

func TestIdentifierSpans(t *testing.T) {
	// Offsets: g:x at [4,7) and [21,24), foo at [17,20), y at [26,27).
	tree := parser.Parse([]byte("let g:x = 1\ncall foo(g:x, y)\n"))

	tests := []struct {
		name   string
		offset int
		want   []parser.Span
	}{
		{"start of identifier", 4, []parser.Span{{Start: 4, End: 7}, {Start: 21, End: 24}}},
		{"inside identifier", 6, []parser.Span{{Start: 4, End: 7}, {Start: 21, End: 24}}},
		{"second occurrence", 22, []parser.Span{{Start: 4, End: 7}, {Start: 21, End: 24}}},
		{"cursor right after word", 7, []parser.Span{{Start: 4, End: 7}, {Start: 21, End: 24}}},
		{"single occurrence", 17, []parser.Span{{Start: 17, End: 20}}},
		{"short name", 26, []parser.Span{{Start: 26, End: 27}}},
		{"on a keyword", 0, nil},
		{"on a number", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identifierSpans(tree, tt.offset)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("identifierSpans(%d) = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestIdentifierAtIgnoresLeadingSpace(t *testing.T) {
	// Offset 3 is the space before the identifier, not the identifier.
	tree := parser.Parse([]byte("let a = 1\n"))
	if _, ok := identifierAt(tree, 3); ok {
		t.Error("identifierAt in leading whitespace: ok = true, want false")
	}
	if _, ok := identifierAt(tree, 4); !ok {
		t.Error("identifierAt on identifier: ok = false, want true")
	}
}

func TestBlockFolds(t *testing.T) {
	// function [0,46) with body [13,34), if [13,34) with body [18,28).
	tree := parser.Parse([]byte("function f()\nif 1\nlet a = 1\nendif\nendfunction\n"))

	want := []parser.Span{
		{Start: 0, End: 34},
		{Start: 13, End: 28},
	}
	if got := blockFolds(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("blockFolds = %v, want %v", got, want)
	}
}

func TestBlockFoldsSkipsEmptyBody(t *testing.T) {
	tree := parser.Parse([]byte("if 1\nendif\n"))
	if got := blockFolds(tree); got != nil {
		t.Errorf("blockFolds = %v, want nil", got)
	}
}

func TestBlockFoldsUnterminatedBlock(t *testing.T) {
	tree := parser.Parse([]byte("if 1\nlet a = 1\n"))
	want := []parser.Span{{Start: 0, End: 15}}
	if got := blockFolds(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("blockFolds = %v, want %v", got, want)
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///tmp/plugin.vim", "/tmp/plugin.vim"},
		{"file:///home/u/my%20plugin.vim", "/home/u/my plugin.vim"},
		{"/already/a/path.vim", "/already/a/path.vim"},
	}

	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if err != nil {
			t.Errorf("uriToPath(%q): %v", tt.uri, err)
			continue
		}
		if got != tt.want {
			t.Errorf("uriToPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
