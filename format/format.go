package format

import (
	"bytes"

	"github.com/dhamidi/vimls/vim/parser"
)

// Format parses source and prints it back in the house layout: two
// spaces of indentation per block level, single spaces around operators
// and after commas, comments kept where they were. Statements the
// parser flagged as broken are copied through byte for byte, so
// formatting never loses text and the result always parses again.
func Format(source []byte) ([]byte, error) {
	tree := parser.Parse(source)
	var buf bytes.Buffer
	if err := NewVimPrettyPrinter(&buf).Print(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
