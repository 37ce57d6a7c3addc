package parser

import (
	"sort"
	"unicode/utf8"
)

// utf16RuneLen mirrors unicode/utf16.RuneLen, which requires Go 1.23;
// this toolchain is older. It returns the number of 16-bit words in the
// UTF-16 encoding of the rune, or -1 if the rune is not encodable.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= '\U0010FFFF':
		return 2
	default:
		return -1
	}
}

// LineIndex converts between byte offsets and line/column positions for
// one version of a document. Lines and columns are zero-based; columns
// count bytes unless a UTF-16 method is used. Build one per text
// snapshot and share it freely, it is immutable.
type LineIndex struct {
	text       []byte
	lineStarts []int
}

// NewLineIndex scans text once and records where each line begins.
// Only '\n' terminates a line; a '\r' before it counts as content of
// the line it ends.
func NewLineIndex(text []byte) *LineIndex {
	lineStarts := []int{0}
	for i, b := range text {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: lineStarts}
}

// LineCount returns the number of lines, counting the (possibly empty)
// line after a final newline.
func (ix *LineIndex) LineCount() int { return len(ix.lineStarts) }

// Position converts a byte offset into a line and byte column. Offsets
// past the end of text clamp to the final position.
func (ix *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(ix.text) {
		offset = len(ix.text)
	}
	// First line start greater than offset, minus one, is our line.
	line = sort.Search(len(ix.lineStarts), func(i int) bool {
		return ix.lineStarts[i] > offset
	}) - 1
	return line, offset - ix.lineStarts[line]
}

// Offset converts a line and byte column back into a byte offset.
// Out-of-range lines clamp to the last line; columns clamp to the line
// length, where the terminating newline is not part of the line.
func (ix *LineIndex) Offset(line, col int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(ix.lineStarts) {
		line = len(ix.lineStarts) - 1
	}
	start := ix.lineStarts[line]
	end := ix.lineEnd(line)
	if col < 0 {
		col = 0
	}
	if col > end-start {
		col = end - start
	}
	return start + col
}

// lineEnd returns the offset just past the last content byte of line,
// excluding its '\n' terminator.
func (ix *LineIndex) lineEnd(line int) int {
	if line+1 < len(ix.lineStarts) {
		return ix.lineStarts[line+1] - 1
	}
	return len(ix.text)
}

// ColumnUTF16 converts a byte offset into the UTF-16 code unit column
// on its line, the unit the language server protocol positions use.
func (ix *LineIndex) ColumnUTF16(offset int) int {
	line, byteCol := ix.Position(offset)
	start := ix.lineStarts[line]
	col := 0
	for i := start; i < start+byteCol; {
		r, size := utf8.DecodeRune(ix.text[i:])
		col += utf16RuneLen(r)
		i += size
	}
	return col
}

// OffsetOfUTF16 converts a line and UTF-16 code unit column into a byte
// offset. Columns beyond the line clamp to its end.
func (ix *LineIndex) OffsetOfUTF16(line, col16 int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(ix.lineStarts) {
		line = len(ix.lineStarts) - 1
	}
	start := ix.lineStarts[line]
	end := ix.lineEnd(line)
	i := start
	for col16 > 0 && i < end {
		r, size := utf8.DecodeRune(ix.text[i:])
		col16 -= utf16RuneLen(r)
		i += size
	}
	return i
}
