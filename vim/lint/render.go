package lint

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/dhamidi/vimls/vim/parser"
)

// Renderer writes findings the way a compiler does: a header naming
// file and position, the offending line, and a caret run under the
// span. Color is decided once at construction so output stays stable
// no matter what the process is attached to.
type Renderer struct {
	w          io.Writer
	pathColor  *color.Color
	errorColor *color.Color
	caretColor *color.Color
}

func NewRenderer(w io.Writer, useColor bool) *Renderer {
	r := &Renderer{
		w:          w,
		pathColor:  color.New(color.Bold),
		errorColor: color.New(color.FgRed, color.Bold),
		caretColor: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{r.pathColor, r.errorColor, r.caretColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// RenderFile writes every finding for one result plus the per-file
// count line, and returns the number of findings.
func (r *Renderer) RenderFile(res FileResult) int {
	if res.Err != nil {
		fmt.Fprintf(r.w, "%s %v\n", r.pathColor.Sprintf("%s:", res.Path), res.Err)
		return 1
	}
	if len(res.Diagnostics) == 0 {
		return 0
	}
	index := parser.NewLineIndex(res.Source)
	for _, d := range res.Diagnostics {
		r.renderDiagnostic(res.Path, res.Source, index, d)
	}
	fmt.Fprintf(r.w, "Error count: %d\n", len(res.Diagnostics))
	return len(res.Diagnostics)
}

// RenderSummary writes the total across every linted file.
func (r *Renderer) RenderSummary(total int) {
	fmt.Fprintf(r.w, "Total error count: %d\n", total)
}

func (r *Renderer) renderDiagnostic(path string, source []byte, index *parser.LineIndex, d parser.Diagnostic) {
	line, col := index.Position(d.Span.Start)

	fmt.Fprintf(r.w, "%s %s %s\n",
		r.pathColor.Sprintf("%s:%d:%d:", path, line+1, col+1),
		r.errorColor.Sprintf("%s:", d.Severity),
		d.Message)

	lineText := lineAt(source, index.Offset(line, 0))
	fmt.Fprintf(r.w, "%4d | %s\n", line+1, lineText)

	// Pad in display cells, not bytes, so the caret lines up under
	// tabs and wide runes.
	pad := runewidth.StringWidth(lineText[:min(col, len(lineText))])
	underline := "^" + strings.Repeat("~", underlineWidth(lineText, col, d.Span.Len())-1)
	fmt.Fprintf(r.w, "     | %s%s\n", strings.Repeat(" ", pad), r.caretColor.Sprint(underline))
}

// lineAt returns the line beginning at start without its newline.
func lineAt(source []byte, start int) string {
	rest := source[start:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return string(rest)
}

// underlineWidth converts the span to display cells, clamped to its
// first line. Zero-width spans still get one caret.
func underlineWidth(lineText string, col, spanLen int) int {
	if col > len(lineText) {
		return 1
	}
	end := col + spanLen
	if end > len(lineText) {
		end = len(lineText)
	}
	width := runewidth.StringWidth(lineText[col:end])
	if width < 1 {
		return 1
	}
	return width
}
