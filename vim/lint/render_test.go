package lint

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/vimls/vim/parser"
)

func lintResult(path, source string) FileResult {
	content := []byte(source)
	return FileResult{
		Path:        path,
		Source:      content,
		Diagnostics: parser.Parse(content).Diagnostics(),
	}
}

func TestRendererBasic(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	count := r.RenderFile(lintResult("plugin.vim", "let\n"))
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	want := "plugin.vim:1:4: error: expected identifier, found new line\n" +
		"   1 | let\n" +
		"     |    ^\n" +
		"Error count: 1\n"
	if buf.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRendererUnderlinesSpan(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	r.RenderFile(lintResult("x.vim", "let a = 'uh\n"))

	want := "x.vim:1:9: error: expected expression, found `'uh`\n" +
		"   1 | let a = 'uh\n" +
		"     |         ^~~\n" +
		"Error count: 1\n"
	if buf.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRendererZeroWidthSpanAtEOF(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	r.RenderFile(lintResult("y.vim", "if 1\nlet a = 1\n"))

	want := "y.vim:3:1: error: expected `endif`, found end of file\n" +
		"   3 | \n" +
		"     | ^\n" +
		"Error count: 1\n"
	if buf.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRendererPadsWideRunesByDisplayCells(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	// Byte column 17, but the wide rune makes the line only 15 cells
	// before the error position.
	r.RenderFile(lintResult("z.vim", "let a = '漢' . \n"))

	want := "z.vim:1:17: error: expected expression, found new line\n" +
		"   1 | let a = '漢' . \n" +
		"     | " + strings.Repeat(" ", 15) + "^\n" +
		"Error count: 1\n"
	if buf.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRendererCountsAllFindings(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	count := r.RenderFile(lintResult("multi.vim", "let\nlet\n"))
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if !strings.Contains(buf.String(), "Error count: 2\n") {
		t.Errorf("missing per-file count in:\n%s", buf.String())
	}
	if got := strings.Count(buf.String(), "multi.vim:"); got != 2 {
		t.Errorf("got %d headers, want 2", got)
	}
}

func TestRendererCleanFileIsSilent(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	count := r.RenderFile(lintResult("ok.vim", "let a = 1\n"))
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if buf.Len() != 0 {
		t.Errorf("clean file produced output: %q", buf.String())
	}
}

func TestRendererReadError(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	count := r.RenderFile(FileResult{Path: "gone.vim", Err: errors.New("permission denied")})
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if got, want := buf.String(), "gone.vim: permission denied\n"; got != want {
		t.Errorf("output %q, want %q", got, want)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.RenderSummary(3)
	if got, want := buf.String(), "Total error count: 3\n"; got != want {
		t.Errorf("output %q, want %q", got, want)
	}
}

func TestRendererColorEscapes(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	r.RenderFile(lintResult("c.vim", "let\n"))
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("color renderer produced no escape sequences")
	}

	buf.Reset()
	plain := NewRenderer(&buf, false)
	plain.RenderFile(lintResult("c.vim", "let\n"))
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("plain renderer produced escape sequences")
	}
}
