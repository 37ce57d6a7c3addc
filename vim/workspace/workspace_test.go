package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/vimls/vim/parser"
)

func TestWorkspaceUpdateAndGet(t *testing.T) {
	w := New("/tmp/ws_test")
	path := "/tmp/ws_test/plugin.vim"

	w.UpdateFile(path, []byte("let a = 1\n"))
	first := w.GetFile(path)
	if first == nil {
		t.Fatal("GetFile returned nil")
	}
	if got := string(first.Content); got != "let a = 1\n" {
		t.Errorf("Content = %q, want %q", got, "let a = 1\n")
	}
	if first.Version != 1 {
		t.Errorf("Version = %d, want 1", first.Version)
	}
	if first.Tree == nil || first.Tree.Root().Text() != "let a = 1\n" {
		t.Error("Tree does not match content")
	}

	w.UpdateFile(path, []byte("let a = 2\n"))
	second := w.GetFile(path)
	if second.Version != 2 {
		t.Errorf("Version = %d, want 2", second.Version)
	}
	// The first snapshot must not change under later updates.
	if got := string(first.Content); got != "let a = 1\n" {
		t.Errorf("old snapshot content = %q, want %q", got, "let a = 1\n")
	}
}

func TestWorkspaceApplyEdit(t *testing.T) {
	w := New("/tmp/ws_test")
	path := "/tmp/ws_test/plugin.vim"
	w.UpdateFile(path, []byte("let a = 1\n"))

	tree, err := w.ApplyEdit(path, parser.Edit{Start: 8, End: 9, NewText: []byte("2")})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if got := string(tree.Text()); got != "let a = 2\n" {
		t.Errorf("text after edit = %q, want %q", got, "let a = 2\n")
	}
	f := w.GetFile(path)
	if string(f.Content) != "let a = 2\n" || f.Version != 2 {
		t.Errorf("stored file = %q v%d, want %q v2", f.Content, f.Version, "let a = 2\n")
	}

	if _, err := w.ApplyEdit("/tmp/ws_test/missing.vim", parser.Edit{}); err == nil {
		t.Error("ApplyEdit on unknown path: error = nil, want non-nil")
	}
}

func TestWorkspaceApplyChange(t *testing.T) {
	tests := []struct {
		name    string
		content string
		change  Change
		want    string
	}{
		{
			"ascii replacement",
			"let a = 1\nlet b = 2\n",
			Change{StartLine: 1, StartCol: 4, EndLine: 1, EndCol: 5, Text: "c"},
			"let a = 1\nlet c = 2\n",
		},
		{
			"insertion at line start",
			"let a = 1\n",
			Change{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 0, Text: "let b = 2\n"},
			"let a = 1\nlet b = 2\n",
		},
		{
			"columns count utf-16 units",
			"let a = '\U0001d4b3'\nlet b = 2\n",
			Change{StartLine: 0, StartCol: 9, EndLine: 0, EndCol: 11, Text: "x"},
			"let a = 'x'\nlet b = 2\n",
		},
		{
			"deletion across lines",
			"let a = 1\nlet b = 2\n",
			Change{StartLine: 0, StartCol: 9, EndLine: 1, EndCol: 9, Text: ""},
			"let a = 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New("/tmp/ws_test")
			path := "/tmp/ws_test/plugin.vim"
			w.UpdateFile(path, []byte(tt.content))

			tree, err := w.ApplyChange(path, tt.change)
			if err != nil {
				t.Fatalf("ApplyChange: %v", err)
			}
			if got := string(tree.Text()); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkspaceDiagnostics(t *testing.T) {
	w := New("/tmp/ws_test")
	path := "/tmp/ws_test/broken.vim"
	w.UpdateFile(path, []byte("let\n"))

	diags := w.Diagnostics(path)
	if len(diags) != 1 {
		t.Fatalf("Diagnostics = %v, want one entry", diags)
	}
	if diags[0].Message != "expected identifier, found new line" {
		t.Errorf("Message = %q", diags[0].Message)
	}

	if got := w.Diagnostics("/tmp/ws_test/missing.vim"); got != nil {
		t.Errorf("Diagnostics for unknown path = %v, want nil", got)
	}
}

func TestWorkspaceFilesSorted(t *testing.T) {
	w := New("/tmp/ws_test")
	for _, name := range []string{"c.vim", "a.vim", "b.vim"} {
		w.UpdateFile(filepath.Join("/tmp/ws_test", name), []byte("let x = 1\n"))
	}

	files := w.Files()
	if len(files) != 3 {
		t.Fatalf("Files = %d entries, want 3", len(files))
	}
	for i, want := range []string{"a.vim", "b.vim", "c.vim"} {
		if got := filepath.Base(files[i].Path); got != want {
			t.Errorf("Files[%d] = %s, want %s", i, got, want)
		}
	}
}

func TestWorkspaceRemoveFile(t *testing.T) {
	w := New("/tmp/ws_test")
	path := "/tmp/ws_test/plugin.vim"
	w.UpdateFile(path, []byte("let a = 1\n"))
	w.RemoveFile(path)
	if w.GetFile(path) != nil {
		t.Error("GetFile after RemoveFile: want nil")
	}
}

func TestWorkspaceScanAll(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.vim", "let a = 1\n")
	write("sub/b.vim", "let b = 2\n")
	write(".hidden/c.vim", "let c = 3\n")
	write("notes.txt", "not vimscript\n")

	w := New(root)
	if err := w.ScanAll(); err != nil {
		t.Fatalf("ScanAll: %v", err)
	}

	files := w.Files()
	if len(files) != 2 {
		t.Fatalf("Files = %d entries, want 2", len(files))
	}
	if got := filepath.Base(files[0].Path); got != "a.vim" {
		t.Errorf("Files[0] = %s, want a.vim", got)
	}
	if got := filepath.Base(files[1].Path); got != "b.vim" {
		t.Errorf("Files[1] = %s, want b.vim", got)
	}
}
