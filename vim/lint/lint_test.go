package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dhamidi/vimls/vim/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunnerLintsFiles(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.vim", "let\n")
	clean := writeFile(t, dir, "clean.vim", "let x = 1\n")

	runner := &Runner{Jobs: 2}
	results, err := runner.Run(context.Background(), []string{clean, broken})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// Paths come back sorted regardless of input order.
	if results[0].Path != broken || results[1].Path != clean {
		t.Fatalf("results out of order: %s, %s", results[0].Path, results[1].Path)
	}

	if got := results[0].ErrorCount(); got != 1 {
		t.Errorf("broken file: %d findings, want 1", got)
	}
	wantMsg := "expected identifier, found new line"
	if msg := results[0].Diagnostics[0].Message; msg != wantMsg {
		t.Errorf("message = %q, want %q", msg, wantMsg)
	}
	if got := results[1].ErrorCount(); got != 0 {
		t.Errorf("clean file: %d findings, want 0", got)
	}
}

func TestRunnerMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.vim")
	runner := &Runner{}
	results, err := runner.Run(context.Background(), []string{missing})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("expected a read error")
	}
	if results[0].ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", results[0].ErrorCount())
	}
}

func TestRunnerParallelResultsMatchSerialParse(t *testing.T) {
	dir := t.TempDir()
	var files []string
	contents := make(map[string]string)
	for i := 0; i < 16; i++ {
		var content string
		if i%2 == 0 {
			content = fmt.Sprintf("let a = %d\n", i)
		} else {
			content = fmt.Sprintf("if %d\n", i)
		}
		path := writeFile(t, dir, fmt.Sprintf("file%02d.vim", i), content)
		files = append(files, path)
		contents[path] = content
	}

	runner := &Runner{Jobs: 8}
	results, err := runner.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, res := range results {
		if res.Path != files[i] {
			t.Fatalf("result %d has path %s, want %s", i, res.Path, files[i])
		}
		want := parser.Parse([]byte(contents[res.Path])).Diagnostics()
		if !reflect.DeepEqual(res.Diagnostics, want) {
			t.Errorf("%s: diagnostics %v, want %v", res.Path, res.Diagnostics, want)
		}
	}
}

func TestRunnerUsesCache(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.vim", "endif\n")
	clean := writeFile(t, dir, "clean.vim", "call f(x)\n")

	cache, err := OpenDiskCacheDir(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheDir: %v", err)
	}
	runner := &Runner{Cache: cache}

	first, err := runner.Run(context.Background(), []string{broken, clean})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	for _, res := range first {
		if res.FromCache {
			t.Errorf("%s served from cache on first run", res.Path)
		}
	}

	second, err := runner.Run(context.Background(), []string{broken, clean})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for i, res := range second {
		if !res.FromCache {
			t.Errorf("%s not served from cache on second run", res.Path)
		}
		if !reflect.DeepEqual(res.Diagnostics, first[i].Diagnostics) {
			t.Errorf("%s: cached diagnostics %v, want %v",
				res.Path, res.Diagnostics, first[i].Diagnostics)
		}
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.vim", "let a = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{}
	_, err := runner.Run(ctx, []string{path})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestRunnerNoFiles(t *testing.T) {
	runner := &Runner{}
	results, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results != nil {
		t.Fatalf("got %v, want nil", results)
	}
}
