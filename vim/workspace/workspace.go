// Package workspace tracks the set of vimscript files the tools are
// working on, keeping a parsed tree per file and applying edits through
// the incremental reparser.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/vimls/vim/parser"
)

// Workspace is a thread-safe store of parsed files. Edits to a single
// path are serialized by the store lock; lookups return snapshots that
// later updates never mutate.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*ScriptFile
}

// ScriptFile is one parsed file. Updates store a fresh ScriptFile, so a
// pointer handed out by GetFile stays consistent: Content is always the
// exact text Tree was parsed from.
type ScriptFile struct {
	Path    string
	Content []byte
	Tree    *parser.Tree
	Version int
}

func New(rootDir string) *Workspace {
	return &Workspace{
		rootDir: rootDir,
		files:   make(map[string]*ScriptFile),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// ScanAll parses every .vim file under the root directory. Hidden
// directories are skipped. filepath.Walk visits lexically, so repeated
// scans see files in the same order.
func (w *Workspace) ScanAll() error {
	return filepath.Walk(w.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != w.rootDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".vim" {
			w.ScanFile(path)
		}
		return nil
	})
}

func (w *Workspace) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.UpdateFile(path, content)
	return nil
}

// UpdateFile replaces the file's content with a full new text and
// parses it. Parsing is total, so there is nothing to fail.
func (w *Workspace) UpdateFile(path string, content []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.storeLocked(path, parser.Parse(content))
}

func (w *Workspace) storeLocked(path string, tree *parser.Tree) {
	version := 1
	if prev := w.files[path]; prev != nil {
		version = prev.Version + 1
	}
	w.files[path] = &ScriptFile{
		Path:    path,
		Content: tree.Text(),
		Tree:    tree,
		Version: version,
	}
}

// ApplyEdit patches an open file through the incremental reparser. The
// lock is held across the reparse, so concurrent edits to one path are
// applied one at a time against the tree they were computed for.
func (w *Workspace) ApplyEdit(path string, edit parser.Edit) (*parser.Tree, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.files[path]
	if prev == nil {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	tree := parser.Reparse(prev.Tree, edit)
	w.storeLocked(path, tree)
	return tree, nil
}

// Change is one replaced region in 0-based line and UTF-16 column
// coordinates, the way language clients report content changes.
type Change struct {
	StartLine, StartCol int
	EndLine, EndCol     int
	Text                string
}

// ApplyChange converts a client change into a byte edit against the
// file's current text and applies it. Conversion happens under the
// store lock, so the offsets always match the tree being edited.
func (w *Workspace) ApplyChange(path string, ch Change) (*parser.Tree, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.files[path]
	if prev == nil {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	index := prev.Tree.LineIndex()
	edit := parser.Edit{
		Start:   index.OffsetOfUTF16(ch.StartLine, ch.StartCol),
		End:     index.OffsetOfUTF16(ch.EndLine, ch.EndCol),
		NewText: []byte(ch.Text),
	}
	tree := parser.Reparse(prev.Tree, edit)
	w.storeLocked(path, tree)
	return tree, nil
}

func (w *Workspace) GetFile(path string) *ScriptFile {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

// Diagnostics returns the parse problems of one file, nil when the path
// is not tracked.
func (w *Workspace) Diagnostics(path string) []parser.Diagnostic {
	w.mu.RLock()
	defer w.mu.RUnlock()

	f := w.files[path]
	if f == nil {
		return nil
	}
	return f.Tree.Diagnostics()
}

// Files returns all tracked files sorted by path.
func (w *Workspace) Files() []*ScriptFile {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]*ScriptFile, 0, len(w.files))
	for _, f := range w.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}
