package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/vimls/vim/lint"
	"github.com/dhamidi/vimls/vim/parser"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	historyFile = ".vimls_history"
	promptMain  = "vim> "
	promptCont  = "...> "
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse vimscript, one statement at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl()
		},
	}
}

func runRepl() error {
	fmt.Println("vimls repl. Ctrl+C cancels the current input, Ctrl+D exits.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	renderer := lint.NewRenderer(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))

	for {
		source, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(source) == "" {
			continue
		}

		tree := parser.Parse([]byte(source))
		fmt.Print(tree.Root().String())
		renderer.RenderFile(lint.FileResult{
			Path:        "repl",
			Source:      []byte(source),
			Diagnostics: tree.Diagnostics(),
		})

		ln.AppendHistory(strings.ReplaceAll(strings.TrimRight(source, "\n"), "\n", " "))
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return nil
}

// readStatement accumulates lines until every block is closed, so an
// if or function body can be typed across several prompts.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the input typed so far.
			return "", true
		}

		b.WriteString(line)
		b.WriteByte('\n')

		if !needsMoreInput([]byte(b.String())) {
			return b.String(), true
		}
	}
}

// needsMoreInput reports whether the buffer ends inside an open block.
func needsMoreInput(source []byte) bool {
	tree := parser.Parse(source)
	for _, d := range tree.Diagnostics() {
		if d.Kind == parser.DiagUnterminatedBlock {
			return true
		}
	}
	return false
}
