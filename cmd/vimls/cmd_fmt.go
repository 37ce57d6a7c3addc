package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/vimls/format"
	"github.com/dhamidi/vimls/project"
	"github.com/dhamidi/vimls/vim/parser"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Pretty-print a .vim file, preserving comments",
		Long: `Pretty-print a .vim file to stdout.

If a file is provided, it must have a .vim extension.
If no file is provided, reads vimscript from stdin.

Statements that do not parse are kept exactly as written, so formatting
never loses text. The indent width comes from the vimls.toml manifest
of the enclosing project, if there is one.

Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fmtOverwrite && len(args) == 0 {
				return fmt.Errorf("-w requires a file argument")
			}

			source, filename, err := readSource(args)
			if err != nil {
				return err
			}

			startDir := "."
			if len(args) > 0 {
				startDir = filepath.Dir(filename)
			}

			var buf bytes.Buffer
			printer := format.NewVimPrettyPrinter(&buf)
			if _, ok, _ := project.FindManifest(startDir); ok {
				proj, err := project.LoadFrom(startDir)
				if err != nil {
					return err
				}
				printer.SetIndentWidth(proj.Config.Format.Indent)
			}
			if err := printer.Print(parser.Parse(source)); err != nil {
				return fmt.Errorf("format: %w", err)
			}
			output := buf.Bytes()

			if fmtOverwrite {
				return os.WriteFile(filename, output, 0644)
			}
			_, err = os.Stdout.Write(output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")

	return cmd
}
