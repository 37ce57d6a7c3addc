package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dhamidi/vimls/vim/lint"
	"github.com/dhamidi/vimls/vim/parser"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a .vim file and dump the syntax tree",
		Long: `Parse a .vim file and dump the resulting syntax tree.

If no file is provided, reads vimscript from stdin. Syntax errors are
reported after the tree; the tree itself always covers the whole input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(args)
			if err != nil {
				return err
			}

			tree := parser.Parse(source)

			switch outputFormat {
			case "text":
				fmt.Print(tree.Root().String())
				if tree.HasErrors() {
					useColor := term.IsTerminal(int(os.Stdout.Fd()))
					renderer := lint.NewRenderer(os.Stdout, useColor)
					renderer.RenderFile(lint.FileResult{
						Path:        filename,
						Source:      source,
						Diagnostics: tree.Diagnostics(),
					})
				}
			case "json":
				data, err := json.MarshalIndent(tree, "", "  ")
				if err != nil {
					return fmt.Errorf("encode: %w", err)
				}
				fmt.Println(string(data))
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}
