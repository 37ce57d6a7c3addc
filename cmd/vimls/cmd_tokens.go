package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/vimls/vim/parser"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	var showTrivia bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Tokenize a .vim file and dump the token stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _, err := readSource(args)
			if err != nil {
				return err
			}

			tokens := parser.Tokenize(source)
			index := parser.NewLineIndex(source)

			offset := 0
			for i, tok := range tokens {
				if showTrivia {
					for _, trivia := range tok.Leading {
						line, col := index.Position(offset)
						fmt.Printf("     %-13s %q at %d:%d\n",
							"."+trivia.Kind.String(), trivia.Text, line+1, col+1)
						offset += len(trivia.Text)
					}
				} else {
					offset += tok.LeadingWidth()
				}

				line, col := index.Position(offset)
				fmt.Printf("%3d: %-13s %q at %d:%d", i, tok.Kind.String(), tok.Text, line+1, col+1)
				if !showTrivia && len(tok.Leading) > 0 {
					var kinds []string
					for _, trivia := range tok.Leading {
						kinds = append(kinds, trivia.Kind.String())
					}
					fmt.Printf(" (leading: %s)", strings.Join(kinds, ", "))
				}
				fmt.Println()
				offset += len(tok.Text)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showTrivia, "trivia", false, "print each piece of leading trivia on its own line")

	return cmd
}
