package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/vimls/project"
	"github.com/dhamidi/vimls/vim/lint"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLintCmd() *cobra.Command {
	var jobs int
	var noColor bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Check vimscript files for syntax errors",
		Long: `Check vimscript files for syntax errors.

With file arguments, lints exactly those files. Without arguments,
lints every .vim file of the enclosing project, found by walking up
to the nearest vimls.toml manifest.

Results for unchanged files come from a cache keyed by file content,
so repeated runs only reparse what changed. The command exits with
status 1 when any file has findings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				proj, err := project.Load()
				if err != nil {
					return err
				}
				files, err = proj.Files()
				if err != nil {
					return err
				}
				if jobs == 0 {
					jobs = proj.Config.Lint.Jobs
				}
			}

			runner := lint.Runner{Jobs: jobs}
			if !noCache {
				cache, err := lint.OpenDiskCache("vimls")
				if err != nil {
					return fmt.Errorf("open cache: %w", err)
				}
				runner.Cache = cache
			}

			results, err := runner.Run(cmd.Context(), files)
			if err != nil {
				return err
			}

			useColor := !noColor && term.IsTerminal(int(os.Stdout.Fd()))
			renderer := lint.NewRenderer(os.Stdout, useColor)

			total := 0
			for _, res := range results {
				total += renderer.RenderFile(res)
			}
			renderer.RenderSummary(total)

			if total > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of files to lint in parallel (0 = one per CPU)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "reparse every file, ignoring the cache")

	return cmd
}
