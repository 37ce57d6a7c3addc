// Package lint parses whole sets of vimscript files in parallel and
// reports every diagnostic in compiler style. Results are cached by
// content digest, so reruns only pay for files that changed.
package lint

import (
	"context"
	"os"
	"runtime"
	"sort"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/vimls/vim/parser"
)

var log = commonlog.GetLogger("vimls.lint")

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path        string
	Source      []byte
	Diagnostics []parser.Diagnostic
	FromCache   bool
	Err         error
}

// ErrorCount counts findings; a file that could not be read counts as
// one.
func (r FileResult) ErrorCount() int {
	if r.Err != nil {
		return 1
	}
	return len(r.Diagnostics)
}

// Runner lints files in parallel. Jobs caps the number of concurrent
// parses, zero or less meaning one per CPU. A nil Cache disables the
// disk cache.
type Runner struct {
	Jobs  int
	Cache *DiskCache
}

// Run lints every file and returns one result per file, ordered by
// path no matter which goroutine finished first.
func (r *Runner) Run(ctx context.Context, files []string) ([]FileResult, error) {
	paths := append([]string(nil), files...)
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, nil
	}

	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine owns one result slot, so no locking is needed.
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path // per-iteration copies; the go directive predates Go 1.22 semantics
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = r.lintFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) lintFile(path string) FileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	key := ContentDigest(content)
	if r.Cache != nil {
		var payload CachePayload
		if ok, err := r.Cache.Get(key, &payload); err == nil && ok {
			return FileResult{
				Path:        path,
				Source:      content,
				Diagnostics: payload.Diagnostics(),
				FromCache:   true,
			}
		}
	}

	diags := parser.Parse(content).Diagnostics()
	if r.Cache != nil {
		// Best effort: a failed write only costs a reparse next run.
		if err := r.Cache.Put(key, NewCachePayload(diags)); err != nil {
			log.Debugf("cache write for %s failed: %v", path, err)
		}
	}
	return FileResult{Path: path, Source: content, Diagnostics: diags}
}
