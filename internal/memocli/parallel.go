package memocli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// ParallelResult is one branch's outcome.
type ParallelResult struct {
	Branch   Branch
	ExitCode int
	Err      error
}

// RunParallel runs n independent branches concurrently, each targeting its
// own cache sub-directory, bounded by opts.MaxConcurrency concurrent workers
// (or opts.Parallel when that is not positive, or len(branches) when neither
// is). If opts.KillOnFail is set, remaining branches are canceled as soon as
// one fails, either with an error or with a nonzero exit code. A branch that
// succeeds is marked BranchMiss ("ran") whether or not it was a cache hit. When interactive is true, a bubbletea status view renders branch
// progress live; otherwise results are returned silently for the caller to
// summarize with RenderSummary.
func RunParallel(ctx context.Context, executable string, args []string, branches []Branch, opts Options, interactive bool) ([]ParallelResult, error) {
	board := newStatusBoard(len(branches))

	var program *tea.Program
	var done chan struct{}
	if interactive {
		program = tea.NewProgram(newStatusModel(board))
		done = make(chan struct{})
		go func() {
			defer close(done)
			_, _ = program.Run()
		}()
	}

	results := make([]ParallelResult, len(branches))

	g, gctx := errgroup.WithContext(ctx)
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = opts.Parallel
	}
	if limit <= 0 {
		limit = len(branches)
	}
	g.SetLimit(limit)

	for i, br := range branches {
		i, br := i, br
		g.Go(func() error {
			board.set(i, BranchRunning)

			branchArgs := append([]string(nil), args...)
			if len(branchArgs) == 0 {
				branchArgs = []string{br.ArgValue}
			} else {
				branchArgs[0] = br.ArgValue
			}

			branchOpts := opts
			branchOpts.CacheDir = br.CacheDir
			if br.OutputDir != "" {
				branchOpts.Outputs = []string{br.OutputDir}
			}

			code, err := RunSingle(gctx, executable, branchArgs, branchOpts)
			if err != nil {
				board.set(i, BranchFailed)
				results[i] = ParallelResult{Branch: br, Err: err}
				if opts.KillOnFail {
					return err
				}
				return nil
			}
			results[i] = ParallelResult{Branch: br, ExitCode: code}
			if code != 0 {
				board.set(i, BranchFailed)
				if opts.KillOnFail {
					return &ExitError{Code: code}
				}
				return nil
			}
			board.set(i, BranchMiss)
			return nil
		})
	}

	waitErr := g.Wait()

	if program != nil {
		program.Quit()
		<-done
	}

	return results, waitErr
}
