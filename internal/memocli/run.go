package memocli

import (
	"context"
	"path/filepath"

	"github.com/vanandrew/gomemori/internal/execstage"
	"github.com/vanandrew/gomemori/internal/merr"
	"github.com/vanandrew/gomemori/internal/stage"
)

// Options collects the flags memo's root command parses.
type Options struct {
	Name       string
	CacheDir   string
	Outputs    []string
	Deps       []string
	Parallel   int
	KillOnFail bool
	Args       []string // --arg INDEX=VALUE
	ArgOutputs []string // --arg-output INDEX=VALUE

	// MaxConcurrency caps how many branches RunParallel runs at once,
	// independent of how many branches -p fans out. Sourced from the
	// resolved config's Parallelism setting when the CLI doesn't override
	// it some other way.
	MaxConcurrency int
}

// RunSingle wraps executable+args as one stage and runs it once, returning
// the wrapped command's exit code.
func RunSingle(ctx context.Context, executable string, args []string, opts Options) (int, error) {
	name := opts.Name
	if name == "" {
		name = filepath.Base(executable)
	}

	executables := append([]string{executable}, opts.Deps...)
	st, err := execstage.New(name, executables, len(args), opts.Outputs)
	if err != nil {
		return 0, err
	}
	st.CacheDir = opts.CacheDir

	positional := make([]any, len(args))
	for i, a := range args {
		positional[i] = a
	}

	if err := st.Run(ctx, positional, nil, stage.RunOptions{}); err != nil {
		return 0, err
	}

	code, ok := st.Results["output"].(int)
	if !ok {
		return 0, merr.TypeMismatch("memo: stage did not produce an exit code result", nil)
	}
	return code, nil
}
