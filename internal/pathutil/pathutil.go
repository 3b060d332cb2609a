// Package pathutil provides the filesystem helpers that sit around stage
// callables: working-directory scoping, output-directory creation,
// absolute-path normalization, and symlink-farm construction. These mirror
// memori's helpers module (working_directory, create_output_path,
// use_abspaths, create_symlinks_to_input_files), reimplemented as
// stage.Func-wrapping combinators instead of function decorators.
package pathutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vanandrew/gomemori/internal/stage"
)

// InDir changes the process working directory to dir for the duration of
// fn, restoring the previous directory on every exit path, including a
// panic (which is recovered just long enough to restore the directory,
// then re-panicked).
func InDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer func() {
		chdirErr := os.Chdir(prev)
		if r := recover(); r != nil {
			_ = chdirErr
			panic(r)
		}
		if err == nil {
			err = chdirErr
		}
	}()
	return fn()
}

// EnsureOutputDir wraps fn so that the directory named by the declared
// "output_path" input is created (including parents) before fn runs.
func EnsureOutputDir(fn stage.Func) stage.Func {
	return func(ctx context.Context, in map[string]any) ([]any, error) {
		if v, ok := in["output_path"]; ok {
			if path, ok := v.(string); ok {
				if err := os.MkdirAll(path, 0o755); err != nil {
					return nil, err
				}
			}
		}
		return fn(ctx, in)
	}
}

// AbsPaths wraps fn so that every string input value naming an existing
// file is rewritten to its absolute path before fn runs.
func AbsPaths(fn stage.Func) stage.Func {
	return func(ctx context.Context, in map[string]any) ([]any, error) {
		rewritten := make(map[string]any, len(in))
		for k, v := range in {
			if s, ok := v.(string); ok {
				if info, err := os.Stat(s); err == nil && info.Mode().IsRegular() {
					if abs, err := filepath.Abs(s); err == nil {
						rewritten[k] = abs
						continue
					}
				}
			}
			rewritten[k] = v
		}
		return fn(ctx, rewritten)
	}
}
