// Package execstage builds a *stage.Stage that invokes an external
// executable as a subprocess. Determinism comes from embedding a literal
// SHA-256 digest of the executable's bytes, plus the bytes of every
// co-declared dependent executable, inside the synthesized stage's
// fingerprint: upgrading any declared binary changes the stage's hash even
// though no Go source changed.
package execstage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"

	"github.com/vanandrew/gomemori/internal/fingerprint"
	"github.com/vanandrew/gomemori/internal/merr"
	"github.com/vanandrew/gomemori/internal/pathutil"
	"github.com/vanandrew/gomemori/internal/stage"
)

// New locates each of executables by absolute path or PATH search (the
// first is the one invoked, the rest are dependents whose bytes are folded
// into the fingerprint so that changing them also invalidates the cache),
// and returns a *stage.Stage of declared positional arity numArgs whose Fn
// runs the first executable as a subprocess and returns (exitCode,
// outputs...).
func New(name string, executables []string, numArgs int, outputs []string) (*stage.Stage, error) {
	if len(executables) == 0 {
		return nil, merr.Validation("execstage: at least one executable must be declared", nil)
	}

	resolved := make([]string, len(executables))
	digest := sha256.New()
	for i, exe := range executables {
		path, err := locate(exe)
		if err != nil {
			return nil, merr.MissingResource("execstage: dependent executable "+exe+" not found", err)
		}
		resolved[i] = path
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, merr.MissingResource("execstage: cannot read executable "+path, err)
		}
		digest.Write(b)
	}

	inputs := make([]string, numArgs)
	for i := range inputs {
		inputs[i] = argName(i)
	}

	code := fingerprint.FromSource(name, []byte(hex.EncodeToString(digest.Sum(nil))))

	fn := func(ctx context.Context, in map[string]any) ([]any, error) {
		args := make([]string, numArgs)
		for i := range args {
			v, ok := in[argName(i)]
			if !ok {
				return nil, merr.TypeMismatch("execstage: missing positional argument "+argName(i), nil)
			}
			s, ok := v.(string)
			if !ok {
				return nil, merr.TypeMismatch("execstage: argument "+argName(i)+" must be a string", nil)
			}
			args[i] = s
		}

		scratch, err := pathutil.NewScratchDir("")
		if err != nil {
			return nil, merr.Callable("execstage: failed to create scratch directory", err)
		}
		defer os.RemoveAll(scratch)

		cmd := exec.CommandContext(ctx, resolved[0], args...)
		cmd.Dir = scratch
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		exitCode := 0
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if ok := asExitError(err, &exitErr); ok {
				exitCode = exitErr.ExitCode()
			} else {
				return nil, merr.Callable("execstage: failed to run "+resolved[0], err)
			}
		}

		results := make([]any, 0, len(outputs)+1)
		results = append(results, exitCode)
		for _, o := range outputs {
			results = append(results, o)
		}
		return results, nil
	}

	labels := make([]string, len(outputs)+1)
	labels[0] = "output"
	for i := range outputs {
		labels[i+1] = outputLabel(i)
	}

	return stage.New(name, inputs, labels, fn, code), nil
}

func outputLabel(i int) string {
	return "output" + itoa(i)
}

func locate(exe string) (string, error) {
	if path, err := exec.LookPath(exe); err == nil {
		return path, nil
	}
	if info, err := os.Stat(exe); err == nil && !info.IsDir() {
		return exe, nil
	}
	return "", os.ErrNotExist
}

func argName(i int) string {
	return "arg" + itoa(i)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
