// Package memocli implements the "memo" CLI front-end: a thin wrapper that
// turns a single external command invocation into a cached stage.Stage, and
// an optional parallel fan-out across independent argument/output
// overrides, each with its own cache sub-directory.
package memocli

import (
	"strconv"
	"strings"

	"github.com/vanandrew/gomemori/internal/merr"
)

// ParseIndexed parses repeated "INDEX=VALUE" flag values (the form used by
// --arg and --arg-output) into a branch-index-keyed map.
func ParseIndexed(pairs []string) (map[int]string, error) {
	out := make(map[int]string, len(pairs))
	for _, p := range pairs {
		idx, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, merr.Validation("expected INDEX=VALUE, got "+p, nil)
		}
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, merr.Validation("expected integer branch index, got "+idx, err)
		}
		out[n] = value
	}
	return out, nil
}

// Branch describes one parallel fan-out invocation: its own argument
// override, output-path override, and cache sub-directory.
type Branch struct {
	Index     int
	ArgValue  string
	OutputDir string
	CacheDir  string
}

// filterSkippedBranches removes any branch whose OutputDir matches the
// skip matcher's patterns.
func filterSkippedBranches(branches []Branch, skip *SkipMatcher) []Branch {
	if skip == nil {
		return branches
	}
	out := branches[:0:0]
	for _, b := range branches {
		if b.OutputDir != "" && skip.Skip(b.OutputDir) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BuildBranches constructs N branches from the baseArg/baseOutput values,
// applying any per-branch overrides found in argOverrides/outputOverrides,
// and nesting each branch's cache directory under
// <cacheDir>/parallel<index>. An empty cacheDir leaves every branch's
// CacheDir empty, so memoization stays disabled.
func BuildBranches(n int, cacheDir, baseArg, baseOutput string, argOverrides, outputOverrides map[int]string) []Branch {
	branches := make([]Branch, n)
	for i := 0; i < n; i++ {
		arg := baseArg
		if v, ok := argOverrides[i]; ok {
			arg = v
		}
		out := baseOutput
		if v, ok := outputOverrides[i]; ok {
			out = v
		}
		branchCache := ""
		if cacheDir != "" {
			branchCache = cacheDir + "/parallel" + strconv.Itoa(i)
		}
		branches[i] = Branch{
			Index:     i,
			ArgValue:  arg,
			OutputDir: out,
			CacheDir:  branchCache,
		}
	}
	return branches
}
