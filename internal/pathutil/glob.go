package pathutil

import (
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs expands any pattern containing "*", "?" or "[" using doublestar glob
// matching against the current working directory, leaving plain paths
// untouched. This lets a single -c/-o flag value declare a whole directory
// of dependent executables or outputs at once.
func ExpandGlobs(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !containsGlobMeta(p) {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS("."), p)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

func containsGlobMeta(p string) bool {
	for _, r := range p {
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}
