package memocli

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

// SkipMatcher excludes branch output paths using gitignore-style patterns,
// loaded from a patterns file via --skip-file. A nil *SkipMatcher never
// skips anything.
type SkipMatcher struct {
	ignore *gitignore.GitIgnore
}

// NewSkipMatcher compiles the patterns in path. An empty path returns a
// matcher that never skips anything.
func NewSkipMatcher(path string) (*SkipMatcher, error) {
	if path == "" {
		return &SkipMatcher{}, nil
	}
	ig, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, err
	}
	return &SkipMatcher{ignore: ig}, nil
}

// Skip reports whether outputPath matches the compiled patterns.
func (m *SkipMatcher) Skip(outputPath string) bool {
	if m == nil || m.ignore == nil {
		return false
	}
	return m.ignore.MatchesPath(outputPath)
}
