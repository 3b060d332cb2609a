package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/vanandrew/gomemori/internal/merr"
)

// GetPrefix returns path with its final extension removed, e.g.
// "a/b/c.txt" -> "a/b/c".
func GetPrefix(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}

// GetPathAndPrefix returns the directory name and the extension-stripped
// basename of path separately, matching memori.pathman.get_path_and_prefix.
func GetPathAndPrefix(path string) (dir, prefix string) {
	dir = filepath.Dir(path)
	base := filepath.Base(path)
	prefix = GetPrefix(base)
	return dir, prefix
}

// qualifiedPrefix returns path with its final extension cut off its own
// text, e.g. "/a/b/c.txt" -> "/a/b/c" (for a clean path, the same as
// GetPathAndPrefix's directory and prefix rejoined). It is always a literal
// prefix of path, so the remainder (path with this trimmed off the front)
// is the extension.
func qualifiedPrefix(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// dropLastToken removes the last "_"-delimited token from s, e.g.
// "foo_bar" -> "foo". A string with no underscore has no suffix to drop and
// becomes the empty string, matching memori.pathman.replace_suffix /
// delete_suffix.
func dropLastToken(s string) string {
	parts := strings.Split(s, "_")
	return strings.Join(parts[:len(parts)-1], "_")
}

// AppendSuffix inserts suffix before path's extension, e.g.
// AppendSuffix("/d/file.ext", "_v2") -> "/d/file_v2.ext".
func AppendSuffix(path, suffix string) string {
	prefix := qualifiedPrefix(path)
	ext := strings.TrimPrefix(path, prefix)
	return prefix + suffix + ext
}

// ReplaceSuffix replaces the last "_"-delimited token before path's
// extension with suffix, e.g.
// ReplaceSuffix("/d/file_bar.ext", "_baz") -> "/d/file_baz.ext".
func ReplaceSuffix(path, suffix string) string {
	prefix := qualifiedPrefix(path)
	ext := strings.TrimPrefix(path, prefix)
	return dropLastToken(prefix) + suffix + ext
}

// DeleteSuffix removes the last "_"-delimited token before path's
// extension, e.g. DeleteSuffix("/d/file_bar.ext") -> "/d/file.ext".
func DeleteSuffix(path string) string {
	prefix := qualifiedPrefix(path)
	ext := strings.TrimPrefix(path, prefix)
	return dropLastToken(prefix) + ext
}

// Repath replaces path's directory with dir, keeping its basename.
func Repath(path, dir string) string {
	return filepath.Join(dir, filepath.Base(path))
}

// Command is one step in a pathman chain.
type Command struct {
	Name string
	Arg  string
}

// Apply runs a chain of commands left-to-right over start, each consuming
// the previous step's output path. An unrecognized command name is a
// Validation error.
func Apply(start string, commands []Command) (string, error) {
	path := start
	for _, c := range commands {
		switch c.Name {
		case "get-prefix":
			path = GetPrefix(path)
		case "get-path-and-prefix":
			dir, prefix := GetPathAndPrefix(path)
			path = filepath.Join(dir, prefix)
		case "append-suffix":
			path = AppendSuffix(path, c.Arg)
		case "replace-suffix":
			path = ReplaceSuffix(path, c.Arg)
		case "delete-suffix":
			path = DeleteSuffix(path)
		case "repath":
			path = Repath(path, c.Arg)
		default:
			return "", merr.Validation("unknown pathman command "+c.Name, nil)
		}
	}
	return path, nil
}
