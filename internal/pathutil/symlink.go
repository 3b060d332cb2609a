package pathutil

import (
	"os"
	"path/filepath"
)

// SymlinkTo creates a symlink to filename inside dir, replacing any
// existing symlink or file of the same name, and returns the symlink's
// path. The symlink target is stored relative to dir, matching memori's
// create_symlink_to_path.
func SymlinkTo(filename, dir string) (string, error) {
	absFile, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absDir, filepath.Dir(absFile))
	if err != nil {
		return "", err
	}

	linkPath := filepath.Join(dir, filepath.Base(absFile))
	relTarget := filepath.Join(rel, filepath.Base(absFile))

	if fi, err := os.Lstat(linkPath); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 || !fi.IsDir() {
			if err := os.Remove(linkPath); err != nil {
				return "", err
			}
		}
	}

	if err := os.Symlink(relTarget, linkPath); err != nil {
		return "", err
	}
	return linkPath, nil
}

// SymlinkInputs replaces every string value in inputs that names an
// existing file with a symlink to that file placed inside dir, leaving
// every other value untouched. dir is created if it does not already
// exist.
func SymlinkInputs(inputs map[string]any, dir string) (map[string]any, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(inputs))
	for k, v := range inputs {
		if s, ok := v.(string); ok {
			if info, err := os.Stat(s); err == nil && info.Mode().IsRegular() {
				link, err := SymlinkTo(s, dir)
				if err != nil {
					return nil, err
				}
				out[k] = link
				continue
			}
		}
		out[k] = v
	}
	return out, nil
}
