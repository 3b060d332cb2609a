package pathutil

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// NewScratchDir creates a fresh, uniquely-named directory under base and
// returns its path. It is used for the ephemeral working-directory state
// that execstage gives each subprocess invocation, the Go analogue of
// memori's tempfile.TemporaryDirectory()-backed wrapper scripts.
func NewScratchDir(base string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "gomemori-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
