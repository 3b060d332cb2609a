package execstage

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanandrew/gomemori/internal/stage"
)

func writeEchoScript(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	path := filepath.Join(dir, "echoer.sh")
	script := "#!/bin/sh\necho \"$1\"\nexit 0\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestNew_InvokesExecutableAndReportsExitCode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := writeEchoScript(t, dir)

	s, err := New("echoer", []string{script}, 1, nil)
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background(), []any{"hello"}, nil, stage.RunOptions{}))
	assert.Equal(t, 0, s.Results["output"])
}

func TestNew_LabelsOutputsAfterSpecConvention(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := writeEchoScript(t, dir)

	s, err := New("echoer", []string{script}, 1, []string{"foo.txt", "foo.txt"})
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background(), []any{"hello"}, nil, stage.RunOptions{}))
	assert.Equal(t, 0, s.Results["output"])
	assert.Equal(t, "foo.txt", s.Results["output0"])
	assert.Equal(t, "foo.txt", s.Results["output1"])
}

func TestNew_MissingExecutable(t *testing.T) {
	t.Parallel()
	_, err := New("nope", []string{"/definitely/not/a/real/binary"}, 0, nil)
	assert.Error(t, err)
}

func TestNew_DependentBinaryChangesFingerprint(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := writeEchoScript(t, dir)
	dep := filepath.Join(dir, "dep.sh")
	require.NoError(t, os.WriteFile(dep, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	s1, err := New("echoer", []string{script, dep}, 1, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(dep, []byte("#!/bin/sh\n# changed\nexit 0\n"), 0o755))

	s2, err := New("echoer", []string{script, dep}, 1, nil)
	require.NoError(t, err)

	assert.NotEqual(t, s1.Code.Source, s2.Code.Source, "changing a co-declared dependent binary must change the stage fingerprint")
}

func TestNew_RequiresAtLeastOneExecutable(t *testing.T) {
	t.Parallel()
	_, err := New("x", nil, 0, nil)
	assert.Error(t, err)
}
