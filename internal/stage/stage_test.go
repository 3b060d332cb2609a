package stage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanandrew/gomemori/internal/fingerprint"
)

func addStage(cacheDir string) *Stage {
	fn := func(_ context.Context, inputs map[string]any) ([]any, error) {
		x := inputs["x"].(int)
		y := inputs["y"].(int)
		return []any{x + y}, nil
	}
	code := fingerprint.FromSource("add", []byte("x + y"))
	s := New("add", []string{"x", "y"}, []string{"z"}, fn, code)
	s.CacheDir = cacheDir
	return s
}

func TestStage_MissThenHit_Idempotent(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	s := addStage(cacheDir)

	require.NoError(t, s.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))
	assert.True(t, s.RanThisCall)
	assert.False(t, s.LoadedFromCache)
	assert.Equal(t, 3, s.Results["z"])

	s2 := addStage(cacheDir)
	require.NoError(t, s2.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))
	assert.False(t, s2.RanThisCall)
	assert.True(t, s2.LoadedFromCache)
	assert.Equal(t, 3, s2.Results["z"])
}

func TestStage_DifferentInputsMiss(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	s := addStage(cacheDir)
	require.NoError(t, s.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))

	s2 := addStage(cacheDir)
	require.NoError(t, s2.Run(context.Background(), []any{5, 6}, nil, RunOptions{}))
	assert.True(t, s2.RanThisCall)
	assert.Equal(t, 11, s2.Results["z"])
}

func TestStage_CodeChangeInvalidatesCache(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	s := addStage(cacheDir)
	require.NoError(t, s.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))

	fn := func(_ context.Context, inputs map[string]any) ([]any, error) {
		return []any{inputs["x"].(int) + inputs["y"].(int)}, nil
	}
	s2 := New("add", []string{"x", "y"}, []string{"z"}, fn, fingerprint.FromSource("add", []byte("different body")))
	s2.CacheDir = cacheDir
	require.NoError(t, s2.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))
	assert.True(t, s2.RanThisCall)
}

func TestStage_FileInputSensitiveToRename(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("same-bytes"), 0o644))

	fn := func(_ context.Context, inputs map[string]any) ([]any, error) {
		return []any{inputs["f"]}, nil
	}
	code := fingerprint.FromSource("echo", []byte("echo"))
	s := New("echo", []string{"f"}, []string{"out"}, fn, code)
	s.CacheDir = cacheDir
	require.NoError(t, s.Run(context.Background(), []any{path}, nil, RunOptions{}))
	assert.True(t, s.RanThisCall)

	renamed := filepath.Join(dataDir, "b.txt")
	require.NoError(t, os.Rename(path, renamed))

	s2 := New("echo", []string{"f"}, []string{"out"}, fn, code)
	s2.CacheDir = cacheDir
	require.NoError(t, s2.Run(context.Background(), []any{renamed}, nil, RunOptions{}))
	assert.True(t, s2.RanThisCall, "renamed file at same bytes should still miss: path is part of the canonical form")
}

func TestStage_ForceSkipThenForceRun(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	s := addStage(cacheDir)
	require.NoError(t, s.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))

	s2 := addStage(cacheDir)
	require.NoError(t, s2.Run(context.Background(), []any{1, 2}, nil, RunOptions{ForceSkip: true}))
	assert.False(t, s2.RanThisCall)
	assert.True(t, s2.LoadedFromCache)

	s3 := addStage(cacheDir)
	require.NoError(t, s3.Run(context.Background(), []any{1, 2}, nil, RunOptions{ForceRun: true, ForceSkip: true}))
	assert.True(t, s3.RanThisCall, "ForceRun supersedes ForceSkip")
}

func TestStage_PinnedOverridesNamedAndPositional(t *testing.T) {
	t.Parallel()
	s := addStage("")
	require.NoError(t, s.SetPinned("y", 100))
	require.NoError(t, s.Run(context.Background(), []any{1, 2}, map[string]any{"y": 50}, RunOptions{}))
	assert.Equal(t, 101, s.Results["z"])
}

func TestStage_SetPinnedUnknownName(t *testing.T) {
	t.Parallel()
	s := addStage("")
	err := s.SetPinned("nope", 1)
	assert.Error(t, err)
}

func TestStage_AliasTransparency(t *testing.T) {
	t.Parallel()
	s := addStage("")
	require.NoError(t, s.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))
	require.NoError(t, s.SetAlias("sum", "z"))

	v, err := s.Result("sum")
	require.NoError(t, err)
	assert.Equal(t, s.Results["z"], v)
}

func TestStage_AliasRejectsUnknownTarget(t *testing.T) {
	t.Parallel()
	s := addStage("")
	err := s.SetAlias("sum", "not-an-output")
	assert.Error(t, err)
}

func TestStage_AliasRejectsSelfReference(t *testing.T) {
	t.Parallel()
	s := addStage("")
	err := s.SetAlias("z", "z")
	assert.Error(t, err)
}

func TestStage_CallableErrorPropagates(t *testing.T) {
	t.Parallel()
	fn := func(_ context.Context, _ map[string]any) ([]any, error) {
		return nil, assert.AnError
	}
	s := New("boom", nil, nil, fn, fingerprint.FromSource("boom", []byte("x")))
	err := s.Run(context.Background(), nil, nil, RunOptions{})
	assert.Error(t, err)
}

func TestStage_OutputPaddingAndTruncation(t *testing.T) {
	t.Parallel()
	fn := func(_ context.Context, _ map[string]any) ([]any, error) {
		return []any{1}, nil
	}
	s := New("under", nil, []string{"a", "b"}, fn, fingerprint.FromSource("under", []byte("x")))
	require.NoError(t, s.Run(context.Background(), nil, nil, RunOptions{}))
	assert.Equal(t, 1, s.Results["a"])
	assert.Nil(t, s.Results["b"])
}

func TestStage_CorruptedCacheSelfHeals(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	s := addStage(cacheDir)
	require.NoError(t, s.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))

	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "add.outputs"), []byte("{not json"), 0o644))

	s2 := addStage(cacheDir)
	require.NoError(t, s2.Run(context.Background(), []any{1, 2}, nil, RunOptions{}))
	assert.True(t, s2.RanThisCall)
	assert.Equal(t, 3, s2.Results["z"])
}
