package pathmancli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanandrew/gomemori/internal/pathutil"
)

func TestParseChain_NoArgCommands(t *testing.T) {
	t.Parallel()
	cmds, err := ParseChain([]string{"get-prefix", "delete-suffix"})
	require.NoError(t, err)
	assert.Equal(t, []pathutil.Command{{Name: "get-prefix"}, {Name: "delete-suffix"}}, cmds)
}

func TestParseChain_ConsumesArgument(t *testing.T) {
	t.Parallel()
	cmds, err := ParseChain([]string{"append-suffix", "_v2", "repath", "/out"})
	require.NoError(t, err)
	assert.Equal(t, []pathutil.Command{
		{Name: "append-suffix", Arg: "_v2"},
		{Name: "repath", Arg: "/out"},
	}, cmds)
}

func TestParseChain_MissingArgument(t *testing.T) {
	t.Parallel()
	_, err := ParseChain([]string{"repath"})
	assert.Error(t, err)
}

func TestRunPathman_WritesResult(t *testing.T) {
	t.Parallel()
	cmd := RootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"/data/scan.txt", "get-prefix"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "/data/scan")
}
