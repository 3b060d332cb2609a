package pathmancli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vanandrew/gomemori/internal/config"
	"github.com/vanandrew/gomemori/internal/merr"
	"github.com/vanandrew/gomemori/internal/pathutil"
)

var verbose bool
var configFile string

var rootCmd = &cobra.Command{
	Use:   "pathman PATH [COMMAND [ARG]]...",
	Short: "Chain path-manipulation operations over a starting path.",
	Long: `pathman applies a chain of path operations left-to-right over a
starting path: get-prefix, get-path-and-prefix, append-suffix SUFFIX,
replace-suffix SUFFIX, delete-suffix, repath DIR.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := config.LoadResolved(configFile)
		if err != nil {
			return err
		}
		level := config.ResolveLogLevel(verbose, false)
		config.SetupLogging(level, resolved.LogFormat)
		slog.Debug("logging initialized", "level", level, "format", resolved.LogFormat)
		return nil
	},
	RunE: runPathman,
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&configFile, "config", "", "TOML config file (defaults to .gomemori.toml if present)")
}

func runPathman(cmd *cobra.Command, args []string) error {
	start := args[0]
	chain, err := ParseChain(args[1:])
	if err != nil {
		return err
	}
	result, err := pathutil.Apply(start, chain)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var mErr *merr.Error
		if errors.As(err, &mErr) {
			return mErr.Code()
		}
		return 1
	}
	return 0
}

// RootCmd returns the root cobra.Command, for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
