package memocli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanandrew/gomemori/internal/config"
	"github.com/vanandrew/gomemori/internal/merr"
	"github.com/vanandrew/gomemori/internal/pathutil"
)

var opts Options
var logFile string
var verbose bool
var skipFile string
var configFile string

var rootCmd = &cobra.Command{
	Use:   "memo -- CMD [ARG...]",
	Short: "Run a command as a cached, fingerprinted stage.",
	Long: `memo wraps a single external command invocation as a memoizing stage.
Re-running memo with the same command, arguments, dependent binaries, and
input files reuses the cached outputs instead of re-invoking the command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := config.LoadResolved(configFile)
		if err != nil {
			return err
		}
		applyResolvedDefaults(cmd, resolved)

		level := config.ResolveLogLevel(verbose, false)
		format := resolved.LogFormat
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return merr.MissingResource("memo: cannot open log file "+logFile, err)
			}
			config.SetupLoggingWithWriter(level, format, f)
		} else {
			config.SetupLogging(level, format)
		}
		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
	RunE: runMemo,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringArrayVarP(&opts.Outputs, "output", "o", nil, "declared output path (repeatable)")
	flags.StringArrayVarP(&opts.Deps, "dep", "c", nil, "co-declared dependent executable (repeatable)")
	flags.StringVarP(&opts.CacheDir, "cache-dir", "d", "", "cache directory (memoization disabled if empty)")
	flags.StringVarP(&opts.Name, "name", "n", "", "stage name (defaults to the command's basename)")
	flags.IntVarP(&opts.Parallel, "parallel", "p", 0, "fan out across N independent argument groups")
	flags.StringArrayVar(&opts.Args, "arg", nil, "branch argument override, INDEX=VALUE (with -p)")
	flags.StringArrayVar(&opts.ArgOutputs, "arg-output", nil, "branch output override, INDEX=VALUE (with -p)")
	flags.BoolVarP(&opts.KillOnFail, "kill-on-fail", "k", false, "abort remaining branches on first failure")
	flags.StringVar(&skipFile, "skip-file", "", "gitignore-style patterns excluding branch outputs (with -p)")
	flags.StringVar(&configFile, "config", "", "TOML config file (defaults to .gomemori.toml if present)")
}

// applyResolvedDefaults fills in any of cache-dir/kill-on-fail the user did
// not pass explicitly on the command line with resolved's
// file-or-environment-backed value, so a config file's defaults only take
// effect where a flag wasn't given. resolved.Parallelism is not a branch
// count default (-p 0 meaningfully means "run once, don't fan out") — it
// bounds how many branches run concurrently once -p is given.
func applyResolvedDefaults(cmd *cobra.Command, resolved *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("cache-dir") {
		opts.CacheDir = resolved.CacheDir
	}
	if !flags.Changed("kill-on-fail") {
		opts.KillOnFail = resolved.KillOnFail
	}
	opts.MaxConcurrency = resolved.Parallelism
}

func runMemo(cmd *cobra.Command, args []string) error {
	executable := args[0]
	cmdArgs := args[1:]

	expandedOutputs, err := pathutil.ExpandGlobs(opts.Outputs)
	if err != nil {
		return err
	}
	opts.Outputs = expandedOutputs

	expandedDeps, err := pathutil.ExpandGlobs(opts.Deps)
	if err != nil {
		return err
	}
	opts.Deps = expandedDeps

	if opts.Parallel > 0 {
		return runParallelCmd(cmd, executable, cmdArgs)
	}

	code, err := RunSingle(cmd.Context(), executable, cmdArgs, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func runParallelCmd(cmd *cobra.Command, executable string, cmdArgs []string) error {
	argOverrides, err := ParseIndexed(opts.Args)
	if err != nil {
		return err
	}
	outputOverrides, err := ParseIndexed(opts.ArgOutputs)
	if err != nil {
		return err
	}

	baseArg := ""
	if len(cmdArgs) > 0 {
		baseArg = cmdArgs[0]
	}
	baseOutput := ""
	if len(opts.Outputs) > 0 {
		baseOutput = opts.Outputs[0]
	}

	branches := BuildBranches(opts.Parallel, opts.CacheDir, baseArg, baseOutput, argOverrides, outputOverrides)

	skip, err := NewSkipMatcher(skipFile)
	if err != nil {
		return err
	}
	branches = filterSkippedBranches(branches, skip)

	results, err := RunParallel(cmd.Context(), executable, cmdArgs, branches, opts, false)

	anyFailed := err != nil
	for _, r := range results {
		if r.Err != nil || r.ExitCode != 0 {
			anyFailed = true
		}
	}
	if anyFailed {
		return &ExitError{Code: 1}
	}
	return nil
}

// Execute runs the root command and returns the appropriate process exit
// code: a memocli.ExitError's own code, a *merr.Error's Code(), or 1 for any
// other non-nil error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return extractExitCode(err)
	}
	return 0
}

func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var mErr *merr.Error
	if errors.As(err, &mErr) {
		return mErr.Code()
	}
	return 1
}

// RootCmd returns the root cobra.Command, for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
