package config

// Config holds the ambient defaults gomemori's CLIs read before flags and
// environment overrides are layered on top, in the style of the teacher's
// TOML profile configuration.
type Config struct {
	// CacheDir is the default cache directory used when a CLI invocation
	// does not pass -d/--cache-dir explicitly.
	CacheDir string `toml:"cache_dir"`

	// Parallelism caps the number of concurrent branches memo -p will run.
	Parallelism int `toml:"parallelism"`

	// LogFormat is "text" or "json", overridden by GOMEMORI_LOG_FORMAT.
	LogFormat string `toml:"log_format"`

	// KillOnFail mirrors memo's -k flag default.
	KillOnFail bool `toml:"kill_on_fail"`
}

// Defaults returns the built-in configuration used when no config file is
// present.
func Defaults() *Config {
	return &Config{
		CacheDir:    ".gomemori-cache",
		Parallelism: 4,
		LogFormat:   "text",
		KillOnFail:  false,
	}
}
