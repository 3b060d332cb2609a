package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// defaultConfigFile is the config path used when a CLI's --config flag is
// left empty.
const defaultConfigFile = ".gomemori.toml"

// gomemoriEnvKeys are the environment variables Resolve's env layer reads.
var gomemoriEnvKeys = []string{
	"GOMEMORI_CACHE_DIR",
	"GOMEMORI_PARALLELISM",
	"GOMEMORI_LOG_FORMAT",
	"GOMEMORI_KILL_ON_FAIL",
}

// EnvMap reads the gomemori-prefixed environment variables Resolve
// understands into a map, the form its env parameter expects.
func EnvMap() map[string]string {
	out := make(map[string]string, len(gomemoriEnvKeys))
	for _, k := range gomemoriEnvKeys {
		if v, ok := os.LookupEnv(k); ok {
			out[k] = v
		}
	}
	return out
}

// LoadResolved is the entry point memo and pathman's PersistentPreRunE use:
// it reads path (or defaultConfigFile when path is empty) if present, then
// layers Defaults(), the file, and the environment through Resolve. A
// missing defaultConfigFile is not an error; an explicitly named path that
// does not exist is.
func LoadResolved(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	var fileCfg *Config
	if _, err := os.Stat(path); err == nil {
		cfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		fileCfg = cfg
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return Resolve(fileCfg, EnvMap())
}

// LoadFromFile reads and parses a TOML configuration file at path. Unknown
// TOML keys produce slog warnings, not errors, so old config files keep
// working across schema additions.
func LoadFromFile(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	warnUndecodedKeys(meta, path)
	return &cfg, nil
}

func warnUndecodedKeys(meta toml.MetaData, source string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	slog.Warn("unknown config keys will be ignored", "source", source, "keys", strings.Join(keys, ", "))
}

// Resolve layers Defaults(), an optional file config, and environment
// variable overrides (GOMEMORI_CACHE_DIR, GOMEMORI_PARALLELISM,
// GOMEMORI_LOG_FORMAT, GOMEMORI_KILL_ON_FAIL) into a single effective
// Config, using koanf to merge the layers in priority order (later layers
// win).
func Resolve(fileCfg *Config, env map[string]string) (*Config, error) {
	k := koanf.New(".")

	defaultsMap := toMap(Defaults())
	if err := k.Load(confmap.Provider(defaultsMap, "."), nil); err != nil {
		return nil, err
	}

	if fileCfg != nil {
		if err := k.Load(confmap.Provider(toMap(fileCfg), "."), nil); err != nil {
			return nil, err
		}
	}

	if override := envOverrides(env); len(override) > 0 {
		if err := k.Load(confmap.Provider(override, "."), nil); err != nil {
			return nil, err
		}
	}

	return &Config{
		CacheDir:    k.String("cache_dir"),
		Parallelism: k.Int("parallelism"),
		LogFormat:   k.String("log_format"),
		KillOnFail:  k.Bool("kill_on_fail"),
	}, nil
}

func toMap(c *Config) map[string]any {
	return map[string]any{
		"cache_dir":    c.CacheDir,
		"parallelism":  c.Parallelism,
		"log_format":   c.LogFormat,
		"kill_on_fail": c.KillOnFail,
	}
}

func envOverrides(env map[string]string) map[string]any {
	out := map[string]any{}
	if v, ok := env["GOMEMORI_CACHE_DIR"]; ok && v != "" {
		out["cache_dir"] = v
	}
	if v, ok := env["GOMEMORI_PARALLELISM"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out["parallelism"] = n
		}
	}
	if v, ok := env["GOMEMORI_LOG_FORMAT"]; ok && v != "" {
		out["log_format"] = v
	}
	if v, ok := env["GOMEMORI_KILL_ON_FAIL"]; ok && v != "" {
		out["kill_on_fail"] = v == "1" || strings.EqualFold(v, "true")
	}
	return out
}
