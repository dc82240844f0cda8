package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Options for loading config. ConfigPath is relative to RootDir if not absolute.
type Options struct {
	ConfigPath   string
	RootDir      string
	SkipValidate bool // if true, do not validate (e.g. for config print)
	// Overrides apply last (flags > env > file > defaults). Nil means no CLI overrides.
	Overrides *Overrides
}

// Overrides holds CLI flag values. Only non-nil fields are applied.
type Overrides struct {
	CatalogPath     *string
	ServerTransport *string
	ServerListen    *string
	ServerMCPPath   *string
	LogLevel        *string
	LogFormat       *string
}

// Load builds config with precedence: defaults → config file → dotenv → env → Overrides.
// A .toml extension selects TOML, anything else is read as YAML. A missing
// file is not an error.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	if !filepath.IsAbs(configPath) && opts.RootDir != "" {
		configPath = filepath.Join(opts.RootDir, configPath)
	}
	if err := readFile(configPath, &cfg); err != nil {
		return nil, err
	}

	env, err := environment(opts)
	if err != nil {
		return nil, err
	}
	applyEnv(&cfg, env)

	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides)
	}

	if !opts.SkipValidate {
		if err := Validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("CONFIG_INVALID: cannot read config file %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("CONFIG_INVALID: malformed TOML in %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("CONFIG_INVALID: malformed YAML in %s: %w", path, err)
	}
	return nil
}

// dotEnvFiles are read from RootDir in order. The first file to define a key
// wins; the real environment always wins.
var dotEnvFiles = []string{".env.local", ".env"}

// environment merges dotenv values under the process environment without
// mutating it.
func environment(opts Options) (func(string) string, error) {
	merged := map[string]string{}
	for _, name := range dotEnvFiles {
		if !filepath.IsAbs(name) && opts.RootDir != "" {
			name = filepath.Join(opts.RootDir, name)
		}
		values, err := godotenv.Read(name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("CONFIG_INVALID: failed loading dotenv file %s: %w", name, err)
		}
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return v
		}
		return merged[key]
	}, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvCatalogPath)); v != "" {
		cfg.Catalog.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvListen)); v != "" {
		cfg.Server.Listen = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.CatalogPath != nil {
		cfg.Catalog.Path = *o.CatalogPath
	}
	if o.ServerTransport != nil {
		cfg.Server.Transport = *o.ServerTransport
	}
	if o.ServerListen != nil {
		cfg.Server.Listen = *o.ServerListen
	}
	if o.ServerMCPPath != nil {
		cfg.Server.MCPPath = *o.ServerMCPPath
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		cfg.Log.Format = *o.LogFormat
	}
}
