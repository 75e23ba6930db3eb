package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/dshills/formatto/internal/config/loader"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FORMATTO_"

// Config is the application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Locale   LocaleConfig   `yaml:"locale"`
	Vault    VaultConfig    `yaml:"vault"`
	Engine   EngineConfig   `yaml:"engine"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Notices  NoticesConfig  `yaml:"notices"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is a zerolog level name.
	Level string `yaml:"level"`
	// Format is "console", "json" or "auto" (console on a terminal).
	Format string `yaml:"format"`
}

// LocaleConfig selects the message language.
type LocaleConfig struct {
	Language string `yaml:"language"`
}

// VaultConfig locates documents and the settings data file.
type VaultConfig struct {
	Root string `yaml:"root"`
	// DataFile is the settings data file. Relative paths are resolved
	// against the user config directory.
	DataFile string `yaml:"dataFile"`
}

// EngineConfig selects the formatting engine.
type EngineConfig struct {
	// Script is the Lua engine script.
	Script string `yaml:"script"`
	// Timeout bounds one format call. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// AutosaveConfig tunes format on save.
type AutosaveConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// NoticesConfig tunes notices.
type NoticesConfig struct {
	// AlwaysNotify reports an unchanged document as formatted when
	// notifyWhenUnchanged is off.
	AlwaysNotify bool `yaml:"alwaysNotify"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "auto"},
		Locale:   LocaleConfig{Language: "en"},
		Vault:    VaultConfig{Root: ".", DataFile: "data.json"},
		Engine:   EngineConfig{Script: "format.lua"},
		Autosave: AutosaveConfig{Delay: time.Second},
	}
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. It must exist.
	File string
	// Dir is searched for config.toml, config.yaml and config.yml when File
	// is empty. Defaults to UserConfigDir.
	Dir string
	// FS reads config files. Defaults to the OS file system.
	FS loader.FileSystem
	// Env overrides the environment loader, for tests.
	Env loader.Loader
}

// Load layers the defaults, the config file and the environment.
func Load(opts Options) (Config, error) {
	if opts.FS == nil {
		opts.FS = loader.DefaultFS()
	}
	if opts.Dir == "" {
		opts.Dir = UserConfigDir()
	}
	if opts.Env == nil {
		opts.Env = loader.NewEnvLoader(EnvPrefix)
	}

	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	file, err := loadFile(opts)
	if err != nil {
		return Config{}, err
	}
	merged = loader.DeepMerge(merged, file)

	env, err := opts.Env.Load()
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, env)

	cfg, err := fromMap(merged)
	if err != nil {
		return Config{}, err
	}
	cfg.Vault.DataFile = cfg.DataFilePath(opts.Dir)
	return cfg, cfg.Validate()
}

func loadFile(opts Options) (map[string]any, error) {
	if opts.File != "" {
		l, err := loader.ForPath(opts.FS, opts.File)
		if err != nil {
			return nil, err
		}
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, opts.File)
		}
		return m, nil
	}

	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(opts.Dir, name)
		l, err := loader.ForPath(opts.FS, path)
		if err != nil {
			return nil, err
		}
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
	return nil, nil
}

// toMap and fromMap round-trip through YAML so the merged layers decode
// with the same rules as a YAML file.
func toMap(cfg Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	return m, nil
}

func fromMap(m map[string]any) (Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("encoding config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level})
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		errs = append(errs, &ValidationError{Path: "logging.format", Message: "must be auto, console or json", Value: c.Logging.Format})
	}
	if c.Autosave.Delay <= 0 {
		errs = append(errs, &ValidationError{Path: "autosave.delay", Message: "must be positive", Value: c.Autosave.Delay})
	}
	if c.Engine.Timeout < 0 {
		errs = append(errs, &ValidationError{Path: "engine.timeout", Message: "must not be negative", Value: c.Engine.Timeout})
	}
	return errors.Join(errs...)
}

// DataFilePath resolves the settings data file against dir.
func (c Config) DataFilePath(dir string) string {
	p := expandHome(c.Vault.DataFile)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ScriptPath resolves the engine script against dir.
func (c Config) ScriptPath(dir string) string {
	p := expandHome(c.Engine.Script)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// UserConfigDir returns the formatto directory under the user config
// directory.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "formatto")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "formatto")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
