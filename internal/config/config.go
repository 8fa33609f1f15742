// Package config loads sticky's settings.
//
// Settings come from config.toml in the user config directory
// (sticky-situation/config.toml), overridden by STICKY_* environment
// variables, falling back to built-in defaults. A missing file is not an
// error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sticky-situation/sticky/internal/app"
)

// AppDir is the directory name used under the user config and data dirs.
const AppDir = "sticky-situation"

// FileName is the config file name.
const FileName = "config.toml"

// EnvPrefix prefixes environment overrides, e.g. STICKY_DATABASE_PATH.
const EnvPrefix = "STICKY"

// Config holds every sticky setting.
type Config struct {
	// DatabasePath is the SQLite file holding the note copies.
	DatabasePath string `mapstructure:"database_path" toml:"database_path"`
	// StickiesDir is the Stickies.app data directory.
	StickiesDir string `mapstructure:"stickies_dir" toml:"stickies_dir"`
	// StateFile overrides the window state file. Empty means pick
	// .SavedStickiesState or StickiesState.plist inside StickiesDir.
	StateFile string `mapstructure:"state_file" toml:"state_file"`
	// LogConflicts enables the conflict log.
	LogConflicts bool `mapstructure:"log_conflicts" toml:"log_conflicts"`
	// ConflictLogPath is where last-write-wins overwrites are recorded.
	ConflictLogPath string `mapstructure:"conflict_log_path" toml:"conflict_log_path"`
	// ContinueOnError keeps a sync pass going after a failed note.
	ContinueOnError bool `mapstructure:"continue_on_error" toml:"continue_on_error"`
	// Hostname is recorded as the origin of synced notes.
	Hostname string `mapstructure:"hostname" toml:"hostname"`
	// AppName is the process name of the Stickies app.
	AppName string `mapstructure:"app_name" toml:"app_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	data := dataDir()
	host, _ := os.Hostname()
	return &Config{
		DatabasePath:    filepath.Join(data, "stickies.db"),
		StickiesDir:     defaultStickiesDir(),
		LogConflicts:    true,
		ConflictLogPath: filepath.Join(data, "conflicts.log"),
		Hostname:        host,
		AppName:         app.DefaultName,
	}
}

// DefaultPath returns the location of config.toml in the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, AppDir, FileName), nil
}

// Load reads the config file at path (DefaultPath when empty) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to reach it in Unmarshal
	d := Default()
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("stickies_dir", d.StickiesDir)
	v.SetDefault("state_file", d.StateFile)
	v.SetDefault("log_conflicts", d.LogConflicts)
	v.SetDefault("conflict_log_path", d.ConflictLogPath)
	v.SetDefault("continue_on_error", d.ContinueOnError)
	v.SetDefault("hostname", d.Hostname)
	v.SetDefault("app_name", d.AppName)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.DatabasePath = expandHome(cfg.DatabasePath)
	cfg.StickiesDir = expandHome(cfg.StickiesDir)
	cfg.StateFile = expandHome(cfg.StateFile)
	cfg.ConflictLogPath = expandHome(cfg.ConflictLogPath)

	return &cfg, nil
}

// EnsureFile writes the default configuration to path unless a file is
// already there. It reports whether a file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	var buf bytes.Buffer
	buf.WriteString("# sticky configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return false, fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return false, fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return true, nil
}

// EnsureDirs creates the parent directories of the database and the
// conflict log.
func (c *Config) EnsureDirs() error {
	for _, p := range []string{c.DatabasePath, c.ConflictLogPath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	return nil
}

// ConflictLogger returns a logger writing to the rotating conflict log, or
// nil when conflict logging is disabled. Close the returned io.Closer when
// done.
func (c *Config) ConflictLogger() (*log.Logger, io.Closer) {
	if !c.LogConflicts || c.ConflictLogPath == "" {
		return nil, nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   c.ConflictLogPath,
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     90, // days
	}
	return log.New(lj, "", log.LstdFlags), lj
}

// dataDir follows XDG_DATA_HOME, then the platform convention.
func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDir
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", AppDir)
	}
	return filepath.Join(home, ".local", "share", AppDir)
}

func defaultStickiesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Containers", "com.apple.Stickies", "Data", "Library", "Stickies")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
