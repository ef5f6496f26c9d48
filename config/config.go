// Package config loads and saves the Interpreter's "cheat_config.json"
// described in spec §6: a UTF-8 JSON object with four recognized keys,
// where unknown keys must round-trip untouched for host access.
//
// Grounded on ArkLabsHQ-introspector's use of a dedicated *viper.Viper
// instance (never viper's package-level global) per config source, so
// multiple Interpreters can load independent config files in the same
// process — SPEC_FULL.md's ambient-stack rationale, and the §9 design
// note that mutable process-wide state "belongs on the interpreter
// instance to permit multiple instances in tests".
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the typed view over the four recognized keys of spec §6; all
// other keys loaded from disk are preserved in Extra for host access and
// written back verbatim by Save.
type Config struct {
	CheatsEnabled        bool     `mapstructure:"cheats_enabled"`
	LogLevel             int      `mapstructure:"log_level"`
	SaveLastDirectory    string   `mapstructure:"save_last_directory"`
	AdditionalSearchPaths []string `mapstructure:"additional_search_paths"`

	// Extra holds every key Load found that isn't one of the four above,
	// so a host-specific key a caller doesn't know about yet survives a
	// Load/Save round trip unchanged.
	Extra map[string]interface{}

	path string
	v    *viper.Viper
}

// Default returns the platform-appropriate default config spec §6
// describes writing when no config file exists yet: cheats on, log level
// 1 (warnings and above), and a relative "Cheats/" save-last directory.
func Default() *Config {
	return &Config{
		CheatsEnabled:     true,
		LogLevel:          1,
		SaveLastDirectory: "Cheats/",
		Extra:             map[string]interface{}{},
	}
}

// Load reads path with a fresh *viper.Viper instance. If path does not
// exist, Load writes Default() to it first (spec §6: "absence of the file
// triggers write of a platform-appropriate default") and returns that.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		def := Default()
		def.path = path
		if err := def.Save(); err != nil {
			return nil, fmt.Errorf("config: writing default: %w", err)
		}
		return def, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c := &Config{
		CheatsEnabled:         v.GetBool("cheats_enabled"),
		LogLevel:              v.GetInt("log_level"),
		SaveLastDirectory:     normalizeDir(v.GetString("save_last_directory")),
		AdditionalSearchPaths: v.GetStringSlice("additional_search_paths"),
		Extra:                 map[string]interface{}{},
		path:                  path,
		v:                     v,
	}

	known := map[string]bool{
		"cheats_enabled": true, "log_level": true,
		"save_last_directory": true, "additional_search_paths": true,
	}
	for key, val := range v.AllSettings() {
		if !known[key] {
			c.Extra[key] = val
		}
	}
	return c, nil
}

// normalizeDir appends a trailing "/" if missing, per spec §6.
func normalizeDir(dir string) string {
	if dir == "" {
		return dir
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// Save writes c back to its source path (or the path given to Default
// before the first Save), preserving every key in Extra alongside the
// four recognized ones.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config: Save called on a Config with no path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("config: creating config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(c.path)
	v.SetConfigType("json")
	for k, val := range c.Extra {
		v.Set(k, val)
	}
	v.Set("cheats_enabled", c.CheatsEnabled)
	v.Set("log_level", c.LogLevel)
	v.Set("save_last_directory", normalizeDir(c.SaveLastDirectory))
	v.Set("additional_search_paths", c.AdditionalSearchPaths)

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("config: writing %s: %w", c.path, err)
	}
	c.v = v
	return nil
}

// SearchPaths returns every directory the parse cache should scan: the
// configured additional search paths plus the save-last directory, per
// SPEC_FULL.md's "SUPPLEMENTED FEATURES" note that the original folds
// GetSaveLastDirectory() into its own search-path set.
func (c *Config) SearchPaths() []string {
	paths := append([]string{}, c.AdditionalSearchPaths...)
	return append(paths, c.SaveLastDirectory)
}
