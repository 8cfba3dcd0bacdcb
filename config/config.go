// Package config resolves where the stockroom files live and how the stk
// tool behaves.
//
// Values come, by increasing priority, from built-in defaults, an optional
// config.yaml in the root folder, STK_* environment variables and command
// line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Keys of the configuration values, also used as flag names.
const (
	KeyRoot        = "root"
	KeyDefinitions = "definitions"
	KeyLedger      = "ledger"
	KeyOrigin      = "origin"
	KeyLogLevel    = "log.level"
)

// EnvPrefix prefixes environment variables: STK_ROOT, STK_LOG_LEVEL...
const EnvPrefix = "STK"

// Config is the resolved configuration.
type Config struct {
	Root        string // folder holding the stores and config.yaml
	Definitions string // definition files root
	Ledger      string // ledger segments root
	Origin      string // tag of this machine in new entries
	LogLevel    zerolog.Level
	File        string // config file used, if any
}

// Load resolves the configuration. Non empty overrides, keyed by Key*
// constants, win over everything else.
func Load(overrides map[string]string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyRoot, defaultRoot())
	v.SetDefault(KeyOrigin, hostname())
	v.SetDefault(KeyLogLevel, "warn")
	for k, val := range overrides {
		if val != "" {
			v.Set(k, val)
		}
	}

	root := v.GetString(KeyRoot)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	cfg := &Config{
		Root:        root,
		Definitions: under(root, v.GetString(KeyDefinitions), "definitions"),
		Ledger:      under(root, v.GetString(KeyLedger), "ledger"),
		Origin:      v.GetString(KeyOrigin),
		LogLevel:    level,
		File:        v.ConfigFileUsed(),
	}
	return cfg, nil
}

// under resolves a store folder: relative paths are taken from root.
func under(root, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func defaultRoot() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "stockroom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "stockroom"
	}
	return filepath.Join(home, ".local", "share", "stockroom")
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "local"
	}
	// keep the short name: laptop.example.org is laptop
	name, _, _ = strings.Cut(name, ".")
	return name
}
