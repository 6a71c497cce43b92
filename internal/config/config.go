// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads metaprop CLI settings. Values come from flag
// defaults, then an optional YAML file, then flags set on the command line.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/metaprop/internal/logging"
	"github.com/holomush/metaprop/internal/xdg"
)

// Config holds every setting.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Document DocumentConfig `koanf:"document"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DocumentConfig names the document the CLI works on.
type DocumentConfig struct {
	Type string `koanf:"type"`
	File string `koanf:"file"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// Default values.
const (
	DefaultLogFormat    = "text"
	DefaultLogLevel     = "info"
	DefaultDocumentType = "Test"
	DefaultMetricsAddr  = "127.0.0.1:9100"
)

// RegisterFlags adds one flag per setting to fs. Flag names are the keys
// with '.' replaced by '-'.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("log-format", DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("document-type", DefaultDocumentType, "reflected type of the document")
	flags.String("document-file", "", "document file (yaml, toml, json or bin)")
	flags.Bool("metrics-enabled", false, "serve Prometheus metrics while the command runs")
	flags.String("metrics-addr", DefaultMetricsAddr, "metrics HTTP listen address")
}

// Load reads the YAML file at path, if any, and the flags in fs. An empty
// path means the default file, which may be missing; an explicit path must
// exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		def, err := xdg.ConfigFile()
		if err != nil {
			return nil, err
		}
		path = def
	}
	path, err := xdg.Expand(path)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr == nil || explicit {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(statErr)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	if cfg.Document.File != "" {
		if cfg.Document.File, err = xdg.Expand(cfg.Document.File); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks the settings. types lists the document types the caller
// knows about.
func (c *Config) Validate(types []string) error {
	if !slices.Contains(logging.Formats, c.Log.Format) {
		return oops.Code("INVALID_CONFIG").With("log.format", c.Log.Format).
			Errorf("log.format must be one of %s, got %q", strings.Join(logging.Formats, ", "), c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("INVALID_CONFIG").With("log.level", c.Log.Level).
			Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if !slices.Contains(types, c.Document.Type) {
		return oops.Code("INVALID_CONFIG").With("document.type", c.Document.Type).
			Errorf("unknown document type %q", c.Document.Type)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return oops.Code("INVALID_CONFIG").Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}
