// Package config handles configuration loading and management
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional config file looked up in the working directory.
const FileName = ".entail.yaml"

// Environment variables read by Load.
const (
	EnvBail       = "ENTAIL_BAIL"
	EnvColor      = "ENTAIL_COLOR"
	EnvExtensions = "ENTAIL_EXTENSIONS"
	EnvRecord     = "ENTAIL_RECORD"
	EnvLogLevel   = "LOG_LEVEL"
)

// DefaultPatterns selects suite files when no pattern is given.
var DefaultPatterns = []string{"**/*.test.{yaml,yml,json,cue}"}

// DefaultExtensions are the suite file extensions, without the dot.
var DefaultExtensions = []string{"yaml", "yml", "json", "cue"}

// Config holds the harness configuration.
type Config struct {
	Bail       bool     `yaml:"bail" json:"bail"`
	Color      *bool    `yaml:"color" json:"color"` // nil detects from the terminal
	Cwd        string   `yaml:"cwd" json:"cwd"`
	Extensions []string `yaml:"extensions" json:"extensions"`
	Ignore     []string `yaml:"ignore" json:"ignore"`
	Record     string   `yaml:"record" json:"record"`
	LogLevel   string   `yaml:"log_level" json:"log_level"`
	Patterns   []string `yaml:"patterns" json:"patterns"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Extensions: append([]string(nil), DefaultExtensions...),
		LogLevel:   "warn",
		Patterns:   append([]string(nil), DefaultPatterns...),
	}
}

// Lookup reads an environment variable.
type Lookup func(key string) (string, bool)

// Load builds the configuration for dir: defaults, then the config file
// (path, or FileName in dir when path is empty), then a .env file in dir,
// then the process environment. Variables already set in the environment
// win over .env entries.
func Load(dir, path string) (*Config, error) {
	return load(dir, path, os.LookupEnv)
}

func load(dir, path string, lookup Lookup) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if cfg.Cwd == "" {
		cfg.Cwd = dir
	} else if !filepath.IsAbs(cfg.Cwd) {
		cfg.Cwd = filepath.Join(dir, cfg.Cwd)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(env Lookup) error {
	if v, ok := env(EnvBail); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBail, err)
		}
		c.Bail = b
	}
	if v, ok := env(EnvColor); ok {
		color, err := ParseColor(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvColor, err)
		}
		c.Color = color
	}
	if v, ok := env(EnvExtensions); ok {
		c.Extensions = SplitList(v)
	}
	if v, ok := env(EnvRecord); ok {
		c.Record = v
	}
	if v, ok := env(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

// ParseColor reads "auto" as nil and anything else as a boolean.
func ParseColor(s string) (*bool, error) {
	if strings.EqualFold(strings.TrimSpace(s), "auto") {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SplitList splits a comma-separated list, dropping blanks and leading dots.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ".")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DottedExtensions returns the extensions with a leading dot.
func (c *Config) DottedExtensions() []string {
	out := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		out[i] = "." + strings.TrimPrefix(ext, ".")
	}
	return out
}

func (c *Config) String() string {
	color := "auto"
	if c.Color != nil {
		color = strconv.FormatBool(*c.Color)
	}
	record := c.Record
	if record == "" {
		record = "(not set)"
	}

	return fmt.Sprintf(`Current Configuration:
======================
Cwd:         %s
Patterns:    %s
Extensions:  %s
Ignore:      %s
Bail:        %t
Color:       %s
Record:      %s
Log Level:   %s`,
		c.Cwd,
		strings.Join(c.Patterns, ", "),
		strings.Join(c.Extensions, ", "),
		strings.Join(c.Ignore, ", "),
		c.Bail,
		color,
		record,
		c.LogLevel,
	)
}
