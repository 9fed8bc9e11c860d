// Package config loads tinybc settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
)

// EnvVar names a config file to use when no explicit path is given.
const EnvVar = "TINYBC_CONFIG"

// Config holds the complete tinybc configuration
type Config struct {
	Lexer  LexerConfig  `toml:"lexer" yaml:"lexer"`
	Parser ParserConfig `toml:"parser" yaml:"parser"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// LexerConfig holds lexer settings
type LexerConfig struct {
	Lookahead int `toml:"lookahead" yaml:"lookahead"`
}

// ParserConfig holds parser settings
type ParserConfig struct {
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

// OutputConfig holds CLI rendering settings
type OutputConfig struct {
	Pretty bool   `toml:"pretty" yaml:"pretty"`
	Color  bool   `toml:"color" yaml:"color"`
	Format string `toml:"format" yaml:"format"` // "text" or "json"
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // "text" or "json"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Lexer:  LexerConfig{Lookahead: 3},
		Parser: ParserConfig{MaxDepth: 256},
		Output: OutputConfig{Pretty: true, Color: true, Format: "text"},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

var (
	validFormats = map[string]bool{"text": true, "json": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Error reports an invalid or unreadable configuration.
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic reports the error as an E_CONFIG diagnostic.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	d := diagnostics.MakeDiag(diagnostics.EConfig, msg, 1, 1)
	if e.Path != "" {
		d = d.WithFile(e.Path)
	}
	return d
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.Lexer.Lookahead < 2:
		return &Error{Msg: fmt.Sprintf("lexer.lookahead must be at least 2, got %d", c.Lexer.Lookahead)}
	case c.Parser.MaxDepth < 1:
		return &Error{Msg: fmt.Sprintf("parser.max_depth must be at least 1, got %d", c.Parser.MaxDepth)}
	case !validFormats[c.Output.Format]:
		return &Error{Msg: fmt.Sprintf("output.format must be text or json, got %q", c.Output.Format)}
	case !validLevels[strings.ToLower(c.Log.Level)]:
		return &Error{Msg: fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level)}
	case !validFormats[c.Log.Format]:
		return &Error{Msg: fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format)}
	}
	return nil
}

// Parse decodes data over the defaults. format is "toml" or "yaml".
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return nil, &Error{Msg: "TOML parse error", Err: err}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, &Error{Msg: fmt.Sprintf("unknown config key %q", undecoded[0].String())}
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document leaves the defaults in place
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, &Error{Msg: "YAML parse error", Err: err}
		}
	default:
		return nil, &Error{Msg: fmt.Sprintf("unsupported config format %q", format)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat determines the configuration format from file extension
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Msg: "cannot read config", Err: err}
	}
	cfg, err := Parse(data, detectFormat(path))
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Discover returns the first config file found for projectDir.
// Precedence: project (.tinybc.toml, .tinybc.yaml) → user (~/.tinybc/config.toml).
func Discover(projectDir string) (string, bool) {
	candidates := []string{
		filepath.Join(projectDir, ".tinybc.toml"),
		filepath.Join(projectDir, ".tinybc.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tinybc", "config.toml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Resolve picks the configuration for a run: the explicit path, then
// $TINYBC_CONFIG, then Discover, then Default. It returns the file used,
// or "" for the defaults.
func Resolve(explicit, projectDir string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		var found bool
		if path, found = Discover(projectDir); !found {
			return Default(), "", nil
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
