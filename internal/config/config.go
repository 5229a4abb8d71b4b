// Package config loads and validates monitor-affinity configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/davidmreed/monitor-affinity/internal/affinity"
	"github.com/davidmreed/monitor-affinity/internal/dispatch"
)

// Command is one configured command entry as written in YAML.
type Command struct {
	// Name is an optional label used in logs; defaults to the program name.
	Name string `yaml:"name,omitempty"`
	// Program is the executable to launch.
	Program string `yaml:"program"`
	// Args are passed to the program. When no env key is set, every %s in
	// an argument is replaced with the selected monitor's name; with an
	// env key set, args pass through verbatim, a literal %s included.
	Args []string `yaml:"args,omitempty"`
	// Affinities narrow the monitor set, in order. Tokens may be negated
	// with a "not-" or "!" prefix.
	Affinities []string `yaml:"affinities,omitempty"`
	// Env names an environment variable to set to the selected monitor's
	// name. When set, args are passed through verbatim.
	Env string `yaml:"env,omitempty"`
	// AllowMultiple launches the command once per matching monitor instead
	// of only on the alphabetically first match.
	AllowMultiple bool `yaml:"allow_multiple,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	// LogLevel controls daemon logging: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Display overrides the DISPLAY environment variable for the X
	// connection (e.g. ":1").
	Display string `yaml:"display,omitempty"`
	// XAuthority overrides the XAUTHORITY environment variable.
	XAuthority string `yaml:"xauthority,omitempty"`
	// Commands are dispatched independently of each other.
	Commands []Command `yaml:"commands"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{LogLevel: "info"}
}

// ValidationError reports an invalid config value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the whole configuration, including every affinity token,
// so a malformed criterion fails before any topology query.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	for i, cmd := range c.Commands {
		if err := cmd.Validate(); err != nil {
			if verr, ok := err.(*ValidationError); ok {
				verr.Path = fmt.Sprintf("commands[%d].%s", i, verr.Path)
			}
			return err
		}
	}
	return nil
}

// Validate checks one command entry, including its affinity tokens and
// delivery mode.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Program) == "" {
		return &ValidationError{Path: "program", Err: fmt.Errorf("program must not be empty")}
	}
	if _, err := affinity.ParseAll(c.Affinities); err != nil {
		return &ValidationError{Path: "affinities", Err: err}
	}
	if strings.TrimSpace(c.Env) != c.Env || strings.Contains(c.Env, "=") {
		return &ValidationError{Path: "env", Err: fmt.Errorf("env must be a plain variable name")}
	}
	return nil
}

// Spec compiles the command into a dispatchable spec.
func (c Command) Spec() (dispatch.CommandSpec, error) {
	criteria, err := affinity.ParseAll(c.Affinities)
	if err != nil {
		return dispatch.CommandSpec{}, err
	}
	delivery := dispatch.ArgPlaceholder()
	if c.Env != "" {
		delivery = dispatch.EnvVar(c.Env)
	}
	return dispatch.CommandSpec{
		Name:          c.Name,
		Affinities:    criteria,
		Delivery:      delivery,
		Program:       c.Program,
		Args:          c.Args,
		AllowMultiple: c.AllowMultiple,
	}, nil
}

// Specs compiles every configured command, preserving order.
func (c *Config) Specs() ([]dispatch.CommandSpec, error) {
	specs := make([]dispatch.CommandSpec, 0, len(c.Commands))
	for i, cmd := range c.Commands {
		spec, err := cmd.Spec()
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// SlogLevel maps the configured log level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
