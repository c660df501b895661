// Package config resolves runtime settings from the environment and
// command-line overrides. The resulting value is passed explicitly to every
// constructor; nothing reads it from a global.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/persona/internal/llm"
	"github.com/abhisek/persona/internal/store"
)

// Config holds all application settings.
type Config struct {
	// Home is the data root. Unset directories below default to
	// subdirectories of it.
	Home       string `env:"PERSONA_HOME"`
	SessionDir string `env:"PERSONA_SESSION_DIR"`
	ExportDir  string `env:"PERSONA_EXPORT_DIR"`
	DBPath     string `env:"PERSONA_DB"`

	// ResumeWindow is how long after its last update an unfinished session
	// stays resumable.
	ResumeWindow time.Duration `env:"PERSONA_RESUME_WINDOW" envDefault:"30m"`
	// Retention is the age after which session files are deleted.
	Retention time.Duration `env:"PERSONA_RETENTION" envDefault:"168h"`

	LogLevel string `env:"PERSONA_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"PERSONA_LOG_FILE"`

	// Seed fixes question order when non-zero.
	Seed uint64 `env:"PERSONA_SEED"`

	LLM llm.Config `envPrefix:"PERSONA_LLM_"`
}

// Overrides are command-line values that take precedence over the
// environment. Empty fields are ignored.
type Overrides struct {
	Home       string
	DBPath     string
	SessionDir string
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment, applies ov, fills derived defaults and
// validates the result.
func Load(ov Overrides) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.apply(ov)
	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(ov Overrides) {
	if ov.Home != "" {
		c.Home = ov.Home
	}
	if ov.DBPath != "" {
		c.DBPath = ov.DBPath
	}
	if ov.SessionDir != "" {
		c.SessionDir = ov.SessionDir
	}
}

// resolve fills unset paths from Home, which itself defaults to
// $XDG_DATA_HOME/persona or ~/.local/share/persona.
func (c *Config) resolve() error {
	if c.Home == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home dir: %w", err)
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		c.Home = filepath.Join(dataHome, "persona")
	}
	if c.SessionDir == "" {
		c.SessionDir = filepath.Join(c.Home, "sessions")
	}
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(c.Home, "exports")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.Home, "persona.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.Home, "persona.log")
	}
	return nil
}

// Validate rejects settings the session store cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.ResumeWindow <= 0 {
		errs = append(errs, fmt.Errorf("PERSONA_RESUME_WINDOW must be positive, got %s", c.ResumeWindow))
	}
	if c.Retention <= 0 {
		errs = append(errs, fmt.Errorf("PERSONA_RETENTION must be positive, got %s", c.Retention))
	}
	if c.SessionDir == "" {
		errs = append(errs, errors.New("session directory is empty"))
	}
	return errors.Join(errs...)
}

// EnsureDirs creates the session, export and database directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.SessionDir, c.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := store.EnsureDir(c.DBPath); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}
