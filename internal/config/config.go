// Package config assembles the application configuration from built-in
// defaults, an optional YAML file, an optional .env file and CLARIO_*
// environment variables, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/augment"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/llm"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/results"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// Config is the full application configuration.
type Config struct {
	LLM        llm.Config         `yaml:"llm"`
	Generation questiongen.Config `yaml:"generation"`
	Augment    augment.Config     `yaml:"augment"`
	Session    session.Config     `yaml:"session"`
	Integrity  integrity.Policy   `yaml:"integrity"`
	Bank       BankConfig         `yaml:"bank"`
	Store      StoreConfig        `yaml:"store"`
	Results    results.Config     `yaml:"results"`
	Server     ServerConfig       `yaml:"server"`
	Log        LogConfig          `yaml:"log"`
}

// BankConfig points at an external fallback bank. Empty means the
// embedded bank.
type BankConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig locates the SQLite database. Empty means the XDG default.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures `clario serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`

	// SessionTTL is how long a finished session stays readable before
	// the registry evicts it.
	SessionTTL time.Duration `yaml:"session_ttl" validate:"min=1s"`

	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode" validate:"oneof=debug release test"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM:        llm.DefaultConfig(),
		Generation: questiongen.DefaultConfig(),
		Augment:    augment.DefaultConfig(),
		Session:    session.DefaultConfig(),
		Integrity:  integrity.DefaultPolicy(),
		Results:    results.DefaultConfig(),
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: 15 * time.Minute,
			Mode:       "release",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

var validate = validator.New()

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DefaultPath resolves the config file location:
// 1. CLARIO_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/clario/config.yaml
// 3. ~/.config/clario/config.yaml
func DefaultPath() string {
	if p := os.Getenv("CLARIO_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "clario", "config.yaml")
}

// Load builds the configuration. A missing file at path is not an
// error; an empty path skips the file entirely. envFiles are loaded with
// godotenv before the environment is read and never override variables
// that are already set. Missing env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes path over the current values, so keys absent from
// the file keep their defaults.
func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// applyEnv overrides values from CLARIO_* variables. Malformed numeric
// or duration values are errors rather than silently ignored.
func (c *Config) applyEnv() error {
	llm.ApplyEnv(&c.LLM)

	setString(&c.Store.Path, "CLARIO_DB")
	setString(&c.Bank.Path, "CLARIO_BANK")
	setString(&c.Log.Level, "CLARIO_LOG_LEVEL")
	setString(&c.Log.Format, "CLARIO_LOG_FORMAT")
	setString(&c.Server.Addr, "CLARIO_ADDR")
	setString(&c.Augment.RedisURL, "CLARIO_REDIS_URL")
	setString(&c.Augment.SearchURL, "CLARIO_SEARCH_URL")
	setString(&c.Results.Transport, "CLARIO_RESULTS_TRANSPORT")
	setString(&c.Results.Topic, "CLARIO_RESULTS_TOPIC")

	if v := os.Getenv("CLARIO_KAFKA_BROKERS"); v != "" {
		c.Results.KafkaBrokers = splitList(v)
	}
	if v := os.Getenv("CLARIO_GRACE_POLICY"); v != "" {
		c.Session.GracePolicy = session.GracePolicy(v)
	}
	if v := os.Getenv("CLARIO_AUGMENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CLARIO_AUGMENT: %w", err)
		}
		c.Augment.Enabled = b
	}
	if v := os.Getenv("CLARIO_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CLARIO_SESSION_TTL: %w", err)
		}
		c.Server.SessionTTL = d
	}
	if v := os.Getenv("CLARIO_GENERATION_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLARIO_GENERATION_ATTEMPTS: %w", err)
		}
		c.Generation.Retry.MaxAttempts = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
