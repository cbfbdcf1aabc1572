// Package config loads qgen settings from an optional YAML file and the
// environment. API keys only ever come from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/qgen/internal/audit"
	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/store"
	"github.com/abhisek/qgen/internal/supervisor"
)

// Config is the full qgen configuration.
type Config struct {
	Generator Role     `yaml:"generator"`
	Auditor   Role     `yaml:"auditor"`
	Pipeline  Pipeline `yaml:"pipeline"`
	Store     Store    `yaml:"store"`
}

// Role selects the model serving one pipeline seat. Empty fields keep the
// role's defaults.
type Role struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`

	// Reasoning enables the step-by-step audit prompt. It is implied by the
	// deepseek-reasoner model. Only meaningful for the auditor.
	Reasoning bool `yaml:"reasoning"`
}

// Pipeline holds the supervision policy.
type Pipeline struct {
	MaxRetries int           `yaml:"max_retries"`
	PassScore  int           `yaml:"pass_score"`
	AuditDelay time.Duration `yaml:"audit_delay"`
}

// Store configures persistence.
type Store struct {
	DB       string `yaml:"db"`
	RedisURL string `yaml:"redis_url"`
	RedisKey string `yaml:"redis_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	sup := supervisor.DefaultConfig()
	gen := llm.DefaultConfigFor(llm.GeneratorRole)
	aud := llm.DefaultConfigFor(llm.AuditorRole)
	return Config{
		Generator: Role{Provider: gen.Provider, Model: gen.Model(), Timeout: gen.Timeout},
		Auditor:   Role{Provider: aud.Provider, Model: aud.Model(), Timeout: aud.Timeout},
		Pipeline: Pipeline{
			MaxRetries: sup.MaxRetries,
			PassScore:  sup.PassScore,
			AuditDelay: sup.AuditDelay,
		},
		Store: Store{RedisKey: store.DefaultRedisKey},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/qgen/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "qgen", "config.yaml"), nil
}

// Load reads the file at path over the defaults and then applies the
// environment. An empty path means QGEN_CONFIG or, failing that,
// DefaultPath; a missing default file is not an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("QGEN_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected, which
// also keeps credentials out of the file.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays QGEN_DB, QGEN_REDIS_URL, QGEN_REDIS_KEY,
// QGEN_MAX_RETRIES, QGEN_PASS_SCORE and QGEN_AUDIT_DELAY. Role settings
// are overlaid later, by LLM.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("QGEN_DB"); v != "" {
		c.Store.DB = v
	}
	if v := os.Getenv("QGEN_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("QGEN_REDIS_KEY"); v != "" {
		c.Store.RedisKey = v
	}
	if v := os.Getenv("QGEN_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QGEN_MAX_RETRIES: %w", err)
		}
		c.Pipeline.MaxRetries = n
	}
	if v := os.Getenv("QGEN_PASS_SCORE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QGEN_PASS_SCORE: %w", err)
		}
		c.Pipeline.PassScore = n
	}
	if v := os.Getenv("QGEN_AUDIT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QGEN_AUDIT_DELAY: %w", err)
		}
		c.Pipeline.AuditDelay = d
	}
	return nil
}

func (c Config) role(r llm.ServiceRole) Role {
	if r == llm.AuditorRole {
		return c.Auditor
	}
	return c.Generator
}

// LLM returns the provider configuration for role: defaults, then the
// file's role section, then the environment (keys and QGEN_<ROLE>_*).
func (c Config) LLM(r llm.ServiceRole) llm.Config {
	cfg := llm.DefaultConfigFor(r)
	role := c.role(r)
	if role.Provider != "" {
		cfg.Provider = role.Provider
	}
	if role.Timeout > 0 {
		cfg.Timeout = role.Timeout
	}
	if role.Model != "" {
		cfg.SetModel(role.Model)
	}
	if role.BaseURL != "" {
		cfg.SetBaseURL(role.BaseURL)
	}
	llm.ApplyEnv(&cfg, r)
	return cfg
}

// Supervisor returns the supervision policy.
func (c Config) Supervisor() supervisor.Config {
	return supervisor.Config{
		MaxRetries: c.Pipeline.MaxRetries,
		PassScore:  c.Pipeline.PassScore,
		AuditDelay: c.Pipeline.AuditDelay,
	}
}

// Audit returns the audit client configuration.
func (c Config) Audit() audit.Config {
	cfg := audit.DefaultConfig()
	cfg.Delay = c.Pipeline.AuditDelay
	cfg.Reasoning = c.Auditor.Reasoning || c.LLM(llm.AuditorRole).Model() == llm.DeepSeekReasonerModel
	return cfg
}

// Validate checks both roles and the pipeline policy.
func (c Config) Validate() error {
	var errs []error
	for _, r := range []llm.ServiceRole{llm.GeneratorRole, llm.AuditorRole} {
		if err := c.LLM(r).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
		}
	}
	if c.Pipeline.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("pipeline: max_retries must be >= 0, got %d", c.Pipeline.MaxRetries))
	}
	if c.Pipeline.PassScore < 0 || c.Pipeline.PassScore > 100 {
		errs = append(errs, fmt.Errorf("pipeline: pass_score must be within 0-100, got %d", c.Pipeline.PassScore))
	}
	if c.Pipeline.AuditDelay < 0 {
		errs = append(errs, fmt.Errorf("pipeline: audit_delay must not be negative, got %s", c.Pipeline.AuditDelay))
	}
	return errors.Join(errs...)
}

// SameModel reports whether both roles resolve to the same provider and
// model, which defeats independent auditing.
func (c Config) SameModel() bool {
	g, a := c.LLM(llm.GeneratorRole), c.LLM(llm.AuditorRole)
	return g.Provider == a.Provider && g.Model() == a.Model()
}
