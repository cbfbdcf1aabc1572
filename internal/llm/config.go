package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ServiceRole names the pipeline seat a provider fills. The generator and
// the auditor are configured independently so they can point at different
// vendors.
type ServiceRole string

const (
	GeneratorRole ServiceRole = "generator"
	AuditorRole   ServiceRole = "auditor"
)

// Config holds all LLM provider configuration for one service role.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "kimi", "deepseek", "openai", "openrouter", "anthropic",
	// "gemini", "mock"
	Provider string

	Kimi       CompatConfig
	DeepSeek   CompatConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	Retry      RetryConfig

	// Timeout bounds a single LLM request. Default: 30s for generation,
	// 45s for audit.
	Timeout time.Duration
}

// CompatConfig configures an OpenAI-compatible vendor endpoint
// (Moonshot Kimi, DeepSeek).
type CompatConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional. Vendor default when empty.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Proxy or gateway endpoint.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts <= 1 disables the retry decorator entirely; the supervisor
// owns round-level retries.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the generator defaults: Kimi with a 30s timeout.
func DefaultConfig() Config {
	return Config{
		Provider: "kimi",
		Kimi: CompatConfig{
			Model: "moonshot-v1-8k",
		},
		DeepSeek: CompatConfig{
			Model: "deepseek-chat",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// DefaultConfigFor returns the defaults for a service role. The auditor
// runs on DeepSeek with a longer timeout.
func DefaultConfigFor(role ServiceRole) Config {
	cfg := DefaultConfig()
	if role == AuditorRole {
		cfg.Provider = "deepseek"
		cfg.Timeout = 45 * time.Second
	}
	return cfg
}

// ConfigFromEnv builds a Config for role from environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv(role ServiceRole) Config {
	cfg := DefaultConfigFor(role)
	ApplyEnv(&cfg, role)
	return cfg
}

// ApplyEnv overlays environment variables onto cfg.
//
// Role-scoped: QGEN_<ROLE>_PROVIDER, QGEN_<ROLE>_MODEL, QGEN_<ROLE>_TIMEOUT.
// Provider-scoped: QGEN_<PROVIDER>_API_KEY and QGEN_<PROVIDER>_BASE_URL,
// with KIMI_API_KEY / DEEPSEEK_API_KEY (and their _BASE_URL peers) honoured
// as fallbacks.
func ApplyEnv(cfg *Config, role ServiceRole) {
	prefix := "QGEN_" + strings.ToUpper(string(role)) + "_"

	if p := os.Getenv(prefix + "PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if t := os.Getenv(prefix + "TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	if k := firstEnv("QGEN_KIMI_API_KEY", "KIMI_API_KEY"); k != "" {
		cfg.Kimi.APIKey = k
	}
	if u := firstEnv("QGEN_KIMI_BASE_URL", "KIMI_BASE_URL"); u != "" {
		cfg.Kimi.BaseURL = u
	}
	if k := firstEnv("QGEN_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY"); k != "" {
		cfg.DeepSeek.APIKey = k
	}
	if u := firstEnv("QGEN_DEEPSEEK_BASE_URL", "DEEPSEEK_BASE_URL"); u != "" {
		cfg.DeepSeek.BaseURL = u
	}
	if k := os.Getenv("QGEN_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if u := os.Getenv("QGEN_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if k := os.Getenv("QGEN_OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
	}
	if k := os.Getenv("QGEN_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if u := os.Getenv("QGEN_ANTHROPIC_BASE_URL"); u != "" {
		cfg.Anthropic.BaseURL = u
	}
	if k := os.Getenv("QGEN_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}

	// Model last: it applies to whichever provider is now selected.
	if m := os.Getenv(prefix + "MODEL"); m != "" {
		cfg.SetModel(m)
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// SetModel sets the model of the currently selected provider.
func (c *Config) SetModel(model string) {
	switch c.Provider {
	case "kimi":
		c.Kimi.Model = model
	case "deepseek":
		c.DeepSeek.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	case "anthropic":
		c.Anthropic.Model = model
	case "gemini":
		c.Gemini.Model = model
	}
}

// SetBaseURL overrides the endpoint of the currently selected provider.
// Gemini has a fixed endpoint and ignores it.
func (c *Config) SetBaseURL(url string) {
	switch c.Provider {
	case "kimi":
		c.Kimi.BaseURL = url
	case "deepseek":
		c.DeepSeek.BaseURL = url
	case "openai":
		c.OpenAI.BaseURL = url
	case "openrouter":
		c.OpenRouter.BaseURL = url
	case "anthropic":
		c.Anthropic.BaseURL = url
	}
}

// Model returns the configured model of the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case "kimi":
		return c.Kimi.Model
	case "deepseek":
		return c.DeepSeek.Model
	case "openai":
		return c.OpenAI.Model
	case "openrouter":
		return c.OpenRouter.Model
	case "anthropic":
		return c.Anthropic.Model
	case "gemini":
		return c.Gemini.Model
	case "mock":
		return "mock"
	}
	return ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "kimi":
		if c.Kimi.APIKey == "" {
			return fmt.Errorf("QGEN_KIMI_API_KEY is required for the kimi provider")
		}
	case "deepseek":
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("QGEN_DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("QGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("QGEN_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("QGEN_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("QGEN_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
