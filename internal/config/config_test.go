package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qgen/internal/llm"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"QGEN_CONFIG", "QGEN_DB", "QGEN_REDIS_URL", "QGEN_REDIS_KEY",
		"QGEN_MAX_RETRIES", "QGEN_PASS_SCORE", "QGEN_AUDIT_DELAY",
		"QGEN_GENERATOR_PROVIDER", "QGEN_GENERATOR_MODEL", "QGEN_GENERATOR_TIMEOUT",
		"QGEN_AUDITOR_PROVIDER", "QGEN_AUDITOR_MODEL", "QGEN_AUDITOR_TIMEOUT",
		"QGEN_KIMI_API_KEY", "KIMI_API_KEY", "QGEN_KIMI_BASE_URL", "KIMI_BASE_URL",
		"QGEN_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY", "QGEN_DEEPSEEK_BASE_URL", "DEEPSEEK_BASE_URL",
		"QGEN_OPENAI_API_KEY", "QGEN_OPENAI_BASE_URL", "QGEN_OPENROUTER_API_KEY",
		"QGEN_ANTHROPIC_API_KEY", "QGEN_ANTHROPIC_BASE_URL", "QGEN_GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "qgen.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "kimi", cfg.Generator.Provider)
	assert.Equal(t, "moonshot-v1-8k", cfg.Generator.Model)
	assert.Equal(t, "deepseek", cfg.Auditor.Provider)
	assert.Equal(t, 45*time.Second, cfg.Auditor.Timeout)
	assert.Equal(t, 2, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 80, cfg.Pipeline.PassScore)
	assert.Equal(t, time.Second, cfg.Pipeline.AuditDelay)
	assert.Equal(t, "qgen:llm_events", cfg.Store.RedisKey)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `
generator:
  provider: openai
  model: gpt-4o
  timeout: 20s
auditor:
  model: deepseek-reasoner
pipeline:
  max_retries: 4
  audit_delay: 250ms
store:
  db: /tmp/q.db
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, 4, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 80, cfg.Pipeline.PassScore, "unset keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.AuditDelay)
	assert.Equal(t, "/tmp/q.db", cfg.Store.DB)

	gen := cfg.LLM(llm.GeneratorRole)
	assert.Equal(t, "gpt-4o", gen.Model())
	assert.Equal(t, 20*time.Second, gen.Timeout)

	aud := cfg.LLM(llm.AuditorRole)
	assert.Equal(t, "deepseek", aud.Provider)
	assert.Equal(t, "deepseek-reasoner", aud.Model())
	assert.True(t, cfg.Audit().Reasoning, "reasoner model implies reasoning mode")
	assert.Equal(t, 250*time.Millisecond, cfg.Audit().Delay)
}

func TestLoad_ConfigEnvSelectsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("QGEN_CONFIG", writeFile(t, "pipeline:\n  pass_score: 90\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Pipeline.PassScore)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("generator:\n  api_key: sk-secret\n"))
	require.Error(t, err, "credentials must not be accepted from the file")

	_, err = Parse([]byte("pipline:\n  max_retries: 1\n"))
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "generator:\n  model: moonshot-v1-32k\npipeline:\n  max_retries: 4\n")
	t.Setenv("QGEN_MAX_RETRIES", "1")
	t.Setenv("QGEN_PASS_SCORE", "70")
	t.Setenv("QGEN_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("QGEN_GENERATOR_MODEL", "moonshot-v1-128k")
	t.Setenv("KIMI_API_KEY", "k-legacy")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 70, cfg.Supervisor().PassScore)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)

	gen := cfg.LLM(llm.GeneratorRole)
	assert.Equal(t, "moonshot-v1-128k", gen.Model())
	assert.Equal(t, "k-legacy", gen.Kimi.APIKey)
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("QGEN_MAX_RETRIES", "two")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QGEN_KIMI_API_KEY")
	assert.Contains(t, err.Error(), "QGEN_DEEPSEEK_API_KEY")

	t.Setenv("QGEN_KIMI_API_KEY", "k")
	t.Setenv("QGEN_DEEPSEEK_API_KEY", "d")
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Pipeline.PassScore = 101
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Pipeline.MaxRetries = -1
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Pipeline.AuditDelay = -time.Second
	require.Error(t, bad.Validate())
}

func TestSameModel(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	assert.False(t, cfg.SameModel())

	cfg.Auditor = cfg.Generator
	assert.True(t, cfg.SameModel())
}
