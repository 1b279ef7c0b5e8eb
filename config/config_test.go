package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/normalize"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coldmail.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "coldmail.db", cfg.Database)
	assert.Equal(t, "all-minilm", cfg.AI.EmbeddingModel)
	assert.Equal(t, 30*time.Second, cfg.Retrieval.EmbedTimeout.Std())
	assert.True(t, cfg.Retrieval.CacheEmbeddings)
	assert.Equal(t, []string{"items", "summary", "text"}, cfg.Normalize.NewsPriority)
	assert.Equal(t, 300, cfg.Normalize.Truncate)
	assert.Equal(t, 32, cfg.Build.BatchSize)
	assert.Equal(t, time.Second, cfg.Build.RetryDelay.Std())
	assert.Equal(t, core.DefaultVariantModes, cfg.VariantModes())
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)

	defaults, err := Default()
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data/email_embeddings.json", cfg.Store)
}

func TestLoad_OverridesMergeWithDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := writeConfig(t, `
store: /srv/templates.json
ai:
  generation_host: https://api.groq.com/openai/v1
  generation_model: llama-3.3-70b-versatile
retrieval:
  embed_timeout: 5s
outreach:
  pool_size: 2
  modes:
    - focus: Pricing
      tone: blunt
      style: Short and direct.
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/templates.json", cfg.Store)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AI.GenerationHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.EmbeddingHost, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Retrieval.EmbedTimeout.Std())
	assert.True(t, cfg.Retrieval.CacheEmbeddings)
	assert.Equal(t, []core.VariantMode{{Focus: "Pricing", Tone: "blunt", Style: "Short and direct."}}, cfg.VariantModes())

	aiCfg := cfg.AIOptions()
	assert.Equal(t, "llama-3.3-70b-versatile", aiCfg.GenerationModel)
	assert.NoError(t, aiCfg.Validate())
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv(APIKeyEnv, "secret")
	path := writeConfig(t, "ai:\n  api_key: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, "secret", cfg.AIOptions().APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "ai: [unclosed"},
		{"bad duration", "retrieval:\n  embed_timeout: soon\n"},
		{"negative duration", "build:\n  retry_delay: -1s\n"},
		{"temperature out of range", "ai:\n  temperature: 3\n"},
		{"unknown news source", "normalize:\n  news_priority: [rss]\n"},
		{"zero batch size", "build:\n  batch_size: 0\n"},
		{"mode without tone", "outreach:\n  modes:\n    - focus: Pricing\n"},
		{"empty store path", "store: \"\"\n"},
		{"bad host", "ai:\n  embedding_host: not a url\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNormalizerOptions(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Normalize.NewsPriority = []string{"text", "items"}
	cfg.Normalize.Truncate = 10
	cfg.Normalize.IncludeFounders = true

	opts, err := cfg.NormalizerOptions()
	require.NoError(t, err)

	policy := normalize.New(opts...).Policy()
	assert.Equal(t, []normalize.NewsSource{normalize.NewsText, normalize.NewsItems}, policy.NewsPriority)
	assert.Equal(t, 10, policy.Truncate)
	assert.True(t, policy.IncludeFounders)

	cfg.Normalize.NewsPriority = []string{"bogus"}
	_, err = cfg.NormalizerOptions()
	assert.Error(t, err)
}

func TestBuilderConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	bc := cfg.BuilderConfig()
	assert.Equal(t, 32, bc.BatchSize)
	assert.Equal(t, 3, bc.MaxRetries)
	assert.Equal(t, time.Second, bc.RetryDelay)
	assert.False(t, bc.Normalize)
}

func TestDefaultYAML(t *testing.T) {
	assert.Contains(t, string(DefaultYAML()), "embedding_model: all-minilm")
}
