// Package config loads coldmail's YAML configuration file.
//
// Values missing from the user's file keep the embedded defaults in
// default_config.yaml. The API key may be supplied through the
// COLDMAIL_API_KEY environment variable instead of the file.
package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/coldmail/ai"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/normalize"
	"github.com/poiesic/coldmail/reembed"
)

// APIKeyEnv names the environment variable holding the API key.
const APIKeyEnv = "COLDMAIL_API_KEY"

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type AIConfig struct {
	EmbeddingHost   string  `yaml:"embedding_host" validate:"required,url"`
	GenerationHost  string  `yaml:"generation_host" validate:"required,url"`
	EmbeddingModel  string  `yaml:"embedding_model" validate:"required"`
	GenerationModel string  `yaml:"generation_model" validate:"required"`
	APIKey          string  `yaml:"api_key"`
	Temperature     float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	TopP            float64 `yaml:"top_p" validate:"gte=0,lte=1"`
}

type RetrievalConfig struct {
	EmbedTimeout    Duration `yaml:"embed_timeout"`
	CacheEmbeddings bool     `yaml:"cache_embeddings"`
}

type NormalizeConfig struct {
	NewsPriority    []string `yaml:"news_priority" validate:"dive,oneof=items summary text"`
	Truncate        int      `yaml:"truncate" validate:"gte=0"`
	IncludeFounders bool     `yaml:"include_founders"`
}

type BuildConfig struct {
	BatchSize  int      `yaml:"batch_size" validate:"gte=1"`
	MaxRetries int      `yaml:"max_retries" validate:"gte=1"`
	RetryDelay Duration `yaml:"retry_delay"`
	Normalize  bool     `yaml:"normalize"`
}

type OutreachConfig struct {
	PoolSize int                `yaml:"pool_size" validate:"gte=1"`
	Modes    []core.VariantMode `yaml:"modes" validate:"dive"`
}

type Config struct {
	Database  string          `yaml:"database"`
	Store     string          `yaml:"store" validate:"required"`
	AI        AIConfig        `yaml:"ai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Build     BuildConfig     `yaml:"build"`
	Outreach  OutreachConfig  `yaml:"outreach"`
}

// Duration is a time.Duration written as a string such as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if parsed < 0 {
		return fmt.Errorf("line %d: duration must not be negative", node.Line)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return data
}

// Load reads the configuration at path over the embedded defaults. An empty
// path or a missing file yields the defaults. The environment override is
// applied last and the result is validated.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.AI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AIOptions converts the ai section into provider configuration.
func (c *Config) AIOptions() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithTemperature(c.AI.Temperature),
		ai.WithTopP(c.AI.TopP),
	)
}

// NormalizerOptions converts the normalize section into normalizer options.
func (c *Config) NormalizerOptions() ([]normalize.Option, error) {
	opts := []normalize.Option{
		normalize.WithTruncate(c.Normalize.Truncate),
		normalize.WithFounders(c.Normalize.IncludeFounders),
	}
	if len(c.Normalize.NewsPriority) > 0 {
		sources := make([]normalize.NewsSource, 0, len(c.Normalize.NewsPriority))
		for _, s := range c.Normalize.NewsPriority {
			src, err := normalize.ParseNewsSource(s)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		opts = append(opts, normalize.WithNewsPriority(sources...))
	}
	return opts, nil
}

// BuilderConfig converts the build section into store builder configuration.
func (c *Config) BuilderConfig() *reembed.Config {
	return &reembed.Config{
		BatchSize:      c.Build.BatchSize,
		ReportInterval: c.Build.BatchSize,
		MaxRetries:     c.Build.MaxRetries,
		RetryDelay:     c.Build.RetryDelay.Std(),
		Normalize:      c.Build.Normalize,
	}
}

// VariantModes returns the configured modes, or the built-in ones when none
// are configured.
func (c *Config) VariantModes() []core.VariantMode {
	if len(c.Outreach.Modes) == 0 {
		return core.DefaultVariantModes
	}
	return c.Outreach.Modes
}
