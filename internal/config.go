package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendLocal  = "local"
	BackendOpenAI = "openai"
)

type CorpusConfig struct {
	Path           string `yaml:"path"`
	QueryColumn    string `yaml:"query_column,omitempty"`
	SolutionColumn string `yaml:"solution_column,omitempty"`
}

func (c CorpusConfig) Source() CorpusSource {
	return CorpusSource{
		Path:           c.Path,
		QueryColumn:    c.QueryColumn,
		SolutionColumn: c.SolutionColumn,
	}
}

type EmbeddingsConfig struct {
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	Dimension int    `yaml:"dimension"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

type Config struct {
	Corpus          CorpusConfig              `yaml:"corpus"`
	Embeddings      EmbeddingsConfig          `yaml:"embeddings"`
	Retrieval       RetrievalConfig           `yaml:"retrieval"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path: "corpus.csv",
		},
		Embeddings: EmbeddingsConfig{
			Backend:   BackendLocal,
			Dimension: DefaultLocalDimension,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Providers: make(map[string]ProviderConfig),
	}
}

func LoadConfig(ws Workspace) (*Config, error) {
	path := ws.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 3
	}

	return &cfg, nil
}

func SaveConfig(ws Workspace, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(ws.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ResolveProvider returns the provider to use for answer generation:
// the named one, or the configured default when name is empty.
func (c *Config) ResolveProvider(name string) (string, ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	if name == "" {
		return "", ProviderConfig{}, ErrNoProvider
	}

	pc, ok := c.Providers[name]
	if !ok {
		return "", ProviderConfig{}, fmt.Errorf("provider %q not found", name)
	}
	return name, pc, nil
}
