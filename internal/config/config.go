package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	ChatLLM  LLMConfig      `yaml:"chat_llm"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	RAG      RAGConfig      `yaml:"rag"`
	Search   SearchConfig   `yaml:"search"`
}

type ScraperConfig struct {
	Concurrency      int `yaml:"concurrency"`
	FetchTimeoutSec  int `yaml:"fetch_timeout_sec"`
	RenderTimeoutSec int `yaml:"render_timeout_sec"`
	MaxContent       int `yaml:"max_content"`
	RetryAttempts    int `yaml:"retry_attempts"`
	RetryBaseMs      int `yaml:"retry_base_ms"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // ollama or openai
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // postgres or chromem
	Path    string `yaml:"path"`    // chromem db directory
}

type RAGConfig struct {
	EmbeddingDim int `yaml:"embedding_dim"`
	TopN         int `yaml:"top_n"`
	// Pointer so an explicit 0 (keep everything above zero) is
	// distinguishable from an unset field.
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
	RecencyWindow       int      `yaml:"recency_window"` // 0 means all records
}

// Threshold returns the similarity cutoff, defaulted when unset.
func (c *RAGConfig) Threshold() float64 {
	if c.SimilarityThreshold == nil {
		return defaultThreshold
	}
	return *c.SimilarityThreshold
}

type SearchConfig struct {
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
	Attempts   int    `yaml:"attempts"`
}

const (
	defaultConcurrency      = 10
	defaultFetchTimeoutSec  = 3
	defaultRenderTimeoutSec = 3
	defaultMaxContent       = 5000
	defaultRetryAttempts    = 3
	defaultRetryBaseMs      = 500
	defaultEmbeddingDim     = 768
	defaultTopN             = 5
	defaultThreshold        = 0.2
	defaultMaxResults       = 10
	defaultSearchAttempts   = 3
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in zero values so a partial config file is usable.
func (c *Config) ApplyDefaults() {
	if c.Scraper.Concurrency <= 0 {
		c.Scraper.Concurrency = defaultConcurrency
	}
	if c.Scraper.FetchTimeoutSec <= 0 {
		c.Scraper.FetchTimeoutSec = defaultFetchTimeoutSec
	}
	if c.Scraper.RenderTimeoutSec <= 0 {
		c.Scraper.RenderTimeoutSec = defaultRenderTimeoutSec
	}
	if c.Scraper.MaxContent <= 0 {
		c.Scraper.MaxContent = defaultMaxContent
	}
	if c.Scraper.RetryAttempts <= 0 {
		c.Scraper.RetryAttempts = defaultRetryAttempts
	}
	if c.Scraper.RetryBaseMs <= 0 {
		c.Scraper.RetryBaseMs = defaultRetryBaseMs
	}
	if c.RAG.EmbeddingDim <= 0 {
		c.RAG.EmbeddingDim = defaultEmbeddingDim
	}
	if c.RAG.TopN <= 0 {
		c.RAG.TopN = defaultTopN
	}
	if c.RAG.SimilarityThreshold == nil {
		threshold := float64(defaultThreshold)
		c.RAG.SimilarityThreshold = &threshold
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = defaultMaxResults
	}
	if c.Search.Attempts <= 0 {
		c.Search.Attempts = defaultSearchAttempts
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "postgres"
	}
}

func (c *ScraperConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func (c *ScraperConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSec) * time.Second
}

func (c *ScraperConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseMs) * time.Millisecond
}
