package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

type GraphConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type LLMConfig struct {
	Provider           string `toml:"provider"`
	Model              string `toml:"model"`
	EmbeddingModel     string `toml:"embedding_model"`
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	MaxConcurrent      int    `toml:"max_concurrent"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
}

type RetrievalConfig struct {
	MaxIterations    int     `toml:"max_iterations"`
	QueryTimeoutSecs int     `toml:"query_timeout_secs"`
	FuzzyThreshold   float64 `toml:"fuzzy_threshold"`
	CandidateLimit   int     `toml:"candidate_limit"`
	MinRelevance     float64 `toml:"min_relevance"`
}

type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Backend    string `toml:"backend"`
	RedisURL   string `toml:"redis_url"`
	TTLSecs    int    `toml:"ttl_secs"`
	MaxEntries int    `toml:"max_entries"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Graph     GraphConfig     `toml:"graph"`
	LLM       LLMConfig       `toml:"llm"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Cache     CacheConfig     `toml:"cache"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Password: "password",
			Database: "neo4j",
		},
		LLM: LLMConfig{
			Provider:           "openai",
			Model:              "gpt-4o-mini",
			MaxConcurrent:      3,
			RequestTimeoutSecs: 30,
		},
		Retrieval: RetrievalConfig{
			MaxIterations:    3,
			QueryTimeoutSecs: 120,
			FuzzyThreshold:   0.7,
			CandidateLimit:   5,
			MinRelevance:     0.1,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    "memory",
			TTLSecs:    3600,
			MaxEntries: 1024,
		},
	}
}

// Load reads TOML config from path over the defaults, then applies
// environment overrides. A missing file is not an error; env-only
// deployments are common.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PYRITE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		cfg.Graph.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		cfg.Graph.Database = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
		cfg.Cache.Backend = "redis"
	}
}

func (c *LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c *RetrievalConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSecs) * time.Second
}

func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}
