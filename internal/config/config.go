package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds connection details for the OpenAI-compatible model
// endpoint used for embeddings, classification, and generation.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	EmbeddingModel string `yaml:"embedding_model"`
	InferenceModel string `yaml:"inference_model"`
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	Backend   string `yaml:"backend"` // "chromem" or "postgres"
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
	DSN       string `yaml:"dsn"`
	Password  string `yaml:"password"`
	Debug     bool   `yaml:"debug"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	TopK      int `yaml:"top_k"`
}

// ServerConfig configures the HTTP layer.
type ServerConfig struct {
	Addr               string `yaml:"addr"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

type Config struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Vector VectorConfig `yaml:"vector"`
	RAG    RAGConfig    `yaml:"rag"`
	Server ServerConfig `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.InferenceModel == "" {
		cfg.OpenAI.InferenceModel = "gpt-3.5-turbo"
	}
	if cfg.Vector.Backend == "" {
		cfg.Vector.Backend = "chromem"
	}
	if cfg.Vector.Path == "" {
		cfg.Vector.Path = "./chromemdb"
	}
	if cfg.Vector.Namespace == "" {
		cfg.Vector.Namespace = "ns1"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5001"
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 60
	}
}
