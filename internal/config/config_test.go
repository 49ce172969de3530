package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `
openai:
  base_url: http://localhost:11434/v1
  api_key: test-key
  embedding_model: nomic-embed-text
  inference_model: llama3
vector:
  backend: postgres
  namespace: csf
  dsn: postgres://localhost:5432/rag
rag:
  chunk_size: 800
  top_k: 3
server:
  addr: ":8080"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "test-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "postgres", cfg.Vector.Backend)
	assert.Equal(t, "csf", cfg.Vector.Namespace)
	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "openai:\n  api_key: test-key\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.InferenceModel)
	assert.Equal(t, "chromem", cfg.Vector.Backend)
	assert.Equal(t, "ns1", cfg.Vector.Namespace)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, ":5001", cfg.Server.Addr)
	assert.Equal(t, 60, cfg.Server.RequestTimeoutSecs)
}

func TestLoadConfig_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	path := writeConfig(t, "openai: {}\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "openai: [broken")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
