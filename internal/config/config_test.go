package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load("不存在的环境", "")
	require.NoError(t, err, "配置文件缺失不应是错误")

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "ollama", cfg.Providers.LLM)
	require.Equal(t, "ollama", cfg.Providers.Embedding)
	require.Equal(t, "http://localhost:11434", cfg.Providers.Ollama.BaseURL)
	require.Equal(t, "nomic-embed-text", cfg.Providers.Ollama.EmbeddingModel)
	require.Equal(t, 1000, cfg.Ingest.ChunkSize)
	require.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	require.Equal(t, 25, cfg.Ingest.BatchSize)
	require.Equal(t, "./vector_db", cfg.Index.Path)
}

func TestLoad_LegacyEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("EMBEDDING_PROVIDER", "gemini")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("GEMINI_API_KEY", "g-legacy")
	t.Setenv("DATA_PATH", "/tmp/docs")

	cfg, err := Load("不存在的环境", "")
	require.NoError(t, err)

	require.Equal(t, "openai", cfg.Providers.LLM)
	require.Equal(t, "gemini", cfg.Providers.Embedding)
	require.Equal(t, "sk-legacy", cfg.Providers.OpenAI.APIKey)
	require.Equal(t, "g-legacy", cfg.Providers.Gemini.APIKey)
	require.Equal(t, "/tmp/docs", cfg.Ingest.DataPath)
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9000")
	t.Setenv("APP_PROVIDERS_LLM", "gemini")

	cfg, err := Load("不存在的环境", "")
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "gemini", cfg.Providers.LLM)
}

func TestLoad_ConfigFileValues(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 8080
providers:
  llm: openai
ingest:
  chunk_size: 500
`
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load("", path)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "openai", cfg.Providers.LLM)
	require.Equal(t, 500, cfg.Ingest.ChunkSize)
	// 未覆盖的键保留默认值
	require.Equal(t, "ollama", cfg.Providers.Embedding)
	require.Equal(t, 200, cfg.Ingest.ChunkOverlap)
}
