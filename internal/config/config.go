package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Index     IndexConfig     `mapstructure:"index"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// ProvidersConfig 提供商选择配置
// 生成与向量化两个角色完全独立, 任意组合均有效
type ProvidersConfig struct {
	LLM       string       `mapstructure:"llm"`       // 生成角色提供商(ollama, openai, gemini)
	Embedding string       `mapstructure:"embedding"` // 向量化角色提供商(ollama, openai, gemini)
	Ollama    OllamaConfig `mapstructure:"ollama"`
	OpenAI    OpenAIConfig `mapstructure:"openai"`
	Gemini    GeminiConfig `mapstructure:"gemini"`
}

// OllamaConfig Ollama 本地服务配置
type OllamaConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	LLMModel       string `mapstructure:"llm_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// OpenAIConfig OpenAI 配置
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"` // 为空时使用官方端点
	LLMModel       string `mapstructure:"llm_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// GeminiConfig Google Gemini 配置
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	LLMModel       string `mapstructure:"llm_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// IngestConfig 文档摄取配置
type IngestConfig struct {
	DataPath     string `mapstructure:"data_path"`     // 源文档目录
	ChunkSize    int    `mapstructure:"chunk_size"`    // 分块大小(字符数)
	ChunkOverlap int    `mapstructure:"chunk_overlap"` // 相邻分块重叠(字符数)
	BatchSize    int    `mapstructure:"batch_size"`    // 每次向量化调用的分块数
	LogFile      string `mapstructure:"log_file"`      // 运行日志文件
}

// IndexConfig 持久化向量索引配置
type IndexConfig struct {
	Path string `mapstructure:"path"` // 索引存储目录
}

var globalConfig *Config

// Load 加载配置
// env: 环境名称(dev, prod, test)
// configPath: 配置文件路径(可选)
// 配置文件缺失不是错误, 此时完全依赖默认值与环境变量(与 .env 配合)
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	if configPath == "" {
		v.SetConfigName(env) // dev.yaml, prod.yaml
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	// 默认值
	setDefaults(v)

	// 读取环境变量(优先级高于配置文件)
	v.SetEnvPrefix("APP") // 环境变量前缀: APP_
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 支持嵌套配置: APP_SERVER_PORT

	// 兼容历史环境变量名(无 APP_ 前缀)
	bindLegacyEnv(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// setDefaults 各配置项默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("providers.llm", "ollama")
	v.SetDefault("providers.embedding", "ollama")
	v.SetDefault("providers.ollama.base_url", "http://localhost:11434")
	v.SetDefault("providers.ollama.llm_model", "tinyllama")
	v.SetDefault("providers.ollama.embedding_model", "nomic-embed-text")
	v.SetDefault("providers.openai.llm_model", "gpt-4o-mini")
	v.SetDefault("providers.openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("providers.gemini.llm_model", "gemini-2.5-flash")
	v.SetDefault("providers.gemini.embedding_model", "gemini-embedding-001")

	v.SetDefault("ingest.data_path", "./data")
	v.SetDefault("ingest.chunk_size", 1000)
	v.SetDefault("ingest.chunk_overlap", 200)
	v.SetDefault("ingest.batch_size", 25)
	v.SetDefault("ingest.log_file", "ingest.log")

	v.SetDefault("index.path", "./vector_db")
}

// bindLegacyEnv 绑定无前缀的历史环境变量
// 与原有部署脚本保持兼容: LLM_PROVIDER / EMBEDDING_PROVIDER 等
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("providers.llm", "APP_PROVIDERS_LLM", "LLM_PROVIDER")
	_ = v.BindEnv("providers.embedding", "APP_PROVIDERS_EMBEDDING", "EMBEDDING_PROVIDER")
	_ = v.BindEnv("providers.ollama.base_url", "APP_PROVIDERS_OLLAMA_BASE_URL", "OLLAMA_BASE_URL")
	_ = v.BindEnv("providers.ollama.llm_model", "APP_PROVIDERS_OLLAMA_LLM_MODEL", "OLLAMA_LLM_MODEL")
	_ = v.BindEnv("providers.ollama.embedding_model", "APP_PROVIDERS_OLLAMA_EMBEDDING_MODEL", "OLLAMA_EMBEDDING_MODEL")
	_ = v.BindEnv("providers.openai.api_key", "APP_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.openai.base_url", "APP_PROVIDERS_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("providers.openai.llm_model", "APP_PROVIDERS_OPENAI_LLM_MODEL", "OPENAI_LLM_MODEL")
	_ = v.BindEnv("providers.openai.embedding_model", "APP_PROVIDERS_OPENAI_EMBEDDING_MODEL", "OPENAI_EMBEDDING_MODEL")
	_ = v.BindEnv("providers.gemini.api_key", "APP_PROVIDERS_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("providers.gemini.llm_model", "APP_PROVIDERS_GEMINI_LLM_MODEL", "GEMINI_LLM_MODEL")
	_ = v.BindEnv("providers.gemini.embedding_model", "APP_PROVIDERS_GEMINI_EMBEDDING_MODEL", "GEMINI_EMBEDDING_MODEL")
	_ = v.BindEnv("ingest.data_path", "APP_INGEST_DATA_PATH", "DATA_PATH")
	_ = v.BindEnv("index.path", "APP_INDEX_PATH", "INDEX_PATH")
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}
