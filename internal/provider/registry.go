package provider

import (
	"errors"
	"fmt"
	"strings"

	"docqa/internal/config"
)

// Provider 提供商标识, 封闭枚举
// 新增提供商必须同时扩展 Resolve 与模型工厂的分发分支
type Provider string

const (
	Ollama Provider = "ollama"
	OpenAI Provider = "openai"
	Gemini Provider = "gemini"
)

// Valid 判断提供商是否属于枚举集合
func (p Provider) Valid() bool {
	switch p {
	case Ollama, OpenAI, Gemini:
		return true
	}
	return false
}

// Role 提供商承担的角色
type Role string

const (
	RoleGeneration Role = "generation" // 回答问题的生成服务
	RoleEmbedding  Role = "embedding"  // 文本向量化服务
)

// ErrUnknownProvider 未知提供商选择, 属于致命配置错误, 必须阻止进程启动
var ErrUnknownProvider = errors.New("未知的提供商")

// Resolved 单个角色解析后的提供商配置
// 进程启动时解析一次, 之后不可变
type Resolved struct {
	Role     Role     // 角色(generation / embedding)
	Provider Provider // 提供商
	Model    string   // 模型标识
	APIKey   string   // 凭证(云端提供商缺失时不在此报错, 首次调用时暴露认证失败)
	BaseURL  string   // 端点(为空时客户端使用各提供商默认值)
}

// Namespace 由向量化模型标识派生的集合命名空间
// 不同模型的向量绝不混入同一集合, 切换模型自动指向各自的集合
func (r Resolved) Namespace() string {
	replacer := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return replacer.Replace(r.Model)
}

// Registry 两个角色的解析结果
type Registry struct {
	Generation Resolved
	Embedding  Resolved
}

// Resolve 校验并解析两个角色的提供商选择
// 生成与向量化完全正交, 3x3 任意组合均可用
func Resolve(cfg *config.Config) (*Registry, error) {
	gen, err := resolveRole(cfg, RoleGeneration, Provider(cfg.Providers.LLM))
	if err != nil {
		return nil, err
	}

	emb, err := resolveRole(cfg, RoleEmbedding, Provider(cfg.Providers.Embedding))
	if err != nil {
		return nil, err
	}

	return &Registry{Generation: gen, Embedding: emb}, nil
}

// resolveRole 解析单个角色的提供商配置
func resolveRole(cfg *config.Config, role Role, p Provider) (Resolved, error) {
	if !p.Valid() {
		return Resolved{}, fmt.Errorf("%w: 角色 %s 选择了 %q, 可选值: [ollama openai gemini]", ErrUnknownProvider, role, string(p))
	}

	resolved := Resolved{Role: role, Provider: p}

	switch p {
	case Ollama:
		resolved.BaseURL = cfg.Providers.Ollama.BaseURL
		if role == RoleGeneration {
			resolved.Model = cfg.Providers.Ollama.LLMModel
		} else {
			resolved.Model = cfg.Providers.Ollama.EmbeddingModel
		}
	case OpenAI:
		resolved.APIKey = cfg.Providers.OpenAI.APIKey
		resolved.BaseURL = cfg.Providers.OpenAI.BaseURL
		if role == RoleGeneration {
			resolved.Model = cfg.Providers.OpenAI.LLMModel
		} else {
			resolved.Model = cfg.Providers.OpenAI.EmbeddingModel
		}
	case Gemini:
		resolved.APIKey = cfg.Providers.Gemini.APIKey
		if role == RoleGeneration {
			resolved.Model = cfg.Providers.Gemini.LLMModel
		} else {
			resolved.Model = cfg.Providers.Gemini.EmbeddingModel
		}
	}

	return resolved, nil
}
