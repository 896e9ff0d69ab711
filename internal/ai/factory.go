package ai

import (
	"errors"
	"fmt"
	"sync"

	"docqa/internal/ai/gemini"
	"docqa/internal/ai/ollama"
	"docqa/internal/ai/openai"
	"docqa/internal/provider"
	"docqa/pkg/aiinterface"
)

// ErrUnsupportedProvider 选中的提供商没有对应的构造分支
// 枚举集合封闭, 出现该错误意味着注册表与工厂的分发分支不同步
var ErrUnsupportedProvider = errors.New("不支持的提供商")

// modelClient 同时具备生成与向量化能力的具体客户端
// 各提供商适配器均实现两种能力, 按角色以不同接口暴露
type modelClient interface {
	aiinterface.GenerationClient
	aiinterface.EmbeddingClient
}

// Factory 模型客户端工厂
// 持有启动时解析的注册表, 按角色惰性构造客户端并缓存复用
// 进程启动后注册表只读, 两个客户端可被并发请求安全共享
type Factory struct {
	registry *provider.Registry

	mu        sync.Mutex
	genClient modelClient
	embClient modelClient
}

// NewFactory 创建客户端工厂
func NewFactory(registry *provider.Registry) *Factory {
	return &Factory{registry: registry}
}

// GenerationClient 获取生成客户端(构造一次, 之后复用)
func (f *Factory) GenerationClient() (GenerationClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.genClient == nil {
		client, err := newClient(f.registry.Generation)
		if err != nil {
			return nil, err
		}
		f.genClient = client
	}
	return f.genClient, nil
}

// EmbeddingClient 获取向量化客户端(构造一次, 之后复用)
func (f *Factory) EmbeddingClient() (EmbeddingClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.embClient == nil {
		client, err := newClient(f.registry.Embedding)
		if err != nil {
			return nil, err
		}
		f.embClient = client
	}
	return f.embClient, nil
}

// newClient 按解析结果分发到具体客户端构造
func newClient(r provider.Resolved) (modelClient, error) {
	config := &aiinterface.ClientConfig{
		Provider: string(r.Provider),
		APIKey:   r.APIKey,
		BaseURL:  r.BaseURL,
		Model:    r.Model,
	}

	switch r.Provider {
	case provider.Ollama:
		return ollama.NewClient(config)
	case provider.OpenAI:
		return openai.NewClient(config)
	case provider.Gemini:
		return gemini.NewClient(config)
	default:
		return nil, fmt.Errorf("%w: %q (角色 %s)", ErrUnsupportedProvider, string(r.Provider), r.Role)
	}
}

// Close 关闭已构造的客户端
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.genClient != nil {
		_ = f.genClient.Close()
		f.genClient = nil
	}
	if f.embClient != nil {
		_ = f.embClient.Close()
		f.embClient = nil
	}
	return nil
}
