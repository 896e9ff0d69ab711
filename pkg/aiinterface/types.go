package aiinterface

import "context"

// GenerationClient 文本生成客户端统一接口
// 由各提供商适配器实现(openai, ollama, gemini)
type GenerationClient interface {
	// Generate 单次文本生成(非流式, 无多轮状态)
	Generate(ctx context.Context, prompt string) (string, error)

	// Model 返回使用的模型标识
	Model() string

	// Close 关闭客户端连接
	Close() error
}

// EmbeddingClient 文本向量化客户端统一接口
type EmbeddingClient interface {
	// Embed 将一批文本转换为向量, 返回顺序与输入一致
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model 返回使用的模型标识
	Model() string

	// Close 关闭客户端连接
	Close() error
}

// ClientConfig 客户端配置
type ClientConfig struct {
	Provider   string // 提供商(openai, ollama, gemini)
	APIKey     string // API Key(本地提供商可为空; 云端提供商缺失时首次调用报认证错误)
	BaseURL    string // 基础 URL(为空时使用各提供商默认值)
	Model      string // 模型标识
	MaxRetries int    // 最大重试次数
	Timeout    int    // 超时时间(秒)
}

// ErrorType 错误类型
type ErrorType string

const (
	ErrorTypeAuth          ErrorType = "auth"           // 认证错误
	ErrorTypeRateLimit     ErrorType = "rate_limit"     // 速率限制
	ErrorTypeInvalidParams ErrorType = "invalid_params" // 参数错误
	ErrorTypeServerError   ErrorType = "server_error"   // 服务器错误
	ErrorTypeNetwork       ErrorType = "network"        // 网络错误
	ErrorTypeUnknown       ErrorType = "unknown"        // 未知错误
)

// ClientError 客户端错误
type ClientError struct {
	Type    ErrorType // 错误类型
	Message string    // 错误消息
	Err     error     // 原始错误
}

// Error 实现error接口
func (e *ClientError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回原始错误
func (e *ClientError) Unwrap() error {
	return e.Err
}

// IsRetryable 判断错误是否可重试
func (e *ClientError) IsRetryable() bool {
	return e.Type == ErrorTypeRateLimit || e.Type == ErrorTypeNetwork || e.Type == ErrorTypeServerError
}
