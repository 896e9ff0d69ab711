package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"docqa/pkg/aiinterface"

	openai "github.com/sashabaranov/go-openai"
)

// Client OpenAI 客户端适配器
// 同一适配器可承担生成或向量化角色, 由各自的 ClientConfig 决定模型
type Client struct {
	client     *openai.Client
	modelID    string
	maxRetries int
}

// NewClient 创建 OpenAI 客户端
// API Key 为空不在此报错: 凭证缺失推迟到首次调用, 以认证错误形式暴露
func NewClient(config *aiinterface.ClientConfig) (*Client, error) {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientConfig),
		modelID:    config.Model,
		maxRetries: maxRetries,
	}, nil
}

// Generate 单次文本生成
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	// 调用 API(带重试)
	var resp openai.ChatCompletionResponse
	var err error
	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		if !isRetryable(err) {
			break
		}

		// 指数退避
		if i < c.maxRetries {
			backoff := time.Duration(1<<uint(i)) * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	if err != nil {
		return "", wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &aiinterface.ClientError{
			Type:    aiinterface.ErrorTypeServerError,
			Message: "OpenAI API 返回空响应",
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed 批量文本向量化
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.modelID),
	}

	var resp openai.EmbeddingResponse
	var err error
	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}

		if !isRetryable(err) {
			break
		}

		if i < c.maxRetries {
			backoff := time.Duration(1<<uint(i)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	if err != nil {
		return nil, wrapError(err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}

// Model 返回使用的模型标识
func (c *Client) Model() string {
	return c.modelID
}

// Close 关闭客户端
func (c *Client) Close() error {
	// go-openai 客户端无需显式关闭
	return nil
}

// isRetryable 判断错误是否可重试
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	// 非 API 错误视为网络问题, 允许重试
	return true
}

// wrapError 包装为统一的客户端错误
func wrapError(err error) *aiinterface.ClientError {
	errType := aiinterface.ErrorTypeUnknown

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			errType = aiinterface.ErrorTypeAuth
		case apiErr.HTTPStatusCode == 429:
			errType = aiinterface.ErrorTypeRateLimit
		case apiErr.HTTPStatusCode == 400:
			errType = aiinterface.ErrorTypeInvalidParams
		case apiErr.HTTPStatusCode >= 500:
			errType = aiinterface.ErrorTypeServerError
		}
	} else if strings.Contains(err.Error(), "connection") || strings.Contains(err.Error(), "timeout") {
		errType = aiinterface.ErrorTypeNetwork
	}

	return &aiinterface.ClientError{
		Type:    errType,
		Message: "OpenAI API 错误",
		Err:     err,
	}
}
