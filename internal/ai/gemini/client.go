package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docqa/pkg/aiinterface"
)

// Client Google Gemini 客户端
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
}

// NewClient 创建 Gemini 客户端
// API Key 缺失不阻止构造, 首次调用时以认证错误暴露
func NewClient(config *aiinterface.ClientConfig) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		model:      config.Model,
		maxRetries: maxRetries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// generateRequest Gemini generateContent 请求
type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// generateResponse Gemini generateContent 响应
type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate 单次文本生成(非流式)
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	geminiReq := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	respBody, err := c.post(ctx, url, geminiReq)
	if err != nil {
		return "", err
	}

	var geminiResp generateResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", &aiinterface.ClientError{
			Type:    aiinterface.ErrorTypeServerError,
			Message: "Gemini API 返回空响应",
		}
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// Embed 批量文本向量化
// Gemini embedContent 接口一次处理一条文本, 逐条调用并保持输入顺序
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, c.model, c.apiKey)

	embeddings := make([][]float32, 0, len(texts))

	for _, text := range texts {
		embedReq := map[string]any{
			"content": geminiContent{Parts: []geminiPart{{Text: text}}},
		}

		respBody, err := c.post(ctx, url, embedReq)
		if err != nil {
			return nil, err
		}

		var embedResp struct {
			Embedding struct {
				Values []float32 `json:"values"`
			} `json:"embedding"`
		}

		if err := json.Unmarshal(respBody, &embedResp); err != nil {
			return nil, fmt.Errorf("解析响应失败: %w", err)
		}

		embeddings = append(embeddings, embedResp.Embedding.Values)
	}

	return embeddings, nil
}

// post 发送请求并返回响应体, 5xx 错误带指数退避重试
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = &aiinterface.ClientError{
				Type:    aiinterface.ErrorTypeNetwork,
				Message: "Gemini API 调用失败",
				Err:     err,
			}
			if sleepErr := sleepBackoff(ctx, i); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("读取响应失败: %w", readErr)
		}

		if resp.StatusCode == http.StatusOK {
			return respBody, nil
		}

		lastErr = httpError(resp.StatusCode, respBody)

		// 只对 5xx 错误重试
		if resp.StatusCode < 500 {
			return nil, lastErr
		}
		if sleepErr := sleepBackoff(ctx, i); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, lastErr
}

// requireKey 凭证存在性检查, 推迟到调用时执行
func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return &aiinterface.ClientError{
			Type:    aiinterface.ErrorTypeAuth,
			Message: "Gemini API Key 未配置(GEMINI_API_KEY)",
		}
	}
	return nil
}

// httpError 将 HTTP 错误状态映射为客户端错误
func httpError(status int, body []byte) error {
	errType := aiinterface.ErrorTypeUnknown
	switch {
	case status == 401 || status == 403:
		errType = aiinterface.ErrorTypeAuth
	case status == 429:
		errType = aiinterface.ErrorTypeRateLimit
	case status == 400:
		errType = aiinterface.ErrorTypeInvalidParams
	case status >= 500:
		errType = aiinterface.ErrorTypeServerError
	}

	return &aiinterface.ClientError{
		Type:    errType,
		Message: fmt.Sprintf("Gemini API HTTP %d: %s", status, string(body)),
	}
}

// sleepBackoff 指数退避, 可被 ctx 取消
func sleepBackoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt+1) * time.Second):
		return nil
	}
}

// Model 返回使用的模型标识
func (c *Client) Model() string {
	return c.model
}

// Close 关闭客户端
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
