package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docqa/pkg/aiinterface"

	"go.uber.org/zap"
)

// Pipeline 检索-生成两阶段流水线
// 每个请求同步顺序执行: 先检索再生成, 两阶段各自产出不可变结果,
// 不共享可变状态; 多请求并发时各自持有独立的阶段结果
type Pipeline struct {
	index  VectorIndex
	llm    aiinterface.GenerationClient
	topK   int
	logger *zap.Logger
}

// NewPipeline 创建问答流水线
func NewPipeline(index VectorIndex, llm aiinterface.GenerationClient, topK int, logger *zap.Logger) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		index:  index,
		llm:    llm,
		topK:   topK,
		logger: logger,
	}
}

// Answer 执行一次完整的问答
// 检索结果为空不是错误, 此时以空的检索上下文调用生成,
// 是否回答"未找到相关信息"由生成模型自行决定
func (p *Pipeline) Answer(ctx context.Context, req *QueryRequest) (*Answer, error) {
	docs, err := p.retrieve(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	answer, err := p.generate(ctx, req, docs)
	if err != nil {
		return nil, err
	}

	return &Answer{Answer: answer, Sources: docs}, nil
}

// retrieve 检索阶段: 取最相似的 topK 个分块(只读, 不修改索引)
func (p *Pipeline) retrieve(ctx context.Context, question string) ([]*RetrievedChunk, error) {
	start := time.Now()

	docs, err := p.index.Query(ctx, question, p.topK)
	if err != nil {
		return nil, fmt.Errorf("检索失败: %w", err)
	}

	p.logger.Debug("检索完成",
		zap.Int("hits", len(docs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return docs, nil
}

// generate 生成阶段: 构建提示词并调用一次生成客户端
func (p *Pipeline) generate(ctx context.Context, req *QueryRequest, docs []*RetrievedChunk) (string, error) {
	prompt := buildPrompt(req.Question, req.Context, docs)

	start := time.Now()
	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("生成失败: %w", err)
	}

	p.logger.Debug("生成完成",
		zap.Int("prompt_chars", len(prompt)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer, nil
}

// buildPrompt 构建单次生成的提示词
// 调用方上下文(如有)作为独立段落排在检索上下文之前;
// 检索到的分块按相似度顺序以空行分隔拼接
func buildPrompt(question string, userContext any, docs []*RetrievedChunk) string {
	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}
	ragContext := strings.Join(contents, "\n\n")

	var sb strings.Builder
	sb.WriteString("Answer using the context below.\n")

	if rendered := renderContext(userContext); rendered != "" {
		sb.WriteString("\nUser-provided context:\n")
		sb.WriteString(rendered)
		sb.WriteString("\n")
	}

	sb.WriteString("\nRetrieved context:\n")
	sb.WriteString(ragContext)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\n")

	return sb.String()
}

// renderContext 将调用方上下文渲染为可读文本
// 字符串原样使用; 结构化值序列化为缩进 JSON(键序确定, 提示词可复现)
func renderContext(userContext any) string {
	switch v := userContext.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
