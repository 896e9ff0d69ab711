package query

import "docqa/internal/rag"

// QueryRequest 问答请求
// Context 为可选的用户补充上下文, 接受任意 JSON 值(字符串或结构化对象)
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
	Context  any    `json:"context,omitempty"`
}

// QueryResponse 问答响应
type QueryResponse struct {
	Answer  string                `json:"answer"`
	Sources []*rag.RetrievedChunk `json:"sources"`
}
