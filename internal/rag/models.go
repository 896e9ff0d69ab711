package rag

import "errors"

// Document 源文档的一个逻辑单元(PDF 的一页, 或整个纯文本文件)
// 由摄取阶段的文档加载器产出, 创建后不可变
type Document struct {
	Content  string            // 文本内容
	Metadata map[string]string // 元数据(来源文件名, 页码等)
}

// Chunk 文档分块, 向量索引存储与检索的原子单元
// 继承父文档的元数据并追加自身位置信息
type Chunk struct {
	Content    string            // 分块内容
	ChunkIndex int               // 分块在文档内的序号(从0开始)
	Metadata   map[string]string // 元数据
}

// RetrievedChunk 相似度检索返回的分块
type RetrievedChunk struct {
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}

// QueryRequest 一次问答请求
type QueryRequest struct {
	Question string // 问题
	Context  any    // 调用方附加上下文(字符串或任意可序列化结构, 可为空)
}

// Answer 一次问答的最终结果, 不持久化
type Answer struct {
	Answer  string            `json:"answer"`
	Sources []*RetrievedChunk `json:"sources"`
}

// ErrEmbedding 向量化调用失败
var ErrEmbedding = errors.New("向量化失败")

// ErrStorage 底层向量存储失败
var ErrStorage = errors.New("向量存储失败")
