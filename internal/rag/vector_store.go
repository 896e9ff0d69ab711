package rag

import "context"

// DefaultTopK 相似度检索默认返回的分块数
const DefaultTopK = 4

// VectorIndex 抽象按命名空间持久化的向量索引
// 独占磁盘上的集合, 摄取与查询路径只通过该接口访问存储
// 必须支持单写入方与多并发读取方
type VectorIndex interface {
	// Add 将分块向量化后追加写入集合
	// 纯追加语义: 重复写入产生重复记录, 不做去重
	Add(ctx context.Context, chunks []*Chunk) error

	// Query 将文本向量化并检索最相似的 topK 个分块, 按相似度降序
	// 集合内条目不足时返回更少结果; 空集合返回空序列而非错误
	Query(ctx context.Context, text string, topK int) ([]*RetrievedChunk, error)

	// Count 集合内分块总数
	Count() int

	// Close 释放索引句柄
	Close() error
}
