package rag

import (
	"strconv"
)

// Chunker 文档分块器
// 按固定字符数切分并保留相邻分块的重叠, 跨越分块边界的概念
// 至少能从一个分块中完整检索到
type Chunker struct {
	ChunkSize    int // 分块大小(字符数)
	ChunkOverlap int // 相邻分块之间的重叠字符数
}

// NewChunker 创建分块器
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10 // 重叠不超过10%
	}

	return &Chunker{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}
}

// Split 对单个文档分块
// 按字符(rune)计数, 步长为 ChunkSize-ChunkOverlap, 保持阅读顺序;
// 不修剪分块内容, 所有分块的并集完整覆盖原文
// 文档长度不超过 ChunkSize 时恰好产出一个分块
func (c *Chunker) Split(doc *Document) []*Chunk {
	if doc == nil || doc.Content == "" {
		return nil
	}

	runes := []rune(doc.Content)
	totalLen := len(runes)
	step := c.ChunkSize - c.ChunkOverlap

	chunks := make([]*Chunk, 0, totalLen/step+1)
	index := 0

	for start := 0; start < totalLen; start += step {
		end := start + c.ChunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, &Chunk{
			Content:    string(runes[start:end]),
			ChunkIndex: index,
			Metadata:   chunkMetadata(doc.Metadata, index),
		})
		index++

		if end >= totalLen {
			break
		}
	}

	return chunks
}

// SplitAll 按输入顺序对一批文档分块
func (c *Chunker) SplitAll(docs []*Document) []*Chunk {
	var chunks []*Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.Split(doc)...)
	}
	return chunks
}

// chunkMetadata 复制父文档元数据并追加分块序号
func chunkMetadata(parent map[string]string, index int) map[string]string {
	meta := make(map[string]string, len(parent)+1)
	for k, v := range parent {
		meta[k] = v
	}
	meta["chunk_index"] = strconv.Itoa(index)
	return meta
}
