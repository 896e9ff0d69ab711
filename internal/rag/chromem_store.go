package rag

import (
	"context"
	"fmt"

	"docqa/pkg/aiinterface"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

// ChromemIndex 基于 chromem-go 的嵌入式持久化向量索引
// 一个实例对应一个命名空间集合, 集合按向量化模型标识命名,
// 不同模型的向量空间互不污染
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   aiinterface.EmbeddingClient
	namespace  string
}

// OpenChromemIndex 打开(或惰性创建)指定命名空间的持久化集合
// 重复打开同一命名空间是幂等的, 不丢失也不复制已有内容
func OpenChromemIndex(path, namespace string, embedder aiinterface.EmbeddingClient) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: 打开索引目录 %s: %v", ErrStorage, path, err)
	}

	// 集合内所有向量均由外部预先计算, 该函数只作为 chromem 要求的兜底
	embedOne := func(ctx context.Context, text string) ([]float32, error) {
		vectors, err := embedder.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		return vectors[0], nil
	}

	collection, err := db.GetOrCreateCollection(namespace, nil, embedOne)
	if err != nil {
		return nil, fmt.Errorf("%w: 打开集合 %s: %v", ErrStorage, namespace, err)
	}

	return &ChromemIndex{
		db:         db,
		collection: collection,
		embedder:   embedder,
		namespace:  namespace,
	}, nil
}

// Namespace 返回集合命名空间
func (ix *ChromemIndex) Namespace() string {
	return ix.namespace
}

// Add 将分块向量化后追加写入集合
// 每个分块分配独立 ID, 重复内容不去重(追加语义)
func (ix *ChromemIndex) Add(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: 返回向量数 %d 与分块数 %d 不符", ErrEmbedding, len(vectors), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        uuid.NewString(),
			Content:   chunk.Content,
			Metadata:  chunk.Metadata,
			Embedding: vectors[i],
		}
	}

	// 顺序写入, 保持批内顺序
	if err := ix.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// Query 检索与文本最相似的 topK 个分块, 按相似度降序
func (ix *ChromemIndex) Query(ctx context.Context, text string, topK int) ([]*RetrievedChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	count := ix.collection.Count()
	if count == 0 {
		return []*RetrievedChunk{}, nil
	}
	if topK > count {
		topK = count
	}

	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	results, err := ix.collection.QueryEmbedding(ctx, vectors[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	chunks := make([]*RetrievedChunk, len(results))
	for i, result := range results {
		chunks[i] = &RetrievedChunk{
			Content:    result.Content,
			Metadata:   result.Metadata,
			Similarity: result.Similarity,
		}
	}

	return chunks, nil
}

// Count 集合内分块总数
func (ix *ChromemIndex) Count() int {
	return ix.collection.Count()
}

// Close 释放索引句柄
// chromem 每次写入即落盘, 无需显式刷新
func (ix *ChromemIndex) Close() error {
	return nil
}
