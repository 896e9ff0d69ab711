package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunker_ShortDocumentSingleChunk(t *testing.T) {
	chunker := NewChunker(1000, 200)

	doc := &Document{
		Content:  strings.Repeat("a", 1000),
		Metadata: map[string]string{"source": "short.txt"},
	}

	chunks := chunker.Split(doc)
	require.Len(t, chunks, 1)
	if chunks[0].Content != doc.Content {
		t.Fatalf("不超过分块大小的文档应恰好产出一个完整分块")
	}
	if chunks[0].Metadata["source"] != "short.txt" {
		t.Fatalf("分块应继承父文档元数据, 实际 %+v", chunks[0].Metadata)
	}
	if chunks[0].Metadata["chunk_index"] != "0" {
		t.Fatalf("分块序号应为 0, 实际 %s", chunks[0].Metadata["chunk_index"])
	}
}

func TestChunker_OverlapBetweenAdjacentChunks(t *testing.T) {
	chunker := NewChunker(1000, 200)

	// 2000 个不同字符, 便于核对边界
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteRune(rune('一' + i))
	}
	content := sb.String()
	runes := []rune(content)

	chunks := chunker.Split(&Document{Content: content})
	// 步长 800: 0-1000, 800-1800, 1600-2000
	require.Len(t, chunks, 3)

	for i := 0; i < len(chunks)-1; i++ {
		prev := []rune(chunks[i].Content)
		next := []rune(chunks[i+1].Content)
		tail := string(prev[len(prev)-200:])
		head := string(next[:200])
		if tail != head {
			t.Fatalf("分块 %d 与 %d 之间应有 200 字符重叠", i, i+1)
		}
	}

	// 并集完整覆盖原文
	if string(runes[:1000]) != chunks[0].Content {
		t.Fatalf("首个分块应从原文开头起始")
	}
	last := []rune(chunks[len(chunks)-1].Content)
	if string(runes[len(runes)-len(last):]) != string(last) {
		t.Fatalf("末尾分块应覆盖到原文结尾")
	}
}

func TestChunker_NoTrimming(t *testing.T) {
	chunker := NewChunker(10, 0)

	content := "  前后都有空白  "
	chunks := chunker.Split(&Document{Content: content})
	require.Len(t, chunks, 1)
	if chunks[0].Content != content {
		t.Fatalf("分块内容不应被修剪, 实际 %q", chunks[0].Content)
	}
}

func TestChunker_SplitAllPreservesOrder(t *testing.T) {
	chunker := NewChunker(5, 0)

	docs := []*Document{
		{Content: "aaaaabbbbb", Metadata: map[string]string{"page": "0"}},
		{Content: "ccccc", Metadata: map[string]string{"page": "1"}},
	}

	chunks := chunker.SplitAll(docs)
	require.Len(t, chunks, 3)
	if chunks[0].Content != "aaaaa" || chunks[1].Content != "bbbbb" || chunks[2].Content != "ccccc" {
		t.Fatalf("分块应保持文档与页内顺序")
	}
	if chunks[2].Metadata["page"] != "1" {
		t.Fatalf("每个分块应携带所属文档的元数据")
	}
	if chunks[2].ChunkIndex != 0 {
		t.Fatalf("分块序号按文档内计数, 实际 %d", chunks[2].ChunkIndex)
	}
}

func TestChunker_EmptyDocument(t *testing.T) {
	chunker := NewChunker(1000, 200)

	require.Empty(t, chunker.Split(&Document{Content: ""}))
	require.Empty(t, chunker.Split(nil))
}

func TestNewChunker_InvalidOverlapFallback(t *testing.T) {
	chunker := NewChunker(100, 100)
	if chunker.ChunkOverlap >= chunker.ChunkSize {
		t.Fatalf("重叠不应大于等于分块大小, 实际 %d/%d", chunker.ChunkOverlap, chunker.ChunkSize)
	}

	// 退化配置下分块仍必须终止
	chunks := chunker.Split(&Document{Content: strings.Repeat("x", 500)})
	require.NotEmpty(t, chunks)
}
