package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"docqa/internal/config"
	"docqa/internal/rag"
	"docqa/internal/rag/parsers"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Ingestor 文档摄取流水线
// 四个阶段: 加载 -> 分块 -> 批量向量化写入 -> 汇总
// 进度输出到控制台, 细节写入运行日志文件(每次运行重新开始)
type Ingestor struct {
	cfg       config.IngestConfig
	index     rag.VectorIndex
	registry  *parsers.Registry
	chunker   *rag.Chunker
	provider  string // 向量化提供商(仅用于日志)
	model     string // 向量化模型(仅用于日志)
	namespace string // 目标集合命名空间(仅用于日志)
}

// New 创建摄取流水线
func New(cfg config.IngestConfig, index rag.VectorIndex, provider, model, namespace string) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		index:     index,
		registry:  parsers.NewRegistry(),
		chunker:   rag.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		provider:  provider,
		model:     model,
		namespace: namespace,
	}
}

// Run 执行一次完整摄取
// 批次失败立即中止整个运行, 已写入的批次保留在索引中(非事务性,
// 重跑时无需回滚; 当前实现不跳过已向量化的分块, 重跑会整体重新向量化)
func (ing *Ingestor) Run(ctx context.Context, runLog *zap.Logger) error {
	startTime := time.Now()

	// ── 1. 加载源文档 ──
	files, err := ing.listSourceFiles()
	if err != nil {
		runLog.Error("枚举源文件失败", zap.Error(err))
		return err
	}

	fmt.Printf("[1/4] 从 %s 加载 %d 个源文件...\n", ing.cfg.DataPath, len(files))
	runLog.Info("发现源文件", zap.Strings("files", files))

	documents, err := ing.loadDocuments(files, runLog)
	if err != nil {
		return err
	}

	fmt.Printf("    → 共加载 %d 个逻辑页\n", len(documents))
	runLog.Info("加载完成", zap.Int("pages", len(documents)))

	// ── 2. 分块 ──
	fmt.Println("[2/4] 文档分块...")
	chunks := ing.chunker.SplitAll(documents)
	fmt.Printf("    → %d 个分块(批大小: %d)\n", len(chunks), ing.cfg.BatchSize)
	runLog.Info("分块完成",
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", ing.chunker.ChunkSize),
		zap.Int("chunk_overlap", ing.chunker.ChunkOverlap),
	)

	// ── 3. 批量向量化并写入 ──
	fmt.Println("[3/4] 向量化分块(最耗时的阶段)...")
	fmt.Printf("    提供商: %s | 模型: %s | 集合: %s\n", ing.provider, ing.model, ing.namespace)
	runLog.Info("开始向量化",
		zap.String("provider", ing.provider),
		zap.String("model", ing.model),
		zap.String("namespace", ing.namespace),
	)

	if err := ing.embedAndStore(ctx, chunks, runLog); err != nil {
		return err
	}

	// ── 4. 汇总 ──
	fmt.Println("[4/4] 完成...")

	elapsed := time.Since(startTime)
	summary := fmt.Sprintf("摄取完成: %d 个文件, %d 个分块, 耗时 %.1fs",
		len(files), len(chunks), elapsed.Seconds())
	fmt.Printf("    ✓ %s\n", summary)
	fmt.Printf("    运行日志: %s\n", ing.cfg.LogFile)
	runLog.Info(summary)

	return nil
}

// listSourceFiles 枚举源目录下所有受支持格式的文件
// 零个匹配文件不是错误, 流水线照常完成(记录为零工作量运行)
func (ing *Ingestor) listSourceFiles() ([]string, error) {
	entries, err := os.ReadDir(ing.cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("读取源文档目录 %s 失败: %w", ing.cfg.DataPath, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ing.registry.Supported(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// loadDocuments 将每个文件解析为逻辑页文档
func (ing *Ingestor) loadDocuments(files []string, runLog *zap.Logger) ([]*rag.Document, error) {
	var documents []*rag.Document

	for _, name := range files {
		path := filepath.Join(ing.cfg.DataPath, name)

		file, err := os.Open(path)
		if err != nil {
			runLog.Error("打开文件失败", zap.String("file", name), zap.Error(err))
			return nil, fmt.Errorf("打开文件 %s 失败: %w", name, err)
		}

		parser := ing.registry.ForFile(name)
		pages, err := parser.Parse(file)
		file.Close()
		if err != nil {
			runLog.Error("解析文件失败", zap.String("file", name), zap.Error(err))
			return nil, fmt.Errorf("解析文件 %s 失败: %w", name, err)
		}

		for i, page := range pages {
			documents = append(documents, &rag.Document{
				Content: page,
				Metadata: map[string]string{
					"source": name,
					"page":   strconv.Itoa(i),
				},
			})
		}

		runLog.Info("已加载文件", zap.String("file", name), zap.Int("pages", len(pages)))
	}

	return documents, nil
}

// embedAndStore 按固定批大小顺序提交分块
// 单个批次失败中止整个运行并上报批次序号; 之前成功的批次保留
func (ing *Ingestor) embedAndStore(ctx context.Context, chunks []*rag.Chunk, runLog *zap.Logger) error {
	if len(chunks) == 0 {
		runLog.Info("没有待向量化的分块, 零工作量运行")
		return nil
	}

	batchSize := ing.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}

	var batches [][]*rag.Chunk
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[start:end])
	}

	bar := progressbar.Default(int64(len(chunks)), "  向量化")

	for i, batch := range batches {
		batchStart := time.Now()

		if err := ing.index.Add(ctx, batch); err != nil {
			runLog.Error("批次失败, 中止运行",
				zap.Int("batch", i+1),
				zap.Int("total_batches", len(batches)),
				zap.Error(err),
			)
			return fmt.Errorf("批次 %d/%d 写入失败: %w", i+1, len(batches), err)
		}

		elapsed := time.Since(batchStart)
		runLog.Info("批次完成",
			zap.Int("batch", i+1),
			zap.Int("total_batches", len(batches)),
			zap.Int("chunks", len(batch)),
			zap.Duration("elapsed", elapsed),
			zap.Float64("sec_per_chunk", elapsed.Seconds()/float64(len(batch))),
		)
		_ = bar.Add(len(batch))
	}

	_ = bar.Finish()
	return nil
}
