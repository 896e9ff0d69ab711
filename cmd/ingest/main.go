package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docqa/internal/ai"
	"docqa/internal/config"
	"docqa/internal/ingest"
	"docqa/internal/logger"
	"docqa/internal/provider"
	"docqa/internal/rag"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 0. 加载 .env(缺失不是错误)
	if err := godotenv.Load(); err == nil {
		fmt.Println("已加载环境变量文件: .env")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 1. 加载配置
	cfg, err := config.Load(env, "")
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志(控制台只输出阶段进度, 细节走运行日志文件)
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 3. 解析提供商选择
	registry, err := provider.Resolve(cfg)
	if err != nil {
		logger.Fatal("提供商配置无效", zap.Error(err))
	}

	// 4. 构造向量化客户端
	factory := ai.NewFactory(registry)
	defer factory.Close()

	embClient, err := factory.EmbeddingClient()
	if err != nil {
		logger.Fatal("创建向量化客户端失败", zap.Error(err))
	}

	// 5. 打开持久化向量索引
	index, err := rag.OpenChromemIndex(cfg.Index.Path, registry.Embedding.Namespace(), embClient)
	if err != nil {
		logger.Fatal("打开向量索引失败", zap.Error(err))
	}
	defer index.Close()

	// 6. 运行日志文件, 每次运行重新开始
	runLog, closeLog, err := logger.NewRunLogger(cfg.Ingest.LogFile)
	if err != nil {
		logger.Fatal("创建运行日志失败", zap.Error(err))
	}
	defer closeLog()

	// Ctrl+C 中止当前运行, 已提交的批次保留
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestor := ingest.New(
		cfg.Ingest,
		index,
		string(registry.Embedding.Provider),
		registry.Embedding.Model,
		registry.Embedding.Namespace(),
	)

	if err := ingestor.Run(ctx, runLog); err != nil {
		runLog.Error("摄取失败", zap.Error(err))
		fmt.Printf("摄取失败: %v\n", err)
		os.Exit(1)
	}
}
