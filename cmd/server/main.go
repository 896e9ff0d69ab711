package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"docqa/api"
	"docqa/internal/ai"
	"docqa/internal/config"
	"docqa/internal/logger"
	"docqa/internal/provider"
	"docqa/internal/rag"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 0. 统一加载 .env，便于集中管理 APP_* 环境变量
	loadEnvFile()

	// 获取环境变量
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

	// 2. 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("env", env),
		zap.String("mode", cfg.Server.Mode),
	)

	// 3. 解析提供商选择, 未知提供商阻止启动
	registry, err := provider.Resolve(cfg)
	if err != nil {
		logger.Fatal("提供商配置无效", zap.Error(err))
	}

	logger.Info("提供商已解析",
		zap.String("llm_provider", string(registry.Generation.Provider)),
		zap.String("llm_model", registry.Generation.Model),
		zap.String("embedding_provider", string(registry.Embedding.Provider)),
		zap.String("embedding_model", registry.Embedding.Model),
		zap.String("collection", registry.Embedding.Namespace()),
	)

	// 4. 构造模型客户端(凭证缺失不在此报错, 首次调用时暴露认证失败)
	factory := ai.NewFactory(registry)
	defer factory.Close()

	llmClient, err := factory.GenerationClient()
	if err != nil {
		logger.Fatal("创建生成客户端失败", zap.Error(err))
	}
	embClient, err := factory.EmbeddingClient()
	if err != nil {
		logger.Fatal("创建向量化客户端失败", zap.Error(err))
	}

	// 5. 打开持久化向量索引, 集合按向量化模型命名
	index, err := rag.OpenChromemIndex(cfg.Index.Path, registry.Embedding.Namespace(), embClient)
	if err != nil {
		logger.Fatal("打开向量索引失败", zap.Error(err))
	}
	defer index.Close()

	pipeline := rag.NewPipeline(index, llmClient, rag.DefaultTopK, logger.Get())

	// 6. 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 7. 创建路由
	router := api.SetupRouter(pipeline, registry)

	// 8. 创建 HTTP 服务器
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 9. 启动服务器（goroutine）
	go func() {
		logger.Info("HTTP 服务器启动",
			zap.Int("port", cfg.Server.Port),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 10. 优雅关闭
	gracefulShutdown(server, index)
}

// loadEnvFile 依次尝试加载当前目录及上级目录的 .env 文件
func loadEnvFile() {
	if path := resolveEnvPath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("加载环境变量文件 %s 失败: %v\n", path, err)
		} else {
			fmt.Printf("已加载环境变量文件: %s\n", path)
		}
	} else {
		fmt.Println("未找到 .env 文件，将仅使用系统环境变量和 config/* 配置")
	}
}

// resolveEnvPath 尝试从当前工作目录、可执行文件目录向上查找根目录 .env
func resolveEnvPath() string {
	candidates := collectEnvCandidates()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func collectEnvCandidates() []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}

	traverse := func(start string) {
		dir := filepath.Clean(start)
		for i := 0; i < 8; i++ {
			if dir == "" || dir == string(filepath.Separator) || dir == "." {
				break
			}
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if wd, err := os.Getwd(); err == nil {
		traverse(wd)
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		traverse(exeDir)
	}

	return candidates
}

// gracefulShutdown 优雅关闭
func gracefulShutdown(server *http.Server, index *rag.ChromemIndex) {
	// 监听中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	// 设置超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭向量索引
	if err := index.Close(); err != nil {
		logger.Error("向量索引关闭异常", zap.Error(err))
	}

	logger.Info("服务器已安全关闭")
}
