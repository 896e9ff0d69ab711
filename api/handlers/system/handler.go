package system

import (
	"net/http"

	"docqa/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 系统状态处理器
type Handler struct {
	registry *provider.Registry
}

// NewHandler 创建系统状态处理器
func NewHandler(registry *provider.Registry) *Handler {
	return &Handler{registry: registry}
}

// Health 健康检查
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Config 回显当前生效的提供商配置(不含密钥)
// GET /config
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"llm_provider":       string(h.registry.Generation.Provider),
		"llm_model":          h.registry.Generation.Model,
		"embedding_provider": string(h.registry.Embedding.Provider),
		"embedding_model":    h.registry.Embedding.Model,
		"collection":         h.registry.Embedding.Namespace(),
	})
}
