package query

import (
	"context"
	"net/http"
	"strings"

	"docqa/api/handlers/common"
	"docqa/internal/logger"
	"docqa/internal/rag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnswerService 问答服务
type AnswerService interface {
	Answer(ctx context.Context, req *rag.QueryRequest) (*rag.Answer, error)
}

// Handler 问答请求处理器
type Handler struct {
	service AnswerService
}

// NewHandler 创建问答处理器
func NewHandler(service AnswerService) *Handler {
	return &Handler{service: service}
}

// Answer 处理问答请求
// POST /query
func (h *Handler) Answer(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("无效的请求格式: "+err.Error()))
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("question 不能为空"))
		return
	}

	answer, err := h.service.Answer(c.Request.Context(), &rag.QueryRequest{
		Question: req.Question,
		Context:  req.Context,
	})
	if err != nil {
		logger.Error("问答处理失败", zap.String("question", req.Question), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("问答处理失败: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, QueryResponse{
		Answer:  answer.Answer,
		Sources: answer.Sources,
	})
}
