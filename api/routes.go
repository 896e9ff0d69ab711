package api

import (
	"docqa/api/handlers/query"
	"docqa/api/handlers/system"
	"docqa/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 创建并配置 HTTP 路由
func SetupRouter(service query.AnswerService, registry *provider.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORS())

	queryHandler := query.NewHandler(service)
	systemHandler := system.NewHandler(registry)

	router.POST("/query", queryHandler.Answer)
	router.GET("/health", systemHandler.Health)
	router.GET("/config", systemHandler.Config)

	return router
}
