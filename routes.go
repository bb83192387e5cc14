package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// setupRoutes 设置路由配置
func setupRoutes(appServer *AppServer) *gin.Engine {
	// 设置 Gin 模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// 添加中间件
	router.Use(errorHandlingMiddleware())
	router.Use(corsMiddleware())

	// 健康检查
	router.GET("/health", healthHandler)

	// API 路由组
	api := router.Group("/api/v1")
	{
		api.GET("/login/status", appServer.checkLoginStatusHandler)
		api.DELETE("/login/cookies", appServer.deleteCookiesHandler)
		api.POST("/danmaku/download", appServer.downloadHandler)
		api.GET("/user/videos", appServer.listVideosHandler)
	}

	return router
}

// errorHandlingMiddleware 兜底错误处理
func errorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			logrus.Errorf("请求处理失败: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)

			if !c.Writer.Written() {
				respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR",
					"服务内部错误", err.Error())
			}
		}
	}
}

// corsMiddleware 跨域支持
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
