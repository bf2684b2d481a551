package bootstrap

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lunaura/app/http/middlewares"
	"lunaura/routes"
)

// SetupRoute 路由初始化
// 1. 注册全局中间件
// 2. 注册 API 路由
// 3. 配置 404 处理器
func SetupRoute(router *gin.Engine, deps routes.Deps) {
	registerGlobalMiddleWare(router)
	routes.RegisterAPIRoutes(router, deps)
	setup404Handler(router)
}

// registerGlobalMiddleWare 注册全局中间件
func registerGlobalMiddleWare(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),   // 记录请求日志
		middlewares.Recovery(), // 在发生 panic 时恢复
		middlewares.Metrics(),  // 请求指标
	)
}

// setup404Handler 配置 404 请求处理器
func setup404Handler(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		acceptString := c.Request.Header.Get("Accept")
		if strings.Contains(acceptString, "text/html") {
			c.String(http.StatusNotFound, "页面返回 404")
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Route not found, please check the url and method",
		})
	})
}
