package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lunaura/pkg/metrics"
)

// Metrics 记录请求数和耗时，标签使用路由模板
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		metrics.RequestStarted()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestFinished(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
