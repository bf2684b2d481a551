package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunaura/pkg/logger"
)

// Logger 记录请求日志
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("url", c.Request.URL.String()),
			zap.String("ip", c.ClientIP()),
			zap.String("device", c.GetHeader(DeviceHeader)),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
			zap.String("time", microsecondsStr(cost)),
		}

		switch {
		case status >= 500:
			logger.Error("HTTP Server Error "+strconv.Itoa(status), fields...)
		case status >= 400:
			logger.Warn("HTTP Warning "+strconv.Itoa(status), fields...)
		default:
			logger.Debug("HTTP Access Log", fields...)
		}
	}
}

// microsecondsStr 输出为小数点后 3 位的 ms
func microsecondsStr(elapsed time.Duration) string {
	return strconv.FormatFloat(float64(elapsed.Nanoseconds())/1e6, 'f', 3, 64) + "ms"
}
