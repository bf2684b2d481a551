package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"lunaura/pkg/response"
)

const (
	// DeviceHeader 客户端设备标识
	DeviceHeader = "X-Device-Id"
	// DeviceIDKey 上下文中的设备标识
	DeviceIDKey = "device_id"

	minDeviceIDLength = 8
)

// RequireDevice 要求请求携带 X-Device-Id
func RequireDevice() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(DeviceHeader))
		if len(deviceID) < minDeviceIDLength {
			response.Abort400(c, "X-Device-Id header is required")
			return
		}
		c.Set(DeviceIDKey, deviceID)
		c.Next()
	}
}

// DeviceID 取当前请求的设备标识
func DeviceID(c *gin.Context) string {
	return c.GetString(DeviceIDKey)
}

// RequireAdminToken token 为空时不校验
func RequireAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token != "" && c.GetHeader("X-Admin-Token") != token {
			response.Abort403(c, "Invalid admin token")
			return
		}
		c.Next()
	}
}
