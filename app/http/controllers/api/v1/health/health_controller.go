// Package health 健康检查
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker 依赖的连通性检查
type Checker func(ctx context.Context) error

// HealthController 健康检查控制器
type HealthController struct {
	checks map[string]Checker
}

// NewHealthController checks 为 nil 的依赖视为未启用
func NewHealthController(checks map[string]Checker) *HealthController {
	return &HealthController{checks: checks}
}

// Check 健康检查端点
// GET /health
func (hc *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	deps := make(map[string]string, len(hc.checks))
	for name, check := range hc.checks {
		if check == nil {
			deps[name] = "disabled"
			continue
		}
		if err := check(ctx); err != nil {
			deps[name] = "error: " + err.Error()
			healthy = false
			continue
		}
		deps[name] = "ok"
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"deps":   deps,
		"time":   time.Now().Unix(),
	})
}
