// Package admin 运维接口
package admin

import (
	"github.com/gin-gonic/gin"

	"lunaura/app/repositories"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/response"
)

// StatsController 数据统计
type StatsController struct {
	store    *lifecycle.Store
	payments *repositories.PaymentRepository
}

// NewStatsController 创建控制器
func NewStatsController(store *lifecycle.Store, payments *repositories.PaymentRepository) *StatsController {
	return &StatsController{store: store, payments: payments}
}

// DBStats 各表记录数
// GET /api/v1/admin/db-stats
func (sc *StatsController) DBStats(c *gin.Context) {
	ctx := c.Request.Context()
	tables := make(map[string]int64)
	for _, kind := range sc.store.Kinds() {
		repo := sc.store.Repo(kind)
		n, err := repo.Count(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		tables[repo.Table()] = n
	}
	n, err := sc.payments.Count(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	tables["payments"] = n
	response.Data(c, gin.H{"tables": tables})
}
