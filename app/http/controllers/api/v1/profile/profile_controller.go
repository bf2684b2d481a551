// Package profile 设备资料与历史记录接口
package profile

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"lunaura/app/http/middlewares"
	profileModel "lunaura/app/models/profile"
	"lunaura/app/repositories"
	"lunaura/app/requests"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/response"
)

const (
	defaultRecentLimit  = 12
	maxRecentLimit      = 50
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ProfileController 设备资料控制器
type ProfileController struct {
	profiles *repositories.ProfileRepository
	store    *lifecycle.Store
}

// NewProfileController 创建控制器
func NewProfileController(profiles *repositories.ProfileRepository, store *lifecycle.Store) *ProfileController {
	return &ProfileController{profiles: profiles, store: store}
}

// Me 当前设备资料，未保存过时返回默认资料
// GET /api/v1/profile/me
func (pc *ProfileController) Me(c *gin.Context) {
	deviceID := middlewares.DeviceID(c)
	p, err := pc.profiles.GetByDevice(c.Request.Context(), deviceID)
	if errors.Is(err, repositories.ErrNotFound) {
		response.Data(c, profileModel.Guest(deviceID))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, p)
}

// Update 保存设备资料
// POST /api/v1/profile/me
func (pc *ProfileController) Update(c *gin.Context) {
	request := requests.ProfileRequest{}
	if ok := requests.Validate(c, &request, requests.Profile); !ok {
		return
	}
	p, err := pc.profiles.Upsert(c.Request.Context(), &profileModel.Profile{
		DeviceID:    middlewares.DeviceID(c),
		DisplayName: request.DisplayName,
		BirthDate:   request.BirthDate,
		BirthPlace:  request.BirthPlace,
		BirthTime:   request.BirthTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, p)
}

// Summary 各产品统计和最近记录
// GET /api/v1/profile/summary?recent_limit=12
func (pc *ProfileController) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	deviceID := middlewares.DeviceID(c)
	limit := clamp(cast.ToInt(c.Query("recent_limit")), defaultRecentLimit, maxRecentLimit)

	counts := make(map[string]repositories.DeviceCounts)
	for _, kind := range pc.store.Kinds() {
		n, err := pc.store.Repo(kind).CountByDevice(ctx, deviceID)
		if err != nil {
			response.Error(c, err)
			return
		}
		counts[kind] = n
	}

	items, err := pc.store.Latest(ctx, deviceID, pc.store.Kinds(), limit, 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(items) > limit {
		items = items[:limit]
	}
	response.Data(c, gin.H{
		"device_id": deviceID,
		"counts":    counts,
		"recent":    items,
	})
}

// History 分页的历史记录，type 为空时合并所有产品
// GET /api/v1/profile/history?type=&limit=20&offset=0
func (pc *ProfileController) History(c *gin.Context) {
	kinds := pc.store.Kinds()
	if t := c.Query("type"); t != "" {
		if pc.store.Repo(t) == nil {
			response.Abort400(c, "Unknown reading type")
			return
		}
		kinds = []string{t}
	}
	limit := clamp(cast.ToInt(c.Query("limit")), defaultHistoryLimit, maxHistoryLimit)
	offset := cast.ToInt(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}

	// 多表合并后再分页
	items, err := pc.store.Latest(c.Request.Context(), middlewares.DeviceID(c), kinds, limit+offset, 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	if offset >= len(items) {
		items = items[:0]
	} else {
		items = items[offset:]
	}
	if len(items) > limit {
		items = items[:limit]
	}
	response.Data(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
