package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lunaura/app/models/profile"
)

// ProfileRepository 设备资料仓库
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建仓库实例
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByDevice 获取设备资料，不存在时返回 ErrNotFound
func (r *ProfileRepository) GetByDevice(ctx context.Context, deviceID string) (*profile.Profile, error) {
	var p profile.Profile
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Upsert 按设备新增或更新资料
func (r *ProfileRepository) Upsert(ctx context.Context, in *profile.Profile) (*profile.Profile, error) {
	existing, err := r.GetByDevice(ctx, in.DeviceID)
	switch {
	case errors.Is(err, ErrNotFound):
		in.ID = uuid.NewString()
		if in.DisplayName == "" {
			in.DisplayName = profile.DefaultDisplayName
		}
		if err := r.db.WithContext(ctx).Create(in).Error; err != nil {
			return nil, err
		}
		return in, nil
	case err != nil:
		return nil, err
	}

	if in.DisplayName != "" {
		existing.DisplayName = in.DisplayName
	}
	existing.BirthDate = in.BirthDate
	existing.BirthPlace = in.BirthPlace
	existing.BirthTime = in.BirthTime
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
