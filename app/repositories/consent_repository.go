package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lunaura/app/models/consent"
)

// ConsentRepository 法律文本同意记录仓库
type ConsentRepository struct {
	db *gorm.DB
}

// NewConsentRepository 创建仓库实例
func NewConsentRepository(db *gorm.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// Create 追加一条同意记录
func (r *ConsentRepository) Create(ctx context.Context, c *consent.Consent) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

// Latest 设备对某类文档最近一次的同意记录
func (r *ConsentRepository) Latest(ctx context.Context, deviceID, documentType string) (*consent.Consent, error) {
	var c consent.Consent
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND document_type = ?", deviceID, documentType).
		Order("accepted_at DESC").
		First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
