// Package reading 各类解读记录共用的生命周期字段
package reading

import (
	"lunaura/app/models"
)

// Lifecycle 解读记录的生命周期字段，嵌入到每个产品模型中
type Lifecycle struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	DeviceID   string `gorm:"type:varchar(128);index" json:"device_id,omitempty"`
	IsPaid     bool   `gorm:"not null;default:false;index" json:"is_paid"`
	PaymentRef string `gorm:"type:varchar(128);index" json:"payment_ref,omitempty"`
	Status     string `gorm:"type:varchar(32);index" json:"status"`
	ResultText string `gorm:"type:text" json:"result_text,omitempty"`
	Rating     *int   `json:"rating,omitempty"`

	// 认领次数，只做观测
	Attempts int `gorm:"column:generation_attempts;not null;default:0" json:"generation_attempts"`

	models.CommonTimestampsField // 包含 created_at 和 updated_at
}

// Record 所有产品解读记录的公共接口
type Record interface {
	TableName() string
	State() *Lifecycle
	Title() string
}

// State 返回生命周期字段
func (l *Lifecycle) State() *Lifecycle {
	return l
}

// AssetHolder 需要上传图片的产品（咖啡、手相）
type AssetHolder interface {
	Assets() []string
}

// CardHolder 需要选牌的产品（塔罗）
type CardHolder interface {
	SelectedCards() []string
}
