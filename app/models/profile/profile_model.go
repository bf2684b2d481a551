// Package profile 设备资料，取代账号体系
package profile

import (
	"lunaura/app/models"
)

// DefaultDisplayName 未设置昵称时的展示名
const DefaultDisplayName = "Misafir"

// Profile 设备资料模型，一台设备一条
type Profile struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"-"`
	DeviceID    string `gorm:"type:varchar(128);uniqueIndex" json:"device_id"`
	DisplayName string `gorm:"type:varchar(80)" json:"display_name"`
	BirthDate   string `gorm:"type:varchar(10)" json:"birth_date,omitempty"`
	BirthPlace  string `gorm:"type:varchar(120)" json:"birth_place,omitempty"`
	BirthTime   string `gorm:"type:varchar(5)" json:"birth_time,omitempty"`

	models.CommonTimestampsField
}

// TableName 表名
func (Profile) TableName() string {
	return "user_profiles"
}

// Guest 尚未保存资料的设备
func Guest(deviceID string) *Profile {
	return &Profile{DeviceID: deviceID, DisplayName: DefaultDisplayName}
}
