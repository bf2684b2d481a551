// Package coffee 咖啡杯解读记录
package coffee

import (
	"fmt"

	"lunaura/app/models/reading"
)

// Reading 咖啡杯解读记录模型
type Reading struct {
	reading.Lifecycle

	Name               string `gorm:"type:varchar(80);default:Misafir" json:"name"`
	Age                *int   `json:"age,omitempty"`
	Topic              string `gorm:"type:varchar(40);default:Genel;index" json:"topic"`
	Question           string `gorm:"type:text" json:"question"`
	RelationshipStatus string `gorm:"type:varchar(40)" json:"relationship_status,omitempty"`
	BigDecision        string `gorm:"type:text" json:"big_decision,omitempty"`

	Images reading.StringList `gorm:"column:images_json;type:text" json:"images"`
}

// TableName 指定表名
func (Reading) TableName() string {
	return "coffee_readings"
}

// Title 个人中心展示用的标题
func (r *Reading) Title() string {
	topic := r.Topic
	if topic == "" {
		topic = "Genel"
	}
	return fmt.Sprintf("Kahve • %s", topic)
}

// Assets 已上传的图片路径
func (r *Reading) Assets() []string {
	return r.Images
}
