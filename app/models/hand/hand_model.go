// Package hand 手相解读记录
package hand

import (
	"fmt"

	"lunaura/app/models/reading"
)

// Reading 手相解读记录模型
type Reading struct {
	reading.Lifecycle

	Name               string `gorm:"type:varchar(80);default:Misafir" json:"name"`
	Age                *int   `json:"age,omitempty"`
	Topic              string `gorm:"type:varchar(40);default:Genel;index" json:"topic"`
	Question           string `gorm:"type:text" json:"question"`
	RelationshipStatus string `gorm:"type:varchar(40)" json:"relationship_status,omitempty"`
	BigDecision        string `gorm:"type:text" json:"big_decision,omitempty"`

	// right / left
	DominantHand string `gorm:"type:varchar(10)" json:"dominant_hand,omitempty"`
	PhotoHand    string `gorm:"type:varchar(10)" json:"photo_hand,omitempty"`

	Images reading.StringList `gorm:"column:images_json;type:text" json:"images"`
}

// TableName 指定表名
func (Reading) TableName() string {
	return "hand_readings"
}

// Title 个人中心展示用的标题
func (r *Reading) Title() string {
	topic := r.Topic
	if topic == "" {
		topic = "Genel"
	}
	return fmt.Sprintf("El • %s", topic)
}

// Assets 已上传的图片路径
func (r *Reading) Assets() []string {
	return r.Images
}
