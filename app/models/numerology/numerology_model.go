// Package numerology 数字命理解读记录
package numerology

import (
	"fmt"

	"lunaura/app/models/reading"
)

// Reading 数字命理解读记录模型
type Reading struct {
	reading.Lifecycle

	Name      string `gorm:"type:varchar(80);default:Misafir" json:"name"`
	BirthDate string `gorm:"type:varchar(10)" json:"birth_date"` // YYYY-MM-DD
	Topic     string `gorm:"type:varchar(40);default:genel;index" json:"topic"`
	Question  string `gorm:"type:text" json:"question,omitempty"`
}

// TableName 指定表名
func (Reading) TableName() string {
	return "numerology_readings"
}

// Title 个人中心展示用的标题
func (r *Reading) Title() string {
	topic := r.Topic
	if topic == "" {
		topic = "genel"
	}
	return fmt.Sprintf("Nümeroloji • %s", topic)
}
