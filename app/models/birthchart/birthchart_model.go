// Package birthchart 出生星盘解读记录
package birthchart

import (
	"fmt"

	"lunaura/app/models/reading"
)

// Reading 出生星盘解读记录模型
type Reading struct {
	reading.Lifecycle

	Name         string `gorm:"type:varchar(80);default:Misafir" json:"name"`
	BirthDate    string `gorm:"type:varchar(10)" json:"birth_date"`
	BirthTime    string `gorm:"type:varchar(5)" json:"birth_time,omitempty"` // HH:MM
	BirthCity    string `gorm:"type:varchar(120)" json:"birth_city"`
	BirthCountry string `gorm:"type:varchar(4);default:TR" json:"birth_country"`
	Topic        string `gorm:"type:varchar(40);default:genel;index" json:"topic"`
	Question     string `gorm:"type:text" json:"question,omitempty"`
}

// TableName 指定表名
func (Reading) TableName() string {
	return "birthchart_readings"
}

// Title 个人中心展示用的标题
func (r *Reading) Title() string {
	topic := r.Topic
	if topic == "" {
		topic = "genel"
	}
	return fmt.Sprintf("Doğum Haritası • %s", topic)
}
