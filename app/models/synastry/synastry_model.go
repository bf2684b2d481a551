// Package synastry 合盘（两人契合度）解读记录
package synastry

import (
	"strings"

	"lunaura/app/models/reading"
)

// Reading 合盘解读记录模型
type Reading struct {
	reading.Lifecycle

	// 甲方
	NameA         string `gorm:"type:varchar(80)" json:"name_a"`
	BirthDateA    string `gorm:"type:varchar(10)" json:"birth_date_a"`
	BirthTimeA    string `gorm:"type:varchar(5)" json:"birth_time_a,omitempty"`
	BirthCityA    string `gorm:"type:varchar(120)" json:"birth_city_a"`
	BirthCountryA string `gorm:"type:varchar(4);default:TR" json:"birth_country_a"`

	// 乙方
	NameB         string `gorm:"type:varchar(80)" json:"name_b"`
	BirthDateB    string `gorm:"type:varchar(10)" json:"birth_date_b"`
	BirthTimeB    string `gorm:"type:varchar(5)" json:"birth_time_b,omitempty"`
	BirthCityB    string `gorm:"type:varchar(120)" json:"birth_city_b"`
	BirthCountryB string `gorm:"type:varchar(4);default:TR" json:"birth_country_b"`

	Topic    string `gorm:"type:varchar(40);default:genel;index" json:"topic"`
	Question string `gorm:"type:text" json:"question,omitempty"`
}

// TableName 指定表名
func (Reading) TableName() string {
	return "synastry_readings"
}

// Title 个人中心展示用的标题
func (r *Reading) Title() string {
	a, b := strings.TrimSpace(r.NameA), strings.TrimSpace(r.NameB)
	if a != "" && b != "" {
		return "Sinastri • " + a + " & " + b
	}
	return "Sinastri"
}
