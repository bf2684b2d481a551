// Package tarot 塔罗牌解读记录
package tarot

import (
	"fmt"

	"lunaura/app/models/reading"
)

// 牌阵类型
const (
	SpreadThree  = "three"
	SpreadSix    = "six"
	SpreadTwelve = "twelve"
)

// spreadCards 牌阵对应的抽牌数量
var spreadCards = map[string]int{
	SpreadThree:  3,
	SpreadSix:    6,
	SpreadTwelve: 12,
}

// Reading 塔罗牌解读记录模型
type Reading struct {
	reading.Lifecycle

	Name       string `gorm:"type:varchar(80);default:Misafir" json:"name"`
	Age        *int   `json:"age,omitempty"`
	Topic      string `gorm:"type:varchar(40);default:genel;index" json:"topic"`
	Question   string `gorm:"type:text" json:"question"`
	SpreadType string `gorm:"type:varchar(10);default:three" json:"spread_type"`

	// 格式 "<card_id>|<U|R>"，例如 "major_18_moon|R"
	Cards reading.StringList `gorm:"column:cards_json;type:text" json:"cards"`
}

// TableName 指定表名
func (Reading) TableName() string {
	return "tarot_readings"
}

// Title 个人中心展示用的标题
func (r *Reading) Title() string {
	spread := r.SpreadType
	if spread == "" {
		spread = SpreadThree
	}
	return fmt.Sprintf("Tarot • %s", spread)
}

// CardCount 牌阵需要的卡牌数量，未知牌阵返回 false
func CardCount(spread string) (int, bool) {
	n, ok := spreadCards[spread]
	return n, ok
}

// SelectedCards 已选的卡牌
func (r *Reading) SelectedCards() []string {
	return r.Cards
}
