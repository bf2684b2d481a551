package tarot

import "strings"

// 牌面方向
const (
	Upright  = "U"
	Reversed = "R"
)

// Card 解析后的卡牌
type Card struct {
	ID       string
	Reversed bool
}

// ParseCard 解析 "<card_id>|<U|R>"，缺省方向为正位
func ParseCard(raw string) Card {
	raw = strings.TrimSpace(raw)
	id, orientation, found := strings.Cut(raw, "|")
	card := Card{ID: strings.TrimSpace(id)}
	if found && strings.EqualFold(strings.TrimSpace(orientation), Reversed) {
		card.Reversed = true
	}
	return card
}

// Label 卡牌的可读名称，例如 "major 18 moon (ters)"
func (c Card) Label() string {
	name := strings.ReplaceAll(c.ID, "_", " ")
	if c.Reversed {
		return name + " (ters)"
	}
	return name + " (düz)"
}
