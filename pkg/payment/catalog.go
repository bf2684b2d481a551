// Package payment 支付流程：SKU 目录、支付单和商店校验
package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency 结算币种
const Currency = "TRY"

// Item SKU 对应的产品和价格
type Item struct {
	SKU     string          `json:"sku"`
	Product string          `json:"product"`
	Amount  decimal.Decimal `json:"amount"`
}

// catalog 商店 SKU 目录，fall_ 前缀为新版命名
var catalog = map[string]Item{}

func init() {
	add := func(product string, amount int64, skus ...string) {
		for _, sku := range skus {
			catalog[sku] = Item{SKU: sku, Product: product, Amount: decimal.NewFromInt(amount)}
		}
	}
	add("coffee", 49, "fall_coffee_49", "coffee_49")
	add("hand", 39, "fall_hand_39", "hand_39")
	add("numerology", 299, "fall_numerology_299", "numerology_299")
	add("birthchart", 299, "fall_birthchart_299", "birthchart_299")
	add("personality", 399, "fall_personality_399", "personality_399")
	add("synastry", 149, "fall_synastry_149", "synastry_149")
	add("tarot", 149, "fall_tarot_3_149", "tarot_3_card_149")
	add("tarot", 199, "fall_tarot_6_199", "tarot_6_card_199")
	add("tarot", 250, "fall_tarot_12_250", "tarot_12_card_250")
}

// Lookup 查找 SKU，忽略首尾空白
func Lookup(sku string) (Item, bool) {
	item, ok := catalog[strings.TrimSpace(sku)]
	return item, ok
}
