package migrations

import (
	"lunaura/app/models/birthchart"
	"lunaura/app/models/coffee"
	"lunaura/app/models/consent"
	"lunaura/app/models/hand"
	"lunaura/app/models/numerology"
	"lunaura/app/models/payment"
	"lunaura/app/models/personality"
	"lunaura/app/models/profile"
	"lunaura/app/models/synastry"
	"lunaura/app/models/tarot"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&coffee.Reading{},
		&hand.Reading{},
		&tarot.Reading{},
		&numerology.Reading{},
		&birthchart.Reading{},
		&personality.Reading{},
		&synastry.Reading{},
		&payment.Payment{},
		&profile.Profile{},
		&consent.Consent{},
	}
}
