// Package lifecycle 解读记录的生命周期：归属校验、图片上传、解锁、生成和评分
// 所有产品共用一套流程，差异由 Product 描述
package lifecycle

import (
	"lunaura/app/models/birthchart"
	"lunaura/app/models/coffee"
	"lunaura/app/models/hand"
	"lunaura/app/models/numerology"
	"lunaura/app/models/personality"
	"lunaura/app/models/reading"
	"lunaura/app/models/synastry"
	"lunaura/app/models/tarot"
)

// 产品标识，同时用于路由和 SKU 目录
const (
	Coffee      = "coffee"
	Hand        = "hand"
	Tarot       = "tarot"
	Numerology  = "numerology"
	Birthchart  = "birthchart"
	Personality = "personality"
	Synastry    = "synastry"
)

// Precondition 解锁前置条件
type Precondition int

const (
	NeedsNothing Precondition = iota
	NeedsAssets
	NeedsCards
)

// Product 产品描述
type Product struct {
	Kind           string
	InitialStatus  string
	TerminalStatus string
	New            func() reading.Record

	Precondition Precondition
	MinAssets    int
	MaxAssets    int

	// 生成前重新校验图片
	Revalidate bool
	// 截断续写次数上限
	MaxHops int
}

// DefaultProducts 七个产品的描述，图片数量范围来自上传配置
func DefaultProducts(minPhotos, maxPhotos int) []Product {
	return []Product{
		{
			Kind:           Coffee,
			InitialStatus:  reading.StatusPendingPayment,
			TerminalStatus: reading.StatusCompleted,
			New:            func() reading.Record { return &coffee.Reading{} },
			Precondition:   NeedsAssets,
			MinAssets:      minPhotos,
			MaxAssets:      maxPhotos,
			Revalidate:     true,
			MaxHops:        2,
		},
		{
			Kind:           Hand,
			InitialStatus:  reading.StatusPendingPayment,
			TerminalStatus: reading.StatusCompleted,
			New:            func() reading.Record { return &hand.Reading{} },
			Precondition:   NeedsAssets,
			MinAssets:      minPhotos,
			MaxAssets:      maxPhotos,
			Revalidate:     true,
			MaxHops:        2,
		},
		{
			Kind:           Tarot,
			InitialStatus:  reading.StatusPendingPayment,
			TerminalStatus: reading.StatusCompleted,
			New:            func() reading.Record { return &tarot.Reading{} },
			Precondition:   NeedsCards,
			MaxHops:        2,
		},
		{
			Kind:           Numerology,
			InitialStatus:  reading.StatusStarted,
			TerminalStatus: reading.StatusCompleted,
			New:            func() reading.Record { return &numerology.Reading{} },
			MaxHops:        3,
		},
		{
			Kind:           Birthchart,
			InitialStatus:  reading.StatusStarted,
			TerminalStatus: reading.StatusDone,
			New:            func() reading.Record { return &birthchart.Reading{} },
			MaxHops:        2,
		},
		{
			Kind:           Personality,
			InitialStatus:  reading.StatusCreated,
			TerminalStatus: reading.StatusDone,
			New:            func() reading.Record { return &personality.Reading{} },
			MaxHops:        2,
		},
		{
			Kind:           Synastry,
			InitialStatus:  reading.StatusStarted,
			TerminalStatus: reading.StatusDone,
			New:            func() reading.Record { return &synastry.Reading{} },
			MaxHops:        2,
		},
	}
}

// satisfied 前置条件是否满足
func (p Product) satisfied(rec reading.Record) bool {
	switch p.Precondition {
	case NeedsAssets:
		holder, ok := rec.(reading.AssetHolder)
		return ok && len(holder.Assets()) > 0
	case NeedsCards:
		holder, ok := rec.(reading.CardHolder)
		return ok && len(holder.SelectedCards()) > 0
	default:
		return true
	}
}
