package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lunaura/app/models/birthchart"
	"lunaura/app/models/coffee"
	"lunaura/app/models/hand"
	"lunaura/app/models/numerology"
	"lunaura/app/models/reading"
	"lunaura/app/models/tarot"
)

// DeviceID 测试默认设备
const DeviceID = "device-test-0001"

type fixture struct {
	updatedAt time.Time
}

// Option 解读记录构造选项
type Option func(rec reading.Record, f *fixture)

// WithDevice 指定归属设备，空字符串表示无主记录
func WithDevice(deviceID string) Option {
	return func(rec reading.Record, _ *fixture) {
		rec.State().DeviceID = deviceID
	}
}

// WithStatus 指定状态
func WithStatus(status string) Option {
	return func(rec reading.Record, _ *fixture) {
		rec.State().Status = status
	}
}

// Paid 已付款
func Paid() Option {
	return func(rec reading.Record, _ *fixture) {
		st := rec.State()
		st.IsPaid = true
		st.PaymentRef = "TEST-fixture"
		st.Status = reading.StatusPaid
	}
}

// WithResult 已有结果
func WithResult(text, status string) Option {
	return func(rec reading.Record, _ *fixture) {
		st := rec.State()
		st.ResultText = text
		st.Status = status
	}
}

// Processing 已被认领，since 为认领时间
func Processing(since time.Time) Option {
	return func(rec reading.Record, f *fixture) {
		rec.State().Status = reading.StatusProcessing
		f.updatedAt = since.UTC()
	}
}

// WithImages 咖啡和手相的图片路径
func WithImages(paths ...string) Option {
	return func(rec reading.Record, _ *fixture) {
		switch r := rec.(type) {
		case *coffee.Reading:
			r.Images = paths
		case *hand.Reading:
			r.Images = paths
		}
	}
}

// WithCards 塔罗已选卡牌
func WithCards(cards ...string) Option {
	return func(rec reading.Record, _ *fixture) {
		if r, ok := rec.(*tarot.Reading); ok {
			r.Cards = cards
		}
	}
}

// Create 保存记录并应用选项
func Create[T reading.Record](t *testing.T, db *gorm.DB, rec T, status string, opts ...Option) T {
	t.Helper()

	f := &fixture{}
	st := rec.State()
	st.ID = uuid.NewString()
	st.DeviceID = DeviceID
	st.Status = status
	for _, opt := range opts {
		opt(rec, f)
	}
	require.NoError(t, db.Create(rec).Error)

	if !f.updatedAt.IsZero() {
		// 绕过自动时间戳
		require.NoError(t, db.Model(rec).UpdateColumn("updated_at", f.updatedAt).Error)
		st.UpdatedAt = f.updatedAt
	}
	return rec
}

// Coffee 咖啡解读，默认待付款
func Coffee(t *testing.T, db *gorm.DB, opts ...Option) *coffee.Reading {
	return Create(t, db, &coffee.Reading{Name: "Ayşe", Topic: "Aşk"}, reading.StatusPendingPayment, opts...)
}

// Hand 手相解读，默认待付款
func Hand(t *testing.T, db *gorm.DB, opts ...Option) *hand.Reading {
	return Create(t, db, &hand.Reading{Name: "Ayşe", Topic: "Kariyer", DominantHand: "right", PhotoHand: "right"},
		reading.StatusPendingPayment, opts...)
}

// Tarot 塔罗解读，默认三张牌阵
func Tarot(t *testing.T, db *gorm.DB, opts ...Option) *tarot.Reading {
	return Create(t, db, &tarot.Reading{Name: "Ayşe", Topic: "genel", SpreadType: tarot.SpreadThree},
		reading.StatusPendingPayment, opts...)
}

// Numerology 数字命理解读
func Numerology(t *testing.T, db *gorm.DB, opts ...Option) *numerology.Reading {
	return Create(t, db, &numerology.Reading{Name: "Ayşe Yılmaz", BirthDate: "1990-05-17", Topic: "genel"},
		reading.StatusStarted, opts...)
}

// Birthchart 星盘解读
func Birthchart(t *testing.T, db *gorm.DB, opts ...Option) *birthchart.Reading {
	return Create(t, db, &birthchart.Reading{
		Name: "Ayşe", BirthDate: "1990-05-17", BirthTime: "14:30", BirthCity: "İzmir", BirthCountry: "TR", Topic: "genel",
	}, reading.StatusStarted, opts...)
}

// ThreeCards 三张牌阵的合法选牌
func ThreeCards() []string {
	return []string{"major_18_moon|R", "cups_03|U", "major_00_fool|U"}
}
