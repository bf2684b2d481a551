// Package payment 支付流水模型
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment 支付记录模型
type Payment struct {
	ID        string          `gorm:"type:varchar(48);primaryKey" json:"id"` // PAY-<hex>
	DeviceID  string          `gorm:"type:varchar(128);index" json:"device_id"`
	ReadingID string          `gorm:"type:varchar(36);index" json:"reading_id"`
	SKU       string          `gorm:"column:sku;type:varchar(64)" json:"sku"`
	Product   string          `gorm:"type:varchar(20);index" json:"product"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Currency  string          `gorm:"type:varchar(8);default:TRY" json:"currency"`
	Status    string          `gorm:"type:varchar(20);index" json:"status"`

	// 商店校验信息
	// 同一平台交易号只能确认一个支付单
	Platform      string `gorm:"type:varchar(20);uniqueIndex:idx_payment_verified_tx,where:status = 'verified'" json:"platform,omitempty"`
	TransactionID string `gorm:"type:varchar(128);uniqueIndex:idx_payment_verified_tx,where:status = 'verified'" json:"transaction_id,omitempty"`
	PurchaseToken string `gorm:"type:text" json:"-"`
	ReceiptData   string `gorm:"type:text" json:"-"`

	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
