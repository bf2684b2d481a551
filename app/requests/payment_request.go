package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/thedevsaddam/govalidator"
)

// PaymentIntentRequest 创建支付单
type PaymentIntentRequest struct {
	ReadingID string `json:"reading_id" valid:"reading_id"`
	SKU       string `json:"sku" valid:"sku"`
}

// PaymentIntent 创建支付单参数校验
func PaymentIntent(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"reading_id": []string{"required", "min:3"},
		"sku":        []string{"required", "min:3"},
	}
	messages := govalidator.MapData{
		"reading_id": []string{"required:reading_id is required"},
		"sku":        []string{"required:sku is required"},
	}
	return validate(data, rules, messages)
}

// PaymentVerifyRequest 商店购买校验
type PaymentVerifyRequest struct {
	PaymentID     string `json:"payment_id" valid:"payment_id"`
	Platform      string `json:"platform" valid:"platform"`
	SKU           string `json:"sku" valid:"sku"`
	TransactionID string `json:"transaction_id" valid:"transaction_id"`
	PurchaseToken string `json:"purchase_token" valid:"purchase_token"`
	ReceiptData   string `json:"receipt_data" valid:"receipt_data"`
}

// PaymentVerify 商店购买校验参数校验
func PaymentVerify(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"payment_id":     []string{"required", "min:6"},
		"platform":       []string{"required", "in:google_play,app_store,alipay,wechat_pay"},
		"sku":            []string{"required", "min:3"},
		"transaction_id": []string{"required", "min:3"},
	}
	messages := govalidator.MapData{
		"platform": []string{"in:platform must be one of google_play, app_store, alipay, wechat_pay"},
	}
	return validate(data, rules, messages)
}

// PaymentStartRequest 旧版测试支付
type PaymentStartRequest struct {
	Product   string           `json:"product" valid:"product"`
	ReadingID string           `json:"reading_id" valid:"reading_id"`
	Amount    *decimal.Decimal `json:"amount"`
}

// PaymentStart 旧版测试支付参数校验
func PaymentStart(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"product":    []string{"required", "in:coffee,hand,tarot,numerology,birthchart,personality,synastry"},
		"reading_id": []string{"required"},
	}
	return validate(data, rules, nil)
}

// MarkPaidRequest 旧版直接解锁
type MarkPaidRequest struct {
	PaymentID  string `json:"payment_id"`
	PaymentRef string `json:"payment_ref"`
}

// Ref 兼容两个字段名
func (r *MarkPaidRequest) Ref() string {
	if r.PaymentRef != "" {
		return r.PaymentRef
	}
	return r.PaymentID
}

// MarkPaid 不做字段校验，空单号由业务层返回 422
func MarkPaid(data interface{}, c *gin.Context) map[string][]string {
	return nil
}
