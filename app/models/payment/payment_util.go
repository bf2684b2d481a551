package payment

import (
	"strings"

	"github.com/google/uuid"
)

// 支付状态
const (
	StatusPending  = "pending"  // 待校验
	StatusVerified = "verified" // 商店已确认
)

// 支付平台
const (
	PlatformGooglePlay = "google_play"
	PlatformAppStore   = "app_store"
	PlatformAlipay     = "alipay"
	PlatformWechatPay  = "wechat_pay"
)

// Platforms 支持的平台
var Platforms = []string{PlatformGooglePlay, PlatformAppStore, PlatformAlipay, PlatformWechatPay}

// NewID 生成支付单号 PAY-<hex>
func NewID() string {
	return "PAY-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsVerified 商店是否已确认
func (p *Payment) IsVerified() bool {
	return p.Status == StatusVerified
}
