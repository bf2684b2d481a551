package iap

import (
	"context"
	"strings"

	"lunaura/app/models/payment"
)

// StubVerifier 只做格式校验，不请求商店
type StubVerifier struct {
	platform string
}

// NewStubVerifier 创建格式校验器
func NewStubVerifier(platform string) *StubVerifier {
	return &StubVerifier{platform: platform}
}

// Verify 检查各字段长度
func (s *StubVerifier) Verify(_ context.Context, req Request) (Result, error) {
	if len(strings.TrimSpace(req.SKU)) < 3 {
		return Result{Reason: "invalid sku"}, nil
	}
	if len(strings.TrimSpace(req.TransactionID)) < 3 {
		return Result{Reason: "invalid transaction_id"}, nil
	}
	switch s.platform {
	case payment.PlatformGooglePlay:
		if len(strings.TrimSpace(req.PurchaseToken)) < 6 {
			return Result{Reason: "invalid purchase_token"}, nil
		}
	case payment.PlatformAppStore:
		if len(strings.TrimSpace(req.ReceiptData)) < 20 {
			return Result{Reason: "invalid receipt_data"}, nil
		}
	}
	return Result{OK: true, State: "stub"}, nil
}
