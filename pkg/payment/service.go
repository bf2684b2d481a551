package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"lunaura/app/models/payment"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/logger"
	"lunaura/pkg/payment/iap"
)

// StoreVerifier 按平台校验购买
type StoreVerifier interface {
	Verify(ctx context.Context, platform string, req iap.Request) (iap.Result, error)
}

// Service 支付校验流程
type Service struct {
	ledger   *Ledger
	unlocker *lifecycle.Unlocker
	verifier StoreVerifier
}

// NewService 创建 Service
func NewService(ledger *Ledger, unlocker *lifecycle.Unlocker, verifier StoreVerifier) *Service {
	return &Service{
		ledger:   ledger,
		unlocker: unlocker,
		verifier: verifier,
	}
}

// Ledger 支付单操作
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// VerifyInput 客户端提交的购买凭证
type VerifyInput struct {
	DeviceID      string
	PaymentID     string
	SKU           string
	Platform      string
	TransactionID string
	PurchaseToken string
	ReceiptData   string
}

// VerifyResult 校验结果
type VerifyResult struct {
	Verified  bool   `json:"verified"`
	PaymentID string `json:"payment_id"`
	Product   string `json:"product"`
	ReadingID string `json:"reading_id"`
	Status    string `json:"status"`
}

// Verify 校验商店购买并解锁记录
// 已确认的支付单重复提交时不再请求商店
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	if strings.TrimSpace(in.DeviceID) == "" {
		return nil, lifecycle.E(lifecycle.InvalidInput, "Missing X-Device-Id header")
	}
	item, ok := Lookup(in.SKU)
	if !ok {
		return nil, lifecycle.E(lifecycle.Unprocessable, "Unknown sku")
	}

	p, err := s.ledger.Get(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.DeviceID != in.DeviceID {
		return nil, lifecycle.E(lifecycle.Forbidden, "Payment belongs to another device")
	}
	if p.SKU != item.SKU || p.Product != item.Product {
		return nil, lifecycle.E(lifecycle.Unprocessable, "SKU does not match the payment")
	}

	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" {
		return nil, lifecycle.E(lifecycle.Unprocessable, "transaction_id is required")
	}
	switch in.Platform {
	case payment.PlatformGooglePlay:
		if strings.TrimSpace(in.PurchaseToken) == "" {
			return nil, lifecycle.E(lifecycle.Unprocessable, "purchase_token is required for google_play")
		}
	case payment.PlatformAppStore:
		if strings.TrimSpace(in.ReceiptData) == "" {
			return nil, lifecycle.E(lifecycle.Unprocessable, "receipt_data is required for app_store")
		}
	case payment.PlatformAlipay, payment.PlatformWechatPay:
	default:
		return nil, lifecycle.E(lifecycle.Unprocessable, "Unsupported platform")
	}

	if _, err := s.unlocker.CheckPreconditions(ctx, p.Product, p.ReadingID); err != nil {
		return nil, err
	}

	if p.IsVerified() {
		if p.TransactionID != txID {
			return nil, lifecycle.E(lifecycle.PaymentConflict, "Payment already verified with another transaction")
		}
		// 重复提交，补一次解锁即可
		status := ""
		rec, err := s.unlocker.Unlock(ctx, p.Product, p.ReadingID, p.ID)
		if err != nil {
			logger.WarnString("Payment", "Verify", fmt.Sprintf("重复校验时解锁失败 %s: %v", p.ID, err))
		} else {
			status = rec.State().Status
		}
		return s.result(p, status), nil
	}

	res, err := s.verifier.Verify(ctx, in.Platform, iap.Request{
		SKU:           item.SKU,
		TransactionID: txID,
		PurchaseToken: strings.TrimSpace(in.PurchaseToken),
		ReceiptData:   strings.TrimSpace(in.ReceiptData),
	})
	if err != nil {
		return nil, mapVerifierError(err)
	}
	if !res.OK {
		logger.WarnString("Payment", "Verify", fmt.Sprintf("商店校验未通过 %s 平台:%s 原因:%s", p.ID, in.Platform, res.Reason))
		return nil, lifecycle.E(lifecycle.PaymentRejected, "Purchase could not be verified")
	}

	if err := s.ledger.MarkVerified(ctx, p, in.Platform, txID, in.PurchaseToken, in.ReceiptData); err != nil {
		return nil, err
	}
	rec, err := s.unlocker.Unlock(ctx, p.Product, p.ReadingID, p.ID)
	if err != nil {
		return nil, err
	}
	logger.InfoString("Payment", "Verify", fmt.Sprintf("支付单 %s 已确认 平台:%s 交易号:%s", p.ID, in.Platform, txID))
	return s.result(p, rec.State().Status), nil
}

func (s *Service) result(p *payment.Payment, status string) *VerifyResult {
	return &VerifyResult{
		Verified:  true,
		PaymentID: p.ID,
		Product:   p.Product,
		ReadingID: p.ReadingID,
		Status:    status,
	}
}

func mapVerifierError(err error) error {
	switch {
	case errors.Is(err, iap.ErrUnsupportedPlatform):
		return lifecycle.Wrap(lifecycle.Unprocessable, err, "Platform is not configured")
	case errors.Is(err, iap.ErrNotImplemented):
		return lifecycle.Wrap(lifecycle.NotImplemented, err, "Verification for this platform is not available yet")
	default:
		return lifecycle.Wrap(lifecycle.ServiceUnavailable, err, "Store verification is temporarily unavailable")
	}
}

// 旧版测试支付允许的塔罗金额
var mockTarotAmounts = []int64{149, 199, 250}

// MockStart 旧版测试支付单
type MockStart struct {
	Status     string          `json:"status"`
	PaymentID  string          `json:"payment_id"`
	PaymentRef string          `json:"payment_ref"`
	Provider   string          `json:"provider"`
	Product    string          `json:"product"`
	ReadingID  string          `json:"reading_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// StartMock 生成 TEST- 前缀的测试支付单，不落库
func (s *Service) StartMock(product, readingID string, amount *decimal.Decimal) (*MockStart, error) {
	var value decimal.Decimal
	switch product {
	case lifecycle.Hand:
		value = decimal.NewFromInt(39)
	case lifecycle.Coffee:
		if amount == nil {
			return nil, lifecycle.E(lifecycle.Unprocessable, "amount is required")
		}
		value = *amount
	case lifecycle.Tarot:
		if amount == nil || !allowedTarotAmount(*amount) {
			return nil, lifecycle.E(lifecycle.Unprocessable, "amount must be one of 149, 199, 250")
		}
		value = *amount
	default:
		// 其他产品不强制金额
		if amount != nil {
			value = *amount
		}
	}

	ref := lifecycle.TestRefPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")

	return &MockStart{
		Status:     "success",
		PaymentID:  ref,
		PaymentRef: ref,
		Provider:   "mock",
		Product:    product,
		ReadingID:  readingID,
		Amount:     value,
		Currency:   Currency,
	}, nil
}

func allowedTarotAmount(amount decimal.Decimal) bool {
	for _, v := range mockTarotAmounts {
		if amount.Equal(decimal.NewFromInt(v)) {
			return true
		}
	}
	return false
}
