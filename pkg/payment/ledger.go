package payment

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"lunaura/app/models/payment"
	"lunaura/app/repositories"
	"lunaura/pkg/lifecycle"
)

// Ledger 支付单的创建与状态变更
type Ledger struct {
	repo     *repositories.PaymentRepository
	unlocker *lifecycle.Unlocker
	now      func() time.Time
}

// NewLedger 创建 Ledger
func NewLedger(repo *repositories.PaymentRepository, unlocker *lifecycle.Unlocker) *Ledger {
	return &Ledger{
		repo:     repo,
		unlocker: unlocker,
		now:      time.Now,
	}
}

// CreateIntent 检查解锁前置条件后创建待校验的支付单
func (l *Ledger) CreateIntent(ctx context.Context, deviceID, readingID, sku string) (*payment.Payment, error) {
	item, ok := Lookup(sku)
	if !ok {
		return nil, lifecycle.E(lifecycle.Unprocessable, "Unknown sku")
	}
	if _, err := l.unlocker.CheckPreconditions(ctx, item.Product, readingID); err != nil {
		return nil, err
	}

	p := &payment.Payment{
		ID:        payment.NewID(),
		DeviceID:  deviceID,
		ReadingID: readingID,
		SKU:       item.SKU,
		Product:   item.Product,
		Amount:    item.Amount,
		Currency:  Currency,
		Status:    payment.StatusPending,
	}
	if err := l.repo.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}
	return p, nil
}

// Get 读取支付单
func (l *Ledger) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := l.repo.Get(ctx, strings.TrimSpace(id))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, lifecycle.Wrap(lifecycle.NotFound, err, "Payment not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load payment")
	}
	return p, nil
}

// MarkVerified 写入商店校验结果，同一平台交易号只能确认一个支付单
func (l *Ledger) MarkVerified(ctx context.Context, p *payment.Payment, platform, txID, token, receipt string) error {
	verifiedAt := l.now().UTC()
	updated := *p
	updated.Status = payment.StatusVerified
	updated.Platform = platform
	updated.TransactionID = txID
	updated.PurchaseToken = token
	updated.ReceiptData = receipt
	updated.VerifiedAt = &verifiedAt

	err := l.repo.MarkVerified(ctx, &updated)
	if errors.Is(err, repositories.ErrDuplicateTransaction) {
		return lifecycle.Wrap(lifecycle.PaymentConflict, err, "Transaction already used for another payment")
	}
	if err != nil {
		return errors.Wrap(err, "mark payment verified")
	}
	*p = updated
	return nil
}
