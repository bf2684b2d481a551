package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lunaura/app/models/payment"
)

// PaymentRepository 支付记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

// Create 创建支付记录
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Get 根据支付单号获取支付记录
func (r *PaymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// MarkVerified 在一个事务中检查交易号唯一并写入校验结果
// 并发确认时由 idx_payment_verified_tx 兜底
func (r *PaymentRepository) MarkVerified(ctx context.Context, p *payment.Payment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		err := tx.Model(&payment.Payment{}).
			Where("platform = ? AND transaction_id = ? AND status = ? AND id <> ?",
				p.Platform, p.TransactionID, payment.StatusVerified, p.ID).
			Count(&dup).Error
		if err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateTransaction
		}
		return errors.Wrap(tx.Save(p).Error, "save payment")
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTransaction
	}
	return err
}

// Count 支付记录总数
func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&payment.Payment{}).Count(&total).Error
	return total, err
}
