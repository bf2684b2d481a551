package repositories

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lunaura/app/models/payment"
	"lunaura/pkg/testutil"
)

func newPayment(t *testing.T, repo *PaymentRepository) *payment.Payment {
	t.Helper()
	p := &payment.Payment{
		ID:        payment.NewID(),
		DeviceID:  testutil.DeviceID,
		ReadingID: "reading-1",
		SKU:       "fall_coffee_49",
		Product:   "coffee",
		Amount:    decimal.RequireFromString("49.00"),
		Currency:  "TRY",
		Status:    payment.StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func verified(p *payment.Payment, txID string) *payment.Payment {
	v := *p
	v.Status = payment.StatusVerified
	v.Platform = payment.PlatformGooglePlay
	v.TransactionID = txID
	return &v
}

// hideVerifiedPayments 让事务内的重复检查读不到任何支付单，
// 相当于两个并发确认都通过了检查
func hideVerifiedPayments(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Query().Before("gorm:query").Register("test:hide_payments", func(tx *gorm.DB) {
		if tx.Statement.Table == "payments" {
			tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
		}
	})
	require.NoError(t, err)
}

func TestPaymentRepository_MarkVerifiedRejectsReusedTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	first := newPayment(t, repo)
	second := newPayment(t, repo)

	require.NoError(t, repo.MarkVerified(ctx, verified(first, "GPA.0001")))
	assert.ErrorIs(t, repo.MarkVerified(ctx, verified(second, "GPA.0001")), ErrDuplicateTransaction)

	// 同一个支付单重复确认不算冲突
	assert.NoError(t, repo.MarkVerified(ctx, verified(first, "GPA.0001")))
}

func TestPaymentRepository_UniqueIndexBacksTheCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	first := newPayment(t, repo)
	second := newPayment(t, repo)
	require.NoError(t, repo.MarkVerified(ctx, verified(first, "GPA.0002")))

	hideVerifiedPayments(t, db)
	err := repo.MarkVerified(ctx, verified(second, "GPA.0002"))
	assert.ErrorIs(t, err, ErrDuplicateTransaction)

	var verifiedCount int64
	require.NoError(t, db.Raw("SELECT count(*) FROM payments WHERE status = ?", payment.StatusVerified).
		Scan(&verifiedCount).Error)
	assert.Equal(t, int64(1), verifiedCount)
}

func TestPaymentRepository_PendingRowsMayShareTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)

	first := newPayment(t, repo)
	second := newPayment(t, repo)
	for _, p := range []*payment.Payment{first, second} {
		p.Platform = payment.PlatformGooglePlay
		p.TransactionID = "GPA.0003"
		require.NoError(t, db.Save(p).Error)
	}
}
