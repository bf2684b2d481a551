package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"lunaura/app/models/reading"
	"lunaura/pkg/logger"
)

// TestRefPrefix 旧版测试支付单号前缀
const TestRefPrefix = "TEST-"

// Unlocker 付款后解锁记录
type Unlocker struct {
	store *Store
}

// NewUnlocker 创建 Unlocker
func NewUnlocker(store *Store) *Unlocker {
	return &Unlocker{store: store}
}

// CheckPreconditions 塔罗需要已选牌，咖啡和手相需要已上传图片
func (u *Unlocker) CheckPreconditions(ctx context.Context, kind, readingID string) (reading.Record, error) {
	p, _, err := u.store.Product(kind)
	if err != nil {
		return nil, err
	}
	rec, err := u.store.Load(ctx, kind, readingID)
	if err != nil {
		return nil, err
	}
	if err := checkPrecondition(p, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func checkPrecondition(p Product, rec reading.Record) error {
	if p.satisfied(rec) {
		return nil
	}
	switch p.Precondition {
	case NeedsCards:
		return E(PreconditionFailed, "Please select your cards before payment")
	case NeedsAssets:
		return E(PreconditionFailed, "Please upload your photos before payment")
	}
	return E(PreconditionFailed, "Reading is not ready for payment")
}

// Unlock 标记已付款，已付款或已有结果时直接返回
func (u *Unlocker) Unlock(ctx context.Context, kind, readingID, paymentRef string) (reading.Record, error) {
	p, repo, err := u.store.Product(kind)
	if err != nil {
		return nil, err
	}
	rec, err := u.store.Load(ctx, kind, readingID)
	if err != nil {
		return nil, err
	}
	st := rec.State()
	if st.IsPaid || st.HasResult() {
		return rec, nil
	}
	if err := checkPrecondition(p, rec); err != nil {
		return nil, err
	}

	changed, err := repo.MarkPaid(ctx, readingID, paymentRef)
	if err != nil {
		return nil, errors.Wrapf(err, "unlock %s/%s", kind, readingID)
	}
	if changed {
		logger.InfoString("Lifecycle", "Unlock", fmt.Sprintf("记录 %s/%s 已解锁 支付单:%s", kind, readingID, paymentRef))
	}
	return u.store.Load(ctx, kind, readingID)
}

// MarkPaid 旧版直接解锁接口，只接受测试单号
func (u *Unlocker) MarkPaid(ctx context.Context, kind, readingID, ref string) (reading.Record, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, E(Unprocessable, "payment_id is required")
	}
	if !strings.HasPrefix(ref, TestRefPrefix) {
		return nil, E(Forbidden, "Only test payments can be marked paid directly")
	}
	return u.Unlock(ctx, kind, readingID, ref)
}
