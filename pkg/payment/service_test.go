package payment

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	paymentModel "lunaura/app/models/payment"
	"lunaura/app/models/reading"
	"lunaura/app/repositories"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/payment/iap"
	"lunaura/pkg/testutil"
)

type paymentEnv struct {
	db       *gorm.DB
	store    *lifecycle.Store
	unlocker *lifecycle.Unlocker
	verifier *testutil.FakeVerifier
	service  *Service
}

func newPaymentEnv(t *testing.T) *paymentEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := lifecycle.NewStore(db, lifecycle.DefaultProducts(3, 5))
	unlocker := lifecycle.NewUnlocker(store)
	verifier := testutil.ApproveAll()
	return &paymentEnv{
		db:       db,
		store:    store,
		unlocker: unlocker,
		verifier: verifier,
		service:  NewService(NewLedger(repositories.NewPaymentRepository(db), unlocker), unlocker, verifier),
	}
}

func (env *paymentEnv) intent(t *testing.T, readingID, sku string) *paymentModel.Payment {
	t.Helper()
	p, err := env.service.Ledger().CreateIntent(context.Background(), testutil.DeviceID, readingID, sku)
	require.NoError(t, err)
	return p
}

func googleInput(p *paymentModel.Payment, txID string) VerifyInput {
	return VerifyInput{
		DeviceID:      testutil.DeviceID,
		PaymentID:     p.ID,
		SKU:           p.SKU,
		Platform:      paymentModel.PlatformGooglePlay,
		TransactionID: txID,
		PurchaseToken: "token-abcdef",
	}
}

func TestCreateIntent(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := context.Background()

	_, err := env.service.Ledger().CreateIntent(ctx, testutil.DeviceID, "x", "gold_pack")
	assert.True(t, lifecycle.IsKind(err, lifecycle.Unprocessable))

	noCards := testutil.Tarot(t, env.db)
	_, err = env.service.Ledger().CreateIntent(ctx, testutil.DeviceID, noCards.ID, "fall_tarot_3_149")
	assert.True(t, lifecycle.IsKind(err, lifecycle.PreconditionFailed))

	rec := testutil.Numerology(t, env.db)
	p := env.intent(t, rec.ID, " fall_numerology_299 ")
	assert.Regexp(t, `^PAY-[0-9a-f]{32}$`, p.ID)
	assert.Equal(t, paymentModel.StatusPending, p.Status)
	assert.Equal(t, "numerology", p.Product)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(299)))
	assert.Equal(t, "TRY", p.Currency)
}

func TestVerify_TwiceIsIdempotent(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := context.Background()
	rec := testutil.Numerology(t, env.db)
	p := env.intent(t, rec.ID, "fall_numerology_299")

	first, err := env.service.Verify(ctx, googleInput(p, "GPA.1234-5678"))
	require.NoError(t, err)
	assert.True(t, first.Verified)
	assert.Equal(t, reading.StatusPaid, first.Status)

	second, err := env.service.Verify(ctx, googleInput(p, "GPA.1234-5678"))
	require.NoError(t, err)
	assert.True(t, second.Verified)
	assert.Equal(t, 1, env.verifier.Calls())

	stored, err := env.service.Ledger().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified())
	assert.NotNil(t, stored.VerifiedAt)
}

func TestVerify_VerifiedPaymentWithOtherTransactionConflicts(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := context.Background()
	rec := testutil.Numerology(t, env.db)
	p := env.intent(t, rec.ID, "fall_numerology_299")

	_, err := env.service.Verify(ctx, googleInput(p, "GPA.1111"))
	require.NoError(t, err)

	_, err = env.service.Verify(ctx, googleInput(p, "GPA.2222"))
	assert.True(t, lifecycle.IsKind(err, lifecycle.PaymentConflict))
}

func TestVerify_ReusedTransactionConflicts(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := context.Background()
	first := env.intent(t, testutil.Numerology(t, env.db).ID, "fall_numerology_299")
	otherReading := testutil.Numerology(t, env.db)
	second := env.intent(t, otherReading.ID, "fall_numerology_299")

	_, err := env.service.Verify(ctx, googleInput(first, "GPA.SAME"))
	require.NoError(t, err)

	_, err = env.service.Verify(ctx, googleInput(second, "GPA.SAME"))
	assert.True(t, lifecycle.IsKind(err, lifecycle.PaymentConflict))

	loaded, err := env.store.Load(ctx, lifecycle.Numerology, otherReading.ID)
	require.NoError(t, err)
	assert.False(t, loaded.State().IsPaid)
}

func TestVerify_RejectsBadInput(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := context.Background()
	p := env.intent(t, testutil.Numerology(t, env.db).ID, "fall_numerology_299")

	tests := []struct {
		name   string
		mutate func(in *VerifyInput)
		kind   lifecycle.Kind
	}{
		{"missing device", func(in *VerifyInput) { in.DeviceID = "" }, lifecycle.InvalidInput},
		{"unknown sku", func(in *VerifyInput) { in.SKU = "nope" }, lifecycle.Unprocessable},
		{"unknown payment", func(in *VerifyInput) { in.PaymentID = "PAY-missing" }, lifecycle.NotFound},
		{"other device", func(in *VerifyInput) { in.DeviceID = "device-other-0001" }, lifecycle.Forbidden},
		{"sku of other product", func(in *VerifyInput) { in.SKU = "fall_coffee_49" }, lifecycle.Unprocessable},
		{"empty transaction", func(in *VerifyInput) { in.TransactionID = " " }, lifecycle.Unprocessable},
		{"google without token", func(in *VerifyInput) { in.PurchaseToken = "" }, lifecycle.Unprocessable},
		{"app store without receipt", func(in *VerifyInput) { in.Platform = paymentModel.PlatformAppStore }, lifecycle.Unprocessable},
		{"unknown platform", func(in *VerifyInput) { in.Platform = "amazon" }, lifecycle.Unprocessable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := googleInput(p, "GPA.1")
			tt.mutate(&in)
			_, err := env.service.Verify(ctx, in)
			assert.Equal(t, tt.kind, lifecycle.KindOf(err))
		})
	}
	assert.Equal(t, 0, env.verifier.Calls())
}

func TestVerify_StoreOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		verifier *testutil.FakeVerifier
		kind     lifecycle.Kind
	}{
		{"declined", &testutil.FakeVerifier{Result: iap.Result{OK: false, Reason: "canceled"}}, lifecycle.PaymentRejected},
		{"not implemented", &testutil.FakeVerifier{Err: iap.ErrNotImplemented}, lifecycle.NotImplemented},
		{"not configured", &testutil.FakeVerifier{Err: errors.Wrap(iap.ErrUnsupportedPlatform, "google_play")}, lifecycle.Unprocessable},
		{"store down", &testutil.FakeVerifier{Err: errors.New("dial tcp: i/o timeout")}, lifecycle.ServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newPaymentEnv(t)
			svc := NewService(env.service.Ledger(), env.unlocker, tt.verifier)
			rec := testutil.Numerology(t, env.db)
			p := env.intent(t, rec.ID, "fall_numerology_299")

			_, err := svc.Verify(context.Background(), googleInput(p, "GPA.9"))

			assert.Equal(t, tt.kind, lifecycle.KindOf(err))
			loaded, err := env.store.Load(context.Background(), lifecycle.Numerology, rec.ID)
			require.NoError(t, err)
			assert.False(t, loaded.State().IsPaid)
		})
	}
}

// 塔罗完整流程：创建、选牌、下单、校验、生成
func TestTarotScenario(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := context.Background()
	gen := testutil.NewFakeGenerator("Ay kartı ters geldi. Belirsizlik yakında dağılacak.")
	engine := lifecycle.NewEngine(env.store, testutil.AcceptAll(), gen)

	rec := testutil.Tarot(t, env.db)

	_, err := env.service.Ledger().CreateIntent(ctx, testutil.DeviceID, rec.ID, "fall_tarot_3_149")
	require.True(t, lifecycle.IsKind(err, lifecycle.PreconditionFailed))

	_, err = engine.SelectCards(ctx, rec, testutil.ThreeCards())
	require.NoError(t, err)

	p := env.intent(t, rec.ID, "fall_tarot_3_149")
	res, err := env.service.Verify(ctx, googleInput(p, "GPA.TAROT"))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Tarot, res.Product)
	assert.Equal(t, reading.StatusPaid, res.Status)

	loaded, err := env.store.Load(ctx, lifecycle.Tarot, rec.ID)
	require.NoError(t, err)
	done, err := engine.Generate(ctx, lifecycle.Tarot, loaded)
	require.NoError(t, err)
	assert.Equal(t, reading.StatusCompleted, done.State().Status)
	assert.NotEmpty(t, done.State().ResultText)
	assert.Equal(t, p.ID, done.State().PaymentRef)
	assert.Equal(t, 1, gen.Calls())
}

func TestStartMock(t *testing.T) {
	env := newPaymentEnv(t)
	amount := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	hand, err := env.service.StartMock(lifecycle.Hand, "r1", nil)
	require.NoError(t, err)
	assert.True(t, hand.Amount.Equal(decimal.NewFromInt(39)))
	assert.Regexp(t, `^TEST-[0-9a-f]{32}$`, hand.PaymentID)
	assert.Equal(t, hand.PaymentID, hand.PaymentRef)
	assert.Equal(t, "mock", hand.Provider)
	assert.Equal(t, "success", hand.Status)

	_, err = env.service.StartMock(lifecycle.Coffee, "r1", nil)
	assert.True(t, lifecycle.IsKind(err, lifecycle.Unprocessable))

	_, err = env.service.StartMock(lifecycle.Tarot, "r1", amount(100))
	assert.True(t, lifecycle.IsKind(err, lifecycle.Unprocessable))

	tarot, err := env.service.StartMock(lifecycle.Tarot, "r1", amount(199))
	require.NoError(t, err)
	assert.True(t, tarot.Amount.Equal(decimal.NewFromInt(199)))

	other, err := env.service.StartMock(lifecycle.Synastry, "r1", nil)
	require.NoError(t, err)
	assert.True(t, other.Amount.IsZero())
}
