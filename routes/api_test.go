package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"lunaura/app/http/controllers/api/v1/health"
	"lunaura/app/http/middlewares"
	paymentModel "lunaura/app/models/payment"
	"lunaura/app/repositories"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/payment"
	"lunaura/pkg/payment/iap"
	"lunaura/pkg/storage"
	"lunaura/pkg/testutil"
)

const generatedText = "Kartların yeni bir başlangıcı işaret ediyor. Önündeki iki hafta sakin ve verimli geçecek."

type apiEnv struct {
	router *gin.Engine
	gen    *testutil.FakeGenerator
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	store := lifecycle.NewStore(db, lifecycle.DefaultProducts(1, 3))
	validator := testutil.AcceptAll()
	gen := testutil.NewFakeGenerator(generatedText)
	engine := lifecycle.NewEngine(store, validator, gen)
	unlocker := lifecycle.NewUnlocker(store)

	verifiers := iap.NewRegistry()
	for _, platform := range paymentModel.Platforms {
		verifiers.Register(platform, iap.NewStubVerifier(platform))
	}
	paymentRepo := repositories.NewPaymentRepository(db)

	router := gin.New()
	RegisterAPIRoutes(router, Deps{
		Store:       store,
		Intake:      lifecycle.NewIntake(store, files, validator),
		Unlocker:    unlocker,
		Engine:      engine,
		Payments:    payment.NewService(payment.NewLedger(paymentRepo, unlocker), unlocker, verifiers),
		PaymentRepo: paymentRepo,
		Profiles:    repositories.NewProfileRepository(db),
		Consents:    repositories.NewConsentRepository(db),
		Health: map[string]health.Checker{
			"database": func(context.Context) error { return nil },
			"redis":    nil,
		},
		AdminToken:   "admin-secret",
		MaxFileBytes: 1 << 20,
	})
	return &apiEnv{router: router, gen: gen}
}

func (env *apiEnv) do(t *testing.T, method, path, device string, body interface{}) (int, gjson.Result) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if device != "" {
		req.Header.Set(middlewares.DeviceHeader, device)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w.Code, gjson.Parse(w.Body.String())
}

func TestDeviceHeaderRequired(t *testing.T) {
	env := newAPIEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/numerology/start", "", gin.H{"name": "Deniz", "birth_date": "1990-04-12"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body.Get("status").String())

	code, _ = env.do(t, http.MethodPost, "/api/v1/numerology/start", "short", gin.H{"name": "Deniz", "birth_date": "1990-04-12"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNumerologyFlow(t *testing.T) {
	env := newAPIEnv(t)
	device := testutil.DeviceID

	code, body := env.do(t, http.MethodPost, "/api/v1/numerology/start", device, gin.H{"name": "Deniz", "birth_date": "1990-04-12"})
	require.Equal(t, http.StatusCreated, code)
	id := body.Get("data.id").String()
	require.NotEmpty(t, id)
	assert.Equal(t, "started", body.Get("data.status").String())
	assert.False(t, body.Get("data.is_paid").Bool())

	code, _ = env.do(t, http.MethodGet, "/api/v1/numerology/"+id, "device-other-0002", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/generate", device, nil)
	assert.Equal(t, http.StatusPaymentRequired, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/mark-paid", device, gin.H{"payment_id": "PAY-123"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/mark-paid", device, gin.H{"payment_id": "TEST-123"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Get("data.is_paid").Bool())

	code, body = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/generate", device, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", body.Get("data.status").String())
	assert.Equal(t, generatedText, body.Get("data.result_text").String())

	// 已有结果时不再生成
	code, _ = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/generate", device, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.gen.Calls())

	code, _ = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/rate", device, gin.H{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodPost, "/api/v1/numerology/"+id+"/rate", device, gin.H{"rating": 4})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(4), body.Get("data.rating").Int())
}

func TestTarotPaymentFlow(t *testing.T) {
	env := newAPIEnv(t)
	device := testutil.DeviceID

	code, body := env.do(t, http.MethodPost, "/api/v1/tarot/start", device, gin.H{"name": "Ayşe", "question": "İş?"})
	require.Equal(t, http.StatusCreated, code)
	id := body.Get("data.id").String()
	assert.Equal(t, "three", body.Get("data.spread_type").String())

	intent := gin.H{"reading_id": id, "sku": "fall_tarot_3_149"}
	code, _ = env.do(t, http.MethodPost, "/api/v1/payments/intent", device, intent)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/tarot/"+id+"/select-cards", device, gin.H{"cards": []string{"major_18_moon|R"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodPost, "/api/v1/tarot/"+id+"/select-cards", device, gin.H{"cards": testutil.ThreeCards()})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "selected", body.Get("data.status").String())

	code, body = env.do(t, http.MethodPost, "/api/v1/payments/intent", device, intent)
	require.Equal(t, http.StatusCreated, code)
	paymentID := body.Get("data.payment_id").String()
	assert.True(t, strings.HasPrefix(paymentID, "PAY-"))
	assert.Equal(t, "TRY", body.Get("data.currency").String())

	code, _ = env.do(t, http.MethodGet, "/api/v1/payments/"+paymentID, "device-other-0002", nil)
	assert.Equal(t, http.StatusNotFound, code)

	verify := gin.H{
		"payment_id":     paymentID,
		"platform":       "google_play",
		"sku":            "fall_tarot_3_149",
		"transaction_id": "GPA.3312-5521",
		"purchase_token": "token-abcdef",
	}
	code, body = env.do(t, http.MethodPost, "/api/v1/payments/verify", device, verify)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Get("data.verified").Bool())
	assert.Equal(t, id, body.Get("data.reading_id").String())

	code, body = env.do(t, http.MethodGet, "/api/v1/tarot/"+id, device, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Get("data.is_paid").Bool())

	code, body = env.do(t, http.MethodPost, "/api/v1/tarot/"+id+"/generate", device, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", body.Get("data.status").String())

	verify["platform"] = "paypal"
	code, _ = env.do(t, http.MethodPost, "/api/v1/payments/verify", device, verify)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestCoffeeUpload(t *testing.T) {
	env := newAPIEnv(t)
	device := testutil.DeviceID

	code, body := env.do(t, http.MethodPost, "/api/v1/coffee/start", device, gin.H{"topic": "Aşk"})
	require.Equal(t, http.StatusCreated, code)
	id := body.Get("data.id").String()
	assert.Equal(t, "Misafir", body.Get("data.name").String())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "cup.jpg")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xFF}, 512))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coffee/"+id+"/upload-images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middlewares.DeviceHeader, device)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	res := gjson.Parse(w.Body.String())
	assert.Equal(t, "photos_uploaded", res.Get("data.status").String())
	assert.Len(t, res.Get("data.images").Array(), 1)
}

func TestProfileAndConsent(t *testing.T) {
	env := newAPIEnv(t)
	device := testutil.DeviceID

	code, body := env.do(t, http.MethodGet, "/api/v1/profile/me", device, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, device, body.Get("data.device_id").String())

	code, _ = env.do(t, http.MethodGet, "/api/v1/profile/history?type=astrology", device, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodGet, "/api/v1/legal/consent/status", device, nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, body.Get("data.accepted").Bool())
}

func TestAdminAndHealth(t *testing.T) {
	env := newAPIEnv(t)

	code, _ := env.do(t, http.MethodGet, "/api/v1/admin/db-stats", "", nil)
	assert.Equal(t, http.StatusForbidden, code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/db-stats", nil)
	req.Header.Set("X-Admin-Token", "admin-secret")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "data.tables.payments").Exists())

	code, _ = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
