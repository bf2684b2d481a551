// Package payment 支付相关接口
package payment

import (
	"github.com/gin-gonic/gin"

	"lunaura/app/http/middlewares"
	"lunaura/app/requests"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/payment"
	"lunaura/pkg/response"
)

// PaymentController 支付控制器
type PaymentController struct {
	service *payment.Service
	guard   *lifecycle.Guard
}

// NewPaymentController 创建支付控制器
func NewPaymentController(service *payment.Service, store *lifecycle.Store) *PaymentController {
	return &PaymentController{
		service: service,
		guard:   lifecycle.NewGuard(store),
	}
}

// CreateIntent 创建待校验的支付单
// POST /api/v1/payments/intent
func (pc *PaymentController) CreateIntent(c *gin.Context) {
	request := requests.PaymentIntentRequest{}
	if ok := requests.Validate(c, &request, requests.PaymentIntent); !ok {
		return
	}
	deviceID := middlewares.DeviceID(c)

	item, ok := payment.Lookup(request.SKU)
	if !ok {
		response.Error(c, lifecycle.E(lifecycle.Unprocessable, "Unknown sku"))
		return
	}
	if _, err := pc.guard.Resolve(c.Request.Context(), item.Product, request.ReadingID, deviceID); err != nil {
		response.Error(c, err)
		return
	}

	p, err := pc.service.Ledger().CreateIntent(c.Request.Context(), deviceID, request.ReadingID, request.SKU)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"payment_id": p.ID,
		"status":     p.Status,
		"sku":        p.SKU,
		"product":    p.Product,
		"reading_id": p.ReadingID,
		"amount":     p.Amount,
		"currency":   p.Currency,
	})
}

// Verify 校验商店购买
// POST /api/v1/payments/verify
func (pc *PaymentController) Verify(c *gin.Context) {
	request := requests.PaymentVerifyRequest{}
	if ok := requests.Validate(c, &request, requests.PaymentVerify); !ok {
		return
	}

	result, err := pc.service.Verify(c.Request.Context(), payment.VerifyInput{
		DeviceID:      middlewares.DeviceID(c),
		PaymentID:     request.PaymentID,
		SKU:           request.SKU,
		Platform:      request.Platform,
		TransactionID: request.TransactionID,
		PurchaseToken: request.PurchaseToken,
		ReceiptData:   request.ReceiptData,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, result)
}

// Show 查询支付单
// GET /api/v1/payments/:id
func (pc *PaymentController) Show(c *gin.Context) {
	p, err := pc.service.Ledger().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if p.DeviceID != middlewares.DeviceID(c) {
		response.Abort404(c, "Payment not found")
		return
	}
	response.Data(c, p)
}

// Start 旧版测试支付，返回 TEST- 单号供 mark-paid 使用
// POST /api/v1/payments/start
func (pc *PaymentController) Start(c *gin.Context) {
	request := requests.PaymentStartRequest{}
	if ok := requests.Validate(c, &request, requests.PaymentStart); !ok {
		return
	}
	result, err := pc.service.StartMock(request.Product, request.ReadingID, request.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, result)
}
