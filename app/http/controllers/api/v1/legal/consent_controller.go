// Package legal 法律文本同意接口
package legal

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"lunaura/app/http/middlewares"
	"lunaura/app/models/consent"
	"lunaura/app/repositories"
	"lunaura/app/requests"
	"lunaura/pkg/response"
)

// ConsentController 同意记录控制器
type ConsentController struct {
	consents *repositories.ConsentRepository
}

// NewConsentController 创建控制器
func NewConsentController(consents *repositories.ConsentRepository) *ConsentController {
	return &ConsentController{consents: consents}
}

// Store 追加一条同意记录
// POST /api/v1/legal/consent
func (cc *ConsentController) Store(c *gin.Context) {
	request := requests.ConsentRequest{}
	if ok := requests.Validate(c, &request, requests.Consent); !ok {
		return
	}
	acceptedAt := time.Now().UTC()
	if request.AcceptedAt != nil {
		acceptedAt = request.AcceptedAt.UTC()
	}
	docType := request.DocumentType
	if docType == "" {
		docType = consent.DefaultDocumentType
	}

	record := &consent.Consent{
		DeviceID:        middlewares.DeviceID(c),
		DocumentType:    docType,
		DocumentVersion: request.DocumentVersion,
		AcceptedAt:      acceptedAt,
	}
	if err := cc.consents.Create(c.Request.Context(), record); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Status 最近一次同意记录
// GET /api/v1/legal/consent/status?document_type=terms
func (cc *ConsentController) Status(c *gin.Context) {
	docType := c.DefaultQuery("document_type", consent.DefaultDocumentType)
	record, err := cc.consents.Latest(c.Request.Context(), middlewares.DeviceID(c), docType)
	if errors.Is(err, repositories.ErrNotFound) {
		response.Data(c, gin.H{
			"accepted":      false,
			"document_type": docType,
		})
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, gin.H{
		"accepted":         true,
		"document_type":    record.DocumentType,
		"document_version": record.DocumentVersion,
		"accepted_at":      record.AcceptedAt,
	})
}
