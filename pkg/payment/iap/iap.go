// Package iap 应用内购买和第三方支付的商店校验
package iap

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedPlatform 平台未配置
	ErrUnsupportedPlatform = errors.New("iap: platform not configured")
	// ErrNotImplemented 平台校验尚未接入
	ErrNotImplemented = errors.New("iap: verification not implemented")
)

// Request 商店校验参数
type Request struct {
	SKU           string
	TransactionID string
	PurchaseToken string
	ReceiptData   string
}

// Result 商店校验结果
type Result struct {
	OK     bool   `json:"ok"`
	State  string `json:"state,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Verifier 单个平台的校验器
type Verifier interface {
	Verify(ctx context.Context, req Request) (Result, error)
}

// Registry 按平台分发校验
type Registry struct {
	verifiers map[string]Verifier
}

// NewRegistry 创建空的注册表
func NewRegistry() *Registry {
	return &Registry{verifiers: make(map[string]Verifier)}
}

// Register 注册平台校验器
func (r *Registry) Register(platform string, v Verifier) {
	r.verifiers[platform] = v
}

// Has 平台是否已注册
func (r *Registry) Has(platform string) bool {
	_, ok := r.verifiers[platform]
	return ok
}

// Verify 调用对应平台的校验器
func (r *Registry) Verify(ctx context.Context, platform string, req Request) (Result, error) {
	v, ok := r.verifiers[platform]
	if !ok {
		return Result{}, errors.Wrap(ErrUnsupportedPlatform, platform)
	}
	return v.Verify(ctx, req)
}
