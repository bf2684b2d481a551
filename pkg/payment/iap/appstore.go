package iap

import "context"

// AppStoreVerifier App Store 收据校验
type AppStoreVerifier struct{}

// Verify 非 stub 模式下暂不支持
// TODO: 接入 App Store Server API 的 Get Transaction Info
func (AppStoreVerifier) Verify(context.Context, Request) (Result, error) {
	return Result{}, ErrNotImplemented
}
