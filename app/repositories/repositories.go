// Package repositories 数据访问层
package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateTransaction 同一平台交易号已被其他支付单使用
	ErrDuplicateTransaction = errors.New("transaction already used by another payment")
)

// notFound 统一转换 gorm 的未找到错误
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
