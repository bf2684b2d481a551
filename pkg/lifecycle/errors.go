package lifecycle

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind 业务错误类别
type Kind int

const (
	KindInternal Kind = iota
	NotFound
	InvalidInput
	ValidationRejected
	ServiceUnavailable
	PreconditionFailed
	PaymentConflict
	PaymentRequired
	PaymentRejected
	Forbidden
	GenerationFailed
	Unprocessable
	NotImplemented
)

var kindStatus = map[Kind]int{
	NotFound:           http.StatusNotFound,
	InvalidInput:       http.StatusBadRequest,
	ValidationRejected: http.StatusBadRequest,
	ServiceUnavailable: http.StatusServiceUnavailable,
	PreconditionFailed: http.StatusConflict,
	PaymentConflict:    http.StatusConflict,
	PaymentRequired:    http.StatusPaymentRequired,
	PaymentRejected:    http.StatusPaymentRequired,
	Forbidden:          http.StatusForbidden,
	GenerationFailed:   http.StatusInternalServerError,
	Unprocessable:      http.StatusUnprocessableEntity,
	NotImplemented:     http.StatusNotImplemented,
}

// Error 业务错误，Message 直接返回给客户端
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus 对应的 HTTP 状态码
func (e *Error) HTTPStatus() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage 返回给客户端的提示
func (e *Error) PublicMessage() string {
	return e.Message
}

// E 创建业务错误
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 创建带原因的业务错误
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 取错误类别，非业务错误返回 KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误类别
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
