package openai

import (
	"context"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	// ErrQuotaExceeded 账户额度用尽
	ErrQuotaExceeded = errors.New("openai: quota exceeded")
	// ErrUnavailable 超时、连接失败、5xx 或 429
	ErrUnavailable = errors.New("openai: service unavailable")
	// ErrOther 其他错误
	ErrOther = errors.New("openai: request failed")
	// ErrEmptyOutput 返回内容为空
	ErrEmptyOutput = errors.New("openai: empty output")
)

// IsTemporary 额度或可用性问题，稍后可重试
func IsTemporary(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrUnavailable)
}

// classifyTransport 网络层错误归类
func classifyTransport(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return errors.Wrap(ErrUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(ErrUnavailable, "timeout")
	case errors.As(err, &netErr):
		return errors.Wrap(ErrUnavailable, netErr.Error())
	default:
		// resty 把连接失败包成普通错误
		return errors.Wrap(ErrUnavailable, err.Error())
	}
}

// classifyStatus HTTP 状态码归类
func classifyStatus(status int, body []byte) error {
	code := gjson.GetBytes(body, "error.code").String()
	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case code == "insufficient_quota":
		return errors.Wrap(ErrQuotaExceeded, msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.Wrapf(ErrUnavailable, "status %d: %s", status, msg)
	default:
		return errors.Wrapf(ErrOther, "status %d: %s", status, msg)
	}
}
