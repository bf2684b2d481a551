package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"lunaura/app/models/reading"
	"lunaura/pkg/openai"
	"lunaura/pkg/payment/iap"
)

// FakeValidator 图片校验替身
type FakeValidator struct {
	Verdict openai.Verdict
	Err     error
	calls   atomic.Int32
}

// AcceptAll 总是通过
func AcceptAll() *FakeValidator {
	return &FakeValidator{Verdict: openai.Verdict{OK: true, Confidence: 0.9}}
}

// Validate 实现校验接口
func (f *FakeValidator) Validate(_ context.Context, _ string, _ []string) (openai.Verdict, error) {
	f.calls.Add(1)
	return f.Verdict, f.Err
}

// Calls 调用次数
func (f *FakeValidator) Calls() int {
	return int(f.calls.Load())
}

// FakeGenerator 生成替身，Delay 用于制造并发窗口
type FakeGenerator struct {
	Text  string
	Delay time.Duration

	mu    sync.Mutex
	errs  []error
	calls atomic.Int32
}

// NewFakeGenerator 固定返回 text
func NewFakeGenerator(text string) *FakeGenerator {
	return &FakeGenerator{Text: text}
}

// FailNext 下一次调用返回 err
func (f *FakeGenerator) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

// Generate 实现生成接口
func (f *FakeGenerator) Generate(ctx context.Context, _ reading.Record, _ int) (string, error) {
	f.calls.Add(1)
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return f.Text, nil
}

// Calls 调用次数
func (f *FakeGenerator) Calls() int {
	return int(f.calls.Load())
}

// FakeVerifier 商店校验替身
type FakeVerifier struct {
	Result iap.Result
	Err    error
	calls  atomic.Int32
}

// ApproveAll 总是通过
func ApproveAll() *FakeVerifier {
	return &FakeVerifier{Result: iap.Result{OK: true, State: "purchased"}}
}

// Verify 实现商店校验接口
func (f *FakeVerifier) Verify(_ context.Context, _ string, _ iap.Request) (iap.Result, error) {
	f.calls.Add(1)
	return f.Result, f.Err
}

// Calls 调用次数
func (f *FakeVerifier) Calls() int {
	return int(f.calls.Load())
}
