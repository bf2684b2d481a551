package lifecycle

import (
	"context"
	"fmt"
	"time"

	"lunaura/pkg/logger"
)

// InlineDispatcher 同步执行生成任务
type InlineDispatcher struct {
	engine *Engine
}

// NewInlineDispatcher 创建同步投递
func NewInlineDispatcher(engine *Engine) InlineDispatcher {
	return InlineDispatcher{engine: engine}
}

// Dispatch 直接执行并返回执行结果
func (d InlineDispatcher) Dispatch(ctx context.Context, product, readingID string, claim int) error {
	return d.engine.Run(ctx, product, readingID, claim)
}

// AsyncDispatcher 在独立的 goroutine 中执行生成任务
type AsyncDispatcher struct {
	engine  *Engine
	timeout time.Duration
}

// NewAsyncDispatcher 创建异步投递，timeout 为单个任务的执行上限
func NewAsyncDispatcher(engine *Engine, timeout time.Duration) AsyncDispatcher {
	return AsyncDispatcher{engine: engine, timeout: timeout}
}

// Dispatch 立即返回，任务与请求的生命周期分离
func (d AsyncDispatcher) Dispatch(ctx context.Context, product, readingID string, claim int) error {
	base := context.WithoutCancel(ctx)
	go func() {
		runCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()
		if err := d.engine.Run(runCtx, product, readingID, claim); err != nil {
			logger.WarnString("Lifecycle", "Async", fmt.Sprintf("异步生成失败 %s/%s: %v", product, readingID, err))
		}
	}()
	return nil
}
