package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"lunaura/pkg/logger"
)

// Sweeper 定时把过期的 processing 记录退回 paid
type Sweeper struct {
	store      *Store
	staleAfter time.Duration
	now        func() time.Time
	cron       *cron.Cron
}

// NewSweeper 创建 Sweeper
func NewSweeper(store *Store, staleAfter time.Duration) *Sweeper {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Sweeper{
		store:      store,
		staleAfter: staleAfter,
		now:        time.Now,
		cron:       cron.New(),
	}
}

// Start 按 cron 表达式启动定时任务，如 "@every 1m"
func (s *Sweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.InfoString("Lifecycle", "Sweeper", "过期任务清理已启动: "+schedule)
	return nil
}

// Stop 停止定时任务，等待正在执行的清理结束
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep 执行一次清理，返回回退的记录数
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	staleBefore := s.now().UTC().Add(-s.staleAfter)
	var total int64
	for _, kind := range s.store.Kinds() {
		n, err := s.store.Repo(kind).ReleaseStale(ctx, staleBefore)
		if err != nil {
			logger.ErrorString("Lifecycle", "Sweeper", fmt.Sprintf("清理 %s 失败: %v", kind, err))
			continue
		}
		if n > 0 {
			logger.WarnString("Lifecycle", "Sweeper", fmt.Sprintf("%s 回退 %d 条过期的生成任务", kind, n))
		}
		total += n
	}
	return total
}
