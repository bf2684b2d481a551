package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lunaura/pkg/logger"
	"lunaura/pkg/metrics"
)

// Handler 执行一个生成任务，claim 为投递时的认领编号
type Handler interface {
	Run(ctx context.Context, product, readingID string, claim int) error
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	TaskTimeout     time.Duration // 单个任务的执行上限
	PollWait        time.Duration // 空队列时 BRPOP 的等待时间
	ShutdownTimeout time.Duration // 关闭超时时间
}

// Worker 队列工作器组
type Worker struct {
	queueService *QueueService
	handler      Handler
	config       WorkerConfig
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewWorker 创建新的工作器组
func NewWorker(qs *QueueService, handler Handler, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 5 * time.Minute
	}
	if config.PollWait <= 0 {
		config.PollWait = 2 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService: qs,
		handler:      handler,
		config:       config,
		stopChan:     make(chan struct{}),
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
		}

		if err := w.processNextTask(); err != nil {
			logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
			// 错误恢复延迟
			select {
			case <-w.stopChan:
			case <-time.After(time.Second):
			}
		}
	}
}

// processNextTask 取一个任务并执行，队列为空时直接返回
func (w *Worker) processNextTask() error {
	task, err := w.queueService.PopTask(context.Background(), w.config.PollWait)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	w.handleTask(task)
	return nil
}

// handleTask 执行任务，失败不重新入队，记录会回到 paid 由客户端重试
func (w *Worker) handleTask(task *GenerationTask) {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	logger.LogIf(w.queueService.UpdateTaskStatus(ctx, task.ID, TaskRunning))

	err := w.handler.Run(ctx, task.Product, task.ReadingID, task.Claim)
	metrics.QueueOp("process", err, time.Since(start))

	status := TaskCompleted
	if err != nil {
		status = TaskFailed
		logger.WarnString("Worker", "Task", fmt.Sprintf("任务 %s (%s/%s) 失败: %v", task.ID, task.Product, task.ReadingID, err))
	}
	logger.LogIf(w.queueService.UpdateTaskStatus(context.WithoutCancel(ctx), task.ID, status))
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})

	// 等待所有工作器完成
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
