// Package queue 基于 Redis 列表的生成任务队列
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"lunaura/pkg/metrics"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// GenerationTask 解读生成任务，只携带定位信息，内容以数据库为准
type GenerationTask struct {
	ID        string    `json:"id"`
	Product   string    `json:"product"`
	ReadingID string    `json:"reading_id"`
	Claim     int       `json:"claim"`
	CreatedAt time.Time `json:"created_at"`
}

// Options 队列参数
type Options struct {
	Prefix    string
	Timeout   time.Duration // 状态键过期时间
	RateLimit int           // 每秒入队上限
	RateBurst int
}

// QueueService Redis 队列服务
type QueueService struct {
	client      *goredis.Client
	prefix      string
	timeout     time.Duration
	rateLimiter *rate.Limiter
}

// NewQueueService 创建队列服务
func NewQueueService(client *goredis.Client, opts Options) *QueueService {
	if opts.Prefix == "" {
		opts.Prefix = "lunaura:queue"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Hour
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1000
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = opts.RateLimit
	}
	return &QueueService{
		client:      client,
		prefix:      opts.Prefix,
		timeout:     opts.Timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
	}
}

func (q *QueueService) tasksKey() string {
	return fmt.Sprintf("%s:tasks", q.prefix)
}

func (q *QueueService) statusKey(taskID string) string {
	return fmt.Sprintf("%s:status:%s", q.prefix, taskID)
}

// Dispatch 投递生成任务
func (q *QueueService) Dispatch(ctx context.Context, product, readingID string, claim int) error {
	return q.PushTask(ctx, &GenerationTask{
		ID:        uuid.NewString(),
		Product:   product,
		ReadingID: readingID,
		Claim:     claim,
		CreatedAt: time.Now().UTC(),
	})
}

// PushTask 将任务推送到队列
func (q *QueueService) PushTask(ctx context.Context, task *GenerationTask) (err error) {
	start := time.Now()
	defer func() {
		metrics.QueueOp("push", err, time.Since(start))
	}()

	// 应用限流
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit exceeded")
	}

	taskJSON, err := json.Marshal(task)
	if err != nil {
		return errors.Wrap(err, "failed to marshal task")
	}

	// 任务和状态在一个事务里写入
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, q.tasksKey(), taskJSON)
	pipe.Set(ctx, q.statusKey(task.ID), string(TaskPending), q.timeout)
	if _, err = pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to push task")
	}
	return nil
}

// PopTask 从队列中获取任务，等待 wait 后仍为空时返回 nil
func (q *QueueService) PopTask(ctx context.Context, wait time.Duration) (*GenerationTask, error) {
	result, err := q.client.BRPop(ctx, wait, q.tasksKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to pop task from queue")
	}
	if len(result) != 2 {
		return nil, errors.New("invalid result from queue")
	}

	var task GenerationTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal task")
	}
	if !task.CreatedAt.IsZero() {
		metrics.QueueWait(time.Since(task.CreatedAt))
	}
	return &task, nil
}

// UpdateTaskStatus 更新任务状态
func (q *QueueService) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus) error {
	err := q.client.Set(ctx, q.statusKey(taskID), string(status), q.timeout).Err()
	return errors.Wrap(err, "failed to update task status")
}

// GetTaskStatus 获取任务状态，任务不存在时返回空
func (q *QueueService) GetTaskStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	status, err := q.client.Get(ctx, q.statusKey(taskID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get task status")
	}
	return TaskStatus(status), nil
}

// Length 等待中的任务数
func (q *QueueService) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.tasksKey()).Result()
}

// Ping 检查队列服务健康状态
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}
