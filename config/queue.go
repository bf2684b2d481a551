package config

import "lunaura/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			// 任务派发方式：redis（默认）、memory（进程内 goroutine）、sync（同步执行）
			"driver":       config.Env("QUEUE_DRIVER", "redis"),
			"rate_limit":   config.Env("QUEUE_RATE_LIMIT", 12),
			"rate_burst":   config.Env("QUEUE_RATE_BURST", 50),
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 4),
			// 单个任务的执行上限（秒），必须小于 cron.stale_seconds
			"task_timeout": config.Env("QUEUE_TASK_TIMEOUT", 110),
		}
	})
}
