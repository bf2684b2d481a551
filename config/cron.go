package config

import "lunaura/pkg/config"

func init() {
	config.Add("cron", func() map[string]interface{} {
		return map[string]interface{}{
			// 超时的 processing 记录回退为 paid
			"sweep_schedule": config.Env("CRON_SWEEP_SCHEDULE", "@every 1m"),
			// 生成任务认领的过期时间，单位秒
			"stale_seconds": config.Env("PROCESSING_STALE_SECONDS", 120),
		}
	})
}
