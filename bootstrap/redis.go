package bootstrap

import (
	"fmt"

	"lunaura/pkg/config"
	"lunaura/pkg/logger"
	"lunaura/pkg/redis"
)

// SetupRedis 初始化 Redis，失败时返回错误由调用方决定是否降级
func SetupRedis() error {
	err := redis.InitRedis(
		fmt.Sprintf("%v:%v", config.GetString("redis.host"), config.GetString("redis.port")),
		config.GetString("redis.username"),
		config.GetString("redis.password"),
		config.GetInt("redis.database"),
		config.GetInt("redis.queue_database"),
	)
	if err != nil {
		logger.ErrorString("Redis", "Setup", "Redis 初始化失败："+err.Error())
	}
	return err
}
