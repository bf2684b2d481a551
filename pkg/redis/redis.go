/*
Package redis 管理 Redis 连接

	main  实例用于限流
	queue 实例用于生成任务队列
*/
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"lunaura/pkg/logger"
)

// 关键配置常量
const (
	// DefaultPoolSize Redis 连接池大小
	DefaultPoolSize = 100
	// DefaultTimeout 默认操作超时时间
	DefaultTimeout = 5 * time.Second
	// DefaultMinIdleConns 最小空闲连接数
	DefaultMinIdleConns = 10
	// DefaultMaxRetries 最大重试次数
	DefaultMaxRetries = 3
	// DefaultIdleTimeout 空闲超时
	DefaultIdleTimeout = 5 * time.Minute
)

// RedisInstance Redis 实例类型
type RedisInstance string

const (
	MainDB  RedisInstance = "main"  // 主数据库实例（用于限流等）
	QueueDB RedisInstance = "queue" // 队列数据库实例
)

// RedisClient Redis 客户端封装
type RedisClient struct {
	Client *redis.Client
}

// RedisConfig Redis 配置结构
type RedisConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Timeout      time.Duration
}

// RedisManager 按用途管理多个逻辑库
type RedisManager struct {
	instances map[RedisInstance]*RedisClient
	mutex     sync.RWMutex
}

var (
	once    sync.Once
	Manager *RedisManager
)

// NewClient 创建新的 Redis 客户端，连接失败时返回错误
func NewClient(config RedisConfig) (*RedisClient, error) {
	rds := &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:         config.Address,
			Username:     config.Username,
			Password:     config.Password,
			DB:           config.DB,
			PoolSize:     config.PoolSize,     // 连接池大小
			MinIdleConns: config.MinIdleConns, // 最小空闲连接数

			// 连接池配置
			PoolTimeout:     config.Timeout,
			ConnMaxIdleTime: DefaultIdleTimeout,
			ConnMaxLifetime: 24 * time.Hour,

			// 读写超时
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,

			// 重试策略
			MaxRetries:      DefaultMaxRetries,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
		}),
	}

	// 测试连接
	if err := rds.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("redis 连接失败 db=%d: %w", config.DB, err)
	}
	return rds, nil
}

// Ping 测试 Redis 连接
func (rds *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	return rds.Client.Ping(ctx).Err()
}

// InitRedis 初始化 Redis 管理器
func InitRedis(address, username, password string, mainDB, queueDB int) (err error) {
	once.Do(func() {
		manager := &RedisManager{
			instances: make(map[RedisInstance]*RedisClient),
		}
		for instance, db := range map[RedisInstance]int{MainDB: mainDB, QueueDB: queueDB} {
			client, cerr := NewClient(RedisConfig{
				Address:      address,
				Username:     username,
				Password:     password,
				DB:           db,
				PoolSize:     DefaultPoolSize,
				MinIdleConns: DefaultMinIdleConns,
				Timeout:      DefaultTimeout,
			})
			if cerr != nil {
				err = cerr
				return
			}
			manager.instances[instance] = client
		}
		Manager = manager
		logger.InfoString("Redis", "Init", fmt.Sprintf("Redis 连接成功 %s main=%d queue=%d", address, mainDB, queueDB))
	})
	return err
}

// GetRedis 获取指定的 Redis 实例，未初始化时返回 nil
func GetRedis(instance RedisInstance) *RedisClient {
	if Manager == nil {
		return nil
	}
	Manager.mutex.RLock()
	defer Manager.mutex.RUnlock()

	if client, ok := Manager.instances[instance]; ok {
		return client
	}
	return Manager.instances[MainDB]
}

// Ping 检查所有实例
func Ping(ctx context.Context) error {
	if Manager == nil {
		return fmt.Errorf("redis 未初始化")
	}
	Manager.mutex.RLock()
	defer Manager.mutex.RUnlock()

	for name, client := range Manager.instances {
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("redis %s: %w", name, err)
		}
	}
	return nil
}

// Close 关闭所有连接
func Close() {
	if Manager == nil {
		return
	}
	Manager.mutex.Lock()
	defer Manager.mutex.Unlock()

	for _, client := range Manager.instances {
		logger.LogIf(client.Client.Close())
	}
}
