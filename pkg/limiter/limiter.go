// Package limiter 处理限流逻辑
package limiter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	limiterlib "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"lunaura/pkg/logger"
)

// Rate 定义限流速率
type Rate struct {
	Rate float64
}

// ParseLimit 解析限流配置字符串
// 支持的格式: "5-S"、"10-M"、"1000-H"、"2000-D"
func ParseLimit(limit string) (*Rate, error) {
	parts := strings.Split(limit, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid limit format: %s", limit)
	}

	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %s", parts[0])
	}

	// 根据时间单位转换为每秒的速率
	var ratePerSecond float64
	switch strings.ToUpper(parts[1]) {
	case "S":
		ratePerSecond = value
	case "M":
		ratePerSecond = value / 60.0
	case "H":
		ratePerSecond = value / 3600.0
	case "D":
		ratePerSecond = value / 86400.0
	default:
		return nil, fmt.Errorf("invalid time unit: %s", parts[1])
	}

	return &Rate{Rate: ratePerSecond}, nil
}

// GetKeyIP 获取 Limitor 的 Key，IP
func GetKeyIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetKeyRouteWithDevice Limitor 的 Key，路由+设备，针对单个路由做限流
func GetKeyRouteWithDevice(c *gin.Context, deviceID string) string {
	return routeToKeyString(c.FullPath()) + ":" + deviceID
}

// Limiter 基于 Redis 的分布式限流，多实例部署时共享计数
type Limiter struct {
	limiter *limiterlib.Limiter
}

// New 创建限流器，formatted 格式同 ParseLimit，如 "20-M"
func New(client *goredis.Client, prefix, formatted string) (*Limiter, error) {
	rate, err := limiterlib.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid limit format: %w", err)
	}

	// 为 limiter 设置前缀，保持 redis 里数据的整洁
	store, err := sredis.NewStoreWithOptions(client, limiterlib.StoreOptions{
		Prefix: prefix + ":limiter",
	})
	if err != nil {
		return nil, err
	}
	return &Limiter{limiter: limiterlib.New(store, rate)}, nil
}

// CheckRate 检测请求是否超额
func (l *Limiter) CheckRate(c *gin.Context, key string) (limiterlib.Context, error) {
	// 确保多个路由组里调用限流时，只增加一次访问次数
	if c.GetBool("limiter-once") {
		// Peek() 取结果，不增加访问次数
		return l.limiter.Peek(c, key)
	}
	c.Set("limiter-once", true)

	// Get() 取结果且增加访问次数
	ctx, err := l.limiter.Get(c, key)
	logger.LogIf(err)
	return ctx, err
}

// routeToKeyString 辅助方法，将 URL 中的 / 格式为 -
func routeToKeyString(routeName string) string {
	routeName = strings.ReplaceAll(routeName, "/", "-")
	routeName = strings.ReplaceAll(routeName, ":", "_")
	return routeName
}
