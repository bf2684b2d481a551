// Package app 运行环境和业务时区
package app

import (
	"time"

	"lunaura/pkg/config"
)

// IsLocal 本地开发环境
func IsLocal() bool {
	return config.Get("app.env") == "local"
}

// IsTesting 测试环境，限流等中间件在此环境下关闭
func IsTesting() bool {
	return config.Get("app.env") == "testing"
}

// Location app.timezone 对应的时区，配置无效时退回 UTC
func Location() *time.Location {
	loc, err := time.LoadLocation(config.GetString("app.timezone"))
	if err != nil {
		return time.UTC
	}
	return loc
}

// Now 业务时区的当前时间，解读里的日期和 14 天计划按它计算
func Now() time.Time {
	return time.Now().In(Location())
}
