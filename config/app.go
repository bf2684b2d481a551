// Package config 站点配置信息
package config

import "lunaura/pkg/config"

func init() {
	config.Add("app", func() map[string]interface{} {
		return map[string]interface{}{

			// 应用名称
			"name": config.Env("APP_NAME", "Lunaura"),

			// 当前环境，用以区分多环境，一般为 local, stage, production, testing
			"env": config.Env("APP_ENV", "production"),

			// 是否进入调试模式
			"debug": config.Env("APP_DEBUG", false),

			// 应用服务端口
			"port": config.Env("APP_PORT", "8000"),

			// 设置时区，日志记录里会使用到
			"timezone": config.Env("TIMEZONE", "Europe/Istanbul"),

			// 跨域来源，"*" 或逗号分隔的域名列表
			"cors_origins": config.Env("CORS_ORIGINS", "*"),

			// 管理接口令牌，为空时不校验
			"admin_token": config.Env("ADMIN_TOKEN", ""),

			// 全局限流，每小时每 IP
			"api_rate_limit": config.Env("API_RATE_LIMIT", "30000-H"),
			// 支付校验限流，每分钟每设备
			"verify_rate_limit": config.Env("VERIFY_RATE_LIMIT", "20-M"),
		}
	})
}
