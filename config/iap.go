package config

import "lunaura/pkg/config"

func init() {
	config.Add("iap", func() map[string]interface{} {
		return map[string]interface{}{
			// 仅做格式校验，不请求商店，开发环境使用
			"allow_stub": config.Env("ALLOW_STUB_IAP", false),

			// Google Play
			"google_play": map[string]interface{}{
				"package_name":        config.Env("GOOGLE_PLAY_PACKAGE_NAME", ""),
				"service_account_b64": config.Env("GOOGLE_PLAY_SERVICE_ACCOUNT_JSON_B64", ""),
			},

			// 支付宝
			"alipay": map[string]interface{}{
				"app_id":        config.Env("ALIPAY_APP_ID", ""),
				"private_key":   config.Env("ALIPAY_PRIVATE_KEY", ""),
				"public_key":    config.Env("ALIPAY_PUBLIC_KEY", ""),
				"is_production": config.Env("ALIPAY_IS_PRODUCTION", false),
			},

			// 微信支付
			"wechat": map[string]interface{}{
				"mch_id":      config.Env("WECHAT_MCH_ID", ""),
				"serial_no":   config.Env("WECHAT_SERIAL_NO", ""),
				"private_key": config.Env("WECHAT_PRIVATE_KEY_PATH", ""),
				"api_v3_key":  config.Env("WECHAT_API_V3_KEY", ""),
			},
		}
	})
}
