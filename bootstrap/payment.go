package bootstrap

import (
	"context"

	"lunaura/app/models/payment"
	"lunaura/pkg/config"
	"lunaura/pkg/logger"
	"lunaura/pkg/payment/iap"
)

// SetupVerifiers 注册各平台的商店校验器
// iap.allow_stub 打开时所有平台只做格式校验，仅用于开发和测试
func SetupVerifiers(ctx context.Context) *iap.Registry {
	registry := iap.NewRegistry()

	if config.GetBool("iap.allow_stub") {
		for _, platform := range payment.Platforms {
			registry.Register(platform, iap.NewStubVerifier(platform))
		}
		logger.WarnString("Payment", "Setup", "商店校验使用 stub 模式，请勿在生产环境开启")
		return registry
	}

	if pkg := config.GetString("iap.google_play.package_name"); pkg != "" {
		v, err := iap.NewGooglePlayVerifier(ctx, pkg, config.GetString("iap.google_play.service_account_b64"))
		if err != nil {
			logger.ErrorString("Payment", "Setup", "Google Play 校验器初始化失败："+err.Error())
		} else {
			registry.Register(payment.PlatformGooglePlay, v)
		}
	}

	registry.Register(payment.PlatformAppStore, iap.AppStoreVerifier{})

	if appID := config.GetString("iap.alipay.app_id"); appID != "" {
		v, err := iap.NewAlipayVerifier(iap.AlipayConfig{
			AppID:        appID,
			PrivateKey:   config.GetString("iap.alipay.private_key"),
			PublicKey:    config.GetString("iap.alipay.public_key"),
			IsProduction: config.GetBool("iap.alipay.is_production"),
		})
		if err != nil {
			logger.ErrorString("Payment", "Setup", "支付宝校验器初始化失败："+err.Error())
		} else {
			registry.Register(payment.PlatformAlipay, v)
		}
	}

	if mchID := config.GetString("iap.wechat.mch_id"); mchID != "" {
		v, err := iap.NewWechatVerifier(ctx, iap.WechatConfig{
			MchID:          mchID,
			SerialNo:       config.GetString("iap.wechat.serial_no"),
			PrivateKeyPath: config.GetString("iap.wechat.private_key"),
			APIv3Key:       config.GetString("iap.wechat.api_v3_key"),
		})
		if err != nil {
			logger.ErrorString("Payment", "Setup", "微信支付校验器初始化失败："+err.Error())
		} else {
			registry.Register(payment.PlatformWechatPay, v)
		}
	}

	for _, platform := range payment.Platforms {
		if !registry.Has(platform) {
			logger.WarnString("Payment", "Setup", "平台未配置商店校验: "+platform)
		}
	}
	return registry
}
