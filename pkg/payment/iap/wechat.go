package iap

import (
	"context"

	"github.com/pkg/errors"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/jsapi"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

// WechatConfig 微信支付配置
type WechatConfig struct {
	MchID          string
	SerialNo       string
	PrivateKeyPath string
	APIv3Key       string
}

// WechatVerifier 通过微信支付订单号查询订单
type WechatVerifier struct {
	client *core.Client
	mchID  string
}

// NewWechatVerifier 创建微信支付校验器
func NewWechatVerifier(ctx context.Context, cfg WechatConfig) (*WechatVerifier, error) {
	// 1. 加载商户私钥
	mchPrivateKey, err := utils.LoadPrivateKeyWithPath(cfg.PrivateKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "load merchant private key")
	}

	// 2. 自动更新平台证书
	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.SerialNo, mchPrivateKey, cfg.APIv3Key),
	}

	// 3. 创建客户端
	client, err := core.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create wechat pay client")
	}
	return &WechatVerifier{client: client, mchID: cfg.MchID}, nil
}

// Verify trade_state 为 SUCCESS 时通过
func (w *WechatVerifier) Verify(ctx context.Context, req Request) (Result, error) {
	svc := jsapi.JsapiApiService{Client: w.client}
	tx, _, err := svc.QueryOrderById(ctx, jsapi.QueryOrderByIdRequest{
		TransactionId: core.String(req.TransactionID),
		Mchid:         core.String(w.mchID),
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "wechat query order")
	}
	state := ""
	if tx != nil && tx.TradeState != nil {
		state = *tx.TradeState
	}
	if state == "SUCCESS" {
		return Result{OK: true, State: state}, nil
	}
	return Result{State: state, Reason: "trade state is " + state}, nil
}
