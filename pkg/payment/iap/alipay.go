package iap

import (
	"context"

	"github.com/pkg/errors"
	"github.com/smartwalle/alipay/v3"
)

// AlipayConfig 支付宝配置
type AlipayConfig struct {
	AppID        string
	PrivateKey   string
	PublicKey    string
	IsProduction bool
}

// AlipayVerifier 通过交易查询确认支付宝订单
type AlipayVerifier struct {
	client *alipay.Client
}

// NewAlipayVerifier 创建支付宝校验器
func NewAlipayVerifier(cfg AlipayConfig) (*AlipayVerifier, error) {
	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, errors.Wrap(err, "create alipay client")
	}
	if err := client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, errors.Wrap(err, "load alipay public key")
	}
	return &AlipayVerifier{client: client}, nil
}

// Verify TRADE_SUCCESS 或 TRADE_FINISHED 视为已支付
func (a *AlipayVerifier) Verify(ctx context.Context, req Request) (Result, error) {
	rsp, err := a.client.TradeQuery(ctx, alipay.TradeQuery{TradeNo: req.TransactionID})
	if err != nil {
		return Result{}, errors.Wrap(err, "alipay trade query")
	}
	if rsp.Code != alipay.CodeSuccess {
		return Result{Reason: rsp.Msg + " " + rsp.SubMsg}, nil
	}
	status := string(rsp.TradeStatus)
	if status == "TRADE_SUCCESS" || status == "TRADE_FINISHED" {
		return Result{OK: true, State: status}, nil
	}
	return Result{State: status, Reason: "trade is " + status}, nil
}
