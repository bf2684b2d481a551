package iap

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/google"

	"lunaura/pkg/logger"
)

const (
	androidPublisherScope = "https://www.googleapis.com/auth/androidpublisher"
	androidPublisherURL   = "https://androidpublisher.googleapis.com"
)

// purchaseState 的取值
var purchaseStates = map[int64]string{
	0: "purchased",
	1: "canceled",
	2: "pending",
}

// GooglePlayVerifier 通过 Android Publisher API 查询一次性商品购买
type GooglePlayVerifier struct {
	client      *resty.Client
	packageName string
}

// NewGooglePlayVerifier 使用 base64 编码的服务账号 JSON 创建校验器
func NewGooglePlayVerifier(ctx context.Context, packageName, serviceAccountB64 string) (*GooglePlayVerifier, error) {
	if packageName == "" || serviceAccountB64 == "" {
		return nil, errors.New("google play: package name and service account are required")
	}
	raw, err := base64.StdEncoding.DecodeString(serviceAccountB64)
	if err != nil {
		return nil, errors.Wrap(err, "google play: decode service account")
	}
	conf, err := google.JWTConfigFromJSON(raw, androidPublisherScope)
	if err != nil {
		return nil, errors.Wrap(err, "google play: parse service account")
	}
	return NewGooglePlayVerifierWithClient(conf.Client(ctx), androidPublisherURL, packageName), nil
}

// NewGooglePlayVerifierWithClient 使用已授权的 http.Client，测试时可指向本地服务
func NewGooglePlayVerifierWithClient(hc *http.Client, baseURL, packageName string) *GooglePlayVerifier {
	return &GooglePlayVerifier{
		client:      resty.NewWithClient(hc).SetBaseURL(baseURL),
		packageName: packageName,
	}
}

// Verify 查询 purchases.products，purchaseState 为 0 时通过
func (g *GooglePlayVerifier) Verify(ctx context.Context, req Request) (Result, error) {
	path := fmt.Sprintf("/androidpublisher/v3/applications/%s/purchases/products/%s/tokens/%s",
		url.PathEscape(g.packageName), url.PathEscape(req.SKU), url.PathEscape(req.PurchaseToken))

	resp, err := g.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return Result{}, errors.Wrap(err, "google play: request")
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound, resp.StatusCode() == http.StatusBadRequest:
		return Result{Reason: "purchase not found"}, nil
	case resp.StatusCode() != http.StatusOK:
		return Result{}, errors.Errorf("google play: status %d", resp.StatusCode())
	}

	state := gjson.GetBytes(resp.Body(), "purchaseState").Int()
	name, ok := purchaseStates[state]
	if !ok {
		name = "unknown"
	}
	logger.InfoString("IAP", "GooglePlay", fmt.Sprintf("订单 %s 状态 %s", gjson.GetBytes(resp.Body(), "orderId").String(), name))
	if state != 0 {
		return Result{State: name, Reason: "purchase is " + name}, nil
	}
	return Result{OK: true, State: name}, nil
}
