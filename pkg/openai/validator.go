package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"lunaura/pkg/logger"
	"lunaura/pkg/storage"
)

// 产品类型，与 lifecycle 中的产品标识一致
const (
	KindCoffee = "coffee"
	KindHand   = "hand"
)

// ImageValidator 用视觉模型判断上传的图片是否适合该产品
type ImageValidator struct {
	client Completer
	store  storage.Store
}

// NewImageValidator 创建图片校验器
func NewImageValidator(client Completer, store storage.Store) *ImageValidator {
	return &ImageValidator{
		client: client,
		store:  store,
	}
}

// Validate 校验图片，服务不可用时返回错误，模型回答无法解析时视为拒绝
func (v *ImageValidator) Validate(ctx context.Context, kind string, paths []string) (Verdict, error) {
	var system string
	switch kind {
	case KindCoffee:
		system = coffeeValidatePrompt
	case KindHand:
		system = handValidatePrompt
	default:
		return Verdict{}, errors.Errorf("openai: no image validation for %q", kind)
	}

	images, err := loadImages(ctx, v.store, paths)
	if err != nil {
		return Verdict{}, err
	}

	out, err := v.client.Respond(ctx, Prompt{
		System:    system,
		User:      "Bu görselleri değerlendir.",
		Images:    images,
		MaxTokens: 300,
	})
	if err != nil {
		return Verdict{}, err
	}

	verdict := ParseVerdict(out)
	logger.InfoString("OpenAI", "Validate", fmt.Sprintf(
		"图片校验 类型:%s 数量:%d 结果:%v 原因:%s", kind, len(paths), verdict.OK, verdict.Reason))
	return verdict, nil
}

// ParseVerdict 解析 {"ok","reason","confidence"}，模型多写了文字时截取第一段 JSON
func ParseVerdict(out string) Verdict {
	raw := extractJSON(out)
	if raw == "" || !gjson.Valid(raw) {
		return Verdict{OK: false, Reason: "Görsel doğrulanamadı."}
	}
	res := gjson.Parse(raw)
	return Verdict{
		OK:         res.Get("ok").Bool(),
		Reason:     res.Get("reason").String(),
		Confidence: res.Get("confidence").Float(),
	}
}

// extractJSON 取第一个 { 到最后一个 } 之间的内容
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// loadImages 读取图片并编码为 data URL
func loadImages(ctx context.Context, store storage.Store, paths []string) ([]string, error) {
	images := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := store.Get(ctx, p)
		if err != nil {
			return nil, errors.Wrapf(err, "load image %s", p)
		}
		images = append(images, "data:"+storage.ContentType(p)+";base64,"+base64.StdEncoding.EncodeToString(data))
	}
	return images, nil
}
