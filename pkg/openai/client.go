// Package openai 封装 OpenAI Responses API 调用
// 支持多 API Key 负载均衡、故障转移和错误归类
package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"lunaura/pkg/logger"
)

const (
	minOutputTokens = 256
	maxOutputTokens = 6000

	// 连续错误达到该次数后标记实例不健康
	unhealthyThreshold = 3
)

// Client OpenAI 客户端，每个 API Key 对应一个实例
type Client struct {
	instances  []*Instance
	model      string
	maxTokens  int
	numRetries int
	mu         sync.RWMutex
}

// Instance 单个 API Key 的调用实例
type Instance struct {
	APIKey       string
	Health       bool
	Client       *resty.Client
	LastErr      error
	LastUsed     time.Time
	ErrorCount   int
	RequestCount *RequestCounter
}

// RequestCounter 请求计数器
type RequestCounter struct {
	requests []time.Time
	mu       sync.Mutex
}

// NewRequestCounter 创建新的请求计数器
func NewRequestCounter() *RequestCounter {
	return &RequestCounter{
		requests: make([]time.Time, 0, 256),
	}
}

// AddRequest 记录新请求，同时清理一小时前的记录
func (rc *RequestCounter) AddRequest() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	keep := 0
	for keep < len(rc.requests) && now.Sub(rc.requests[keep]) > time.Hour {
		keep++
	}
	rc.requests = append(rc.requests[keep:], now)
}

// GetRecentCount 获取最近时间段内的请求数
func (rc *RequestCounter) GetRecentCount(duration time.Duration) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	count := 0
	for i := len(rc.requests) - 1; i >= 0; i-- {
		if now.Sub(rc.requests[i]) > duration {
			break
		}
		count++
	}
	return count
}

// NewClient 创建客户端
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, errors.New("openai: no api key configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}

	c := &Client{
		model:      cfg.Model,
		maxTokens:  ClampTokens(cfg.MaxOutputTokens),
		numRetries: cfg.MaxRetries,
		instances:  make([]*Instance, 0, len(cfg.APIKeys)),
	}
	for _, key := range cfg.APIKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		c.instances = append(c.instances, newInstance(cfg.BaseURL, key, cfg.Timeout))
	}
	if len(c.instances) == 0 {
		return nil, errors.New("openai: no api key configured")
	}
	return c, nil
}

func newInstance(baseURL, apiKey string, timeout time.Duration) *Instance {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)

	return &Instance{
		APIKey:       apiKey,
		Health:       true,
		Client:       client,
		RequestCount: NewRequestCounter(),
	}
}

// ClampTokens 输出 token 限制在 256..6000
func ClampTokens(n int) int {
	if n <= 0 {
		return 2500
	}
	if n < minOutputTokens {
		return minOutputTokens
	}
	if n > maxOutputTokens {
		return maxOutputTokens
	}
	return n
}

// MaxTokens 默认输出上限
func (c *Client) MaxTokens() int {
	return c.maxTokens
}

// Respond 调用 Responses API 并返回 output_text
// 额度不足或不可用时换实例重试，其他错误直接返回
func (c *Client) Respond(ctx context.Context, p Prompt) (string, error) {
	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= c.numRetries; attempt++ {
		instance := c.getAvailableInstance()

		text, err := c.call(ctx, instance, p)
		if err == nil {
			instance.RequestCount.AddRequest()
			c.handleAPISuccess(instance)
			logger.InfoString("OpenAI", "Success", fmt.Sprintf(
				"请求成功 实例:%s 耗时:%v 结果长度:%d",
				maskKey(instance.APIKey), time.Since(start), len(text)))
			return text, nil
		}

		lastErr = err
		c.handleAPIError(instance, err)
		logger.WarnString("OpenAI", "Error", fmt.Sprintf(
			"请求失败 实例:%s 第%d次 错误:%v", maskKey(instance.APIKey), attempt+1, err))

		if !IsTemporary(err) || ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

// call 发送一次请求
func (c *Client) call(ctx context.Context, instance *Instance, p Prompt) (string, error) {
	maxTokens := c.maxTokens
	if p.MaxTokens > 0 {
		maxTokens = ClampTokens(p.MaxTokens)
	}

	var input []Message
	if p.System != "" {
		input = append(input, Message{Role: "system", Content: []ContentPart{TextPart(p.System)}})
	}
	user := Message{Role: "user", Content: []ContentPart{TextPart(p.User)}}
	for _, img := range p.Images {
		user.Content = append(user.Content, ImagePart(img))
	}
	input = append(input, user)

	resp, err := instance.Client.R().
		SetContext(ctx).
		SetBody(ResponseRequest{
			Model:           c.model,
			Input:           input,
			MaxOutputTokens: maxTokens,
		}).
		Post("/v1/responses")
	if err != nil {
		return "", classifyTransport(err)
	}
	if resp.StatusCode() != 200 {
		return "", classifyStatus(resp.StatusCode(), resp.Body())
	}

	text := OutputText(resp.Body())
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

// OutputText 从 Responses API 返回体中拼接输出文本
func OutputText(body []byte) string {
	if t := gjson.GetBytes(body, "output_text"); t.Exists() {
		return strings.TrimSpace(t.String())
	}

	var b strings.Builder
	gjson.GetBytes(body, "output").ForEach(func(_, item gjson.Result) bool {
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").String() == "output_text" {
				b.WriteString(part.Get("text").String())
			}
			return true
		})
		return true
	})
	return strings.TrimSpace(b.String())
}

// HealthCheck 是否还有健康实例
func (c *Client) HealthCheck() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var lastErr error
	for _, instance := range c.instances {
		if instance.Health {
			return nil
		}
		if instance.LastErr != nil {
			lastErr = instance.LastErr
		}
	}
	if lastErr != nil {
		return errors.Wrap(lastErr, "no healthy openai instance")
	}
	return errors.New("no healthy openai instance")
}

// getAvailableInstance 选择最近负载最低的健康实例，全部不健康时重置
func (c *Client) getAvailableInstance() *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		selected *Instance
		minLoad  int
	)
	for _, instance := range c.instances {
		if !instance.Health {
			continue
		}
		load := instance.RequestCount.GetRecentCount(5 * time.Minute)
		if selected == nil || load < minLoad {
			selected = instance
			minLoad = load
		}
	}
	if selected != nil {
		return selected
	}

	for _, instance := range c.instances {
		instance.Health = true
		instance.ErrorCount = 0
	}
	logger.InfoString("OpenAI", "Reset", "已重置所有实例状态")
	return c.instances[0]
}

// handleAPISuccess 处理 API 调用成功
func (c *Client) handleAPISuccess(instance *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	instance.Health = true
	instance.ErrorCount = 0
	instance.LastUsed = time.Now()
	instance.LastErr = nil
}

// handleAPIError 处理 API 调用错误
func (c *Client) handleAPIError(instance *Instance, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	instance.ErrorCount++
	instance.LastErr = err

	// 额度用尽的 key 立即下线，其余错误累计到阈值才下线
	if errors.Is(err, ErrQuotaExceeded) || instance.ErrorCount >= unhealthyThreshold {
		instance.Health = false
		logger.WarnString("OpenAI", "Instance", fmt.Sprintf(
			"实例 %s 被标记为不健康: 连续 %d 次错误, 最后错误: %v",
			maskKey(instance.APIKey), instance.ErrorCount, err))
	}
}

// maskKey 日志里只显示 key 尾部
func maskKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return "***" + key[len(key)-4:]
}
