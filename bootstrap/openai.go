package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"lunaura/pkg/config"
	"lunaura/pkg/logger"
	"lunaura/pkg/openai"
)

// SetupOpenAI 初始化 OpenAI 客户端
func SetupOpenAI() (*openai.Client, error) {
	logger.InfoString("OpenAI", "Setup", "正在初始化 OpenAI 客户端...")

	keys := splitList(config.GetString("openai.api_keys"))
	client, err := openai.NewClient(openai.Config{
		BaseURL:         config.GetString("openai.base_url"),
		APIKeys:         keys,
		Model:           config.GetString("openai.model"),
		Timeout:         time.Duration(config.GetInt("openai.timeout")) * time.Second,
		MaxRetries:      config.GetInt("openai.max_retries"),
		MaxOutputTokens: config.GetInt("openai.max_output_tokens"),
	})
	if err != nil {
		logger.ErrorString("OpenAI", "Config", "缺少必要的配置: OPENAI_API_KEYS 或 OPENAI_API_KEY 未设置")
		return nil, err
	}

	logger.InfoString("OpenAI", "Setup", fmt.Sprintf(
		"OpenAI 客户端初始化成功 [Model: %s, APIKeys: %d]", config.GetString("openai.model"), len(keys)))
	return client, nil
}

// splitList 逗号分隔，忽略空项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
