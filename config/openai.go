package config

import (
	"lunaura/pkg/config"
)

func init() {
	config.Add("openai", func() map[string]interface{} {
		apiKeys := config.Env("OPENAI_API_KEYS", "")
		if apiKeys == "" {
			apiKeys = config.Env("OPENAI_API_KEY", "")
		}

		return map[string]interface{}{
			"base_url":    config.Env("OPENAI_BASE_URL", "https://api.openai.com"),
			"api_keys":    apiKeys,
			"model":       config.Env("OPENAI_MODEL", "gpt-4.1-mini"),
			"timeout":     config.Env("OPENAI_TIMEOUT", 90),
			"max_retries": config.Env("OPENAI_MAX_RETRIES", 2),
			// 单次输出上限，会被限制在 256..6000
			"max_output_tokens": config.Env("OPENAI_MAX_OUTPUT_TOKENS", 2500),
		}
	})
}
