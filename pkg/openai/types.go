package openai

import "time"

// Config 客户端配置
type Config struct {
	BaseURL         string
	APIKeys         []string
	Model           string
	Timeout         time.Duration
	MaxRetries      int
	MaxOutputTokens int
}

// ContentPart Responses API 的输入片段
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Message Responses API 的输入消息
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ResponseRequest POST /v1/responses 请求体
type ResponseRequest struct {
	Model           string    `json:"model"`
	Input           []Message `json:"input"`
	MaxOutputTokens int       `json:"max_output_tokens,omitempty"`
}

// Prompt 一次调用的提示词
type Prompt struct {
	System    string
	User      string
	Images    []string // data URL
	MaxTokens int
}

// Verdict 图片校验结果
type Verdict struct {
	OK         bool    `json:"ok"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// TextPart 文本片段
func TextPart(text string) ContentPart {
	return ContentPart{Type: "input_text", Text: text}
}

// ImagePart 图片片段
func ImagePart(dataURL string) ContentPart {
	return ContentPart{Type: "input_image", ImageURL: dataURL}
}
