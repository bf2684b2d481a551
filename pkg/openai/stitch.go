package openai

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Completer 单次文本生成
type Completer interface {
	Respond(ctx context.Context, p Prompt) (string, error)
}

const minCompleteRunes = 300

var (
	sentenceEnd   = regexp.MustCompile(`[.!?…]["')\]]?\s*$`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// LooksTruncated 判断文本是否被截断
func LooksTruncated(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || utf8.RuneCountInString(t) < minCompleteRunes {
		return true
	}

	last, _ := utf8.DecodeLastRuneInString(t)
	switch last {
	case ',', ':', ';', '-', '(', '[', '—':
		return true
	}
	if !sentenceEnd.MatchString(t) {
		return true
	}

	lines := strings.Split(t, "\n")
	lastLine := strings.TrimSpace(lines[len(lines)-1])
	if utf8.RuneCountInString(lastLine) < 20 {
		return true
	}
	return !sentenceEnd.MatchString(lastLine)
}

// StitchOptions 续写参数
type StitchOptions struct {
	MaxHops        int
	ContinueTokens int
	// 构造续写提示词，为空时使用通用续写
	Continue func(prev string) string
}

// Stitch 生成文本，截断时最多续写 MaxHops 次
func Stitch(ctx context.Context, c Completer, p Prompt, opts StitchOptions) (string, error) {
	cont := opts.Continue
	if cont == nil {
		cont = continuePrompt
	}

	out, err := c.Respond(ctx, p)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)

	for hop := 0; hop < opts.MaxHops && LooksTruncated(out); hop++ {
		next, err := c.Respond(ctx, Prompt{
			System:    p.System,
			User:      cont(out),
			MaxTokens: opts.ContinueTokens,
		})
		if errors.Is(err, ErrEmptyOutput) {
			break
		}
		if err != nil {
			return "", err
		}
		next = strings.TrimSpace(next)
		if next == "" {
			break
		}
		out = out + "\n\n" + next
	}

	return strings.TrimSpace(extraNewlines.ReplaceAllString(out, "\n\n")), nil
}
