package detector

import (
	"strings"
	"unicode/utf8"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// DefaultContextWindow 默认上下文窗口（字符数）
const DefaultContextWindow = 100

// ContextExtractor 提取占位符周围的有界上下文。
type ContextExtractor struct {
	window int // 前后各保留的字符数
}

// NewContextExtractor 创建上下文提取器，window 不合法时使用默认值。
func NewContextExtractor(window int) *ContextExtractor {
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &ContextExtractor{window: window}
}

// Extract 提取逻辑文本中 [start, end) 区间前后的上下文。
func (ce *ContextExtractor) Extract(text string, start, end int) domain.Context {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	return domain.Context{
		Before: strings.TrimSpace(lastRunes(text[:start], ce.window)),
		After:  strings.TrimSpace(firstRunes(text[end:], ce.window)),
		Line:   text,
	}
}

// firstRunes 返回字符串的前 n 个字符。
func firstRunes(s string, n int) string {
	pos := 0
	for i := 0; i < n && pos < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[pos:])
		pos += size
	}
	return s[:pos]
}

// lastRunes 返回字符串的后 n 个字符。
func lastRunes(s string, n int) string {
	pos := len(s)
	for i := 0; i < n && pos > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:pos])
		pos -= size
	}
	return s[pos:]
}
