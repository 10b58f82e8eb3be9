package docx

import (
	"regexp"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

var (
	underlineTagRe = regexp.MustCompile(`<w:u\b[^>]*>`)
	underlineValRe = regexp.MustCompile(`w:val="([^"]*)"`)
)

// IsUnderlined 判断格式标记是否带单下划线。
// 格式标记对核心引擎不透明，解释工作集中在文档模型层。
// <w:u/> 不带 w:val 属性时按OOXML默认值视为单下划线。
func IsUnderlined(f domain.FormatToken) bool {
	tag := underlineTagRe.FindString(string(f))
	if tag == "" {
		return false
	}
	if m := underlineValRe.FindStringSubmatch(tag); m != nil {
		return m[1] == "single"
	}
	return true
}
