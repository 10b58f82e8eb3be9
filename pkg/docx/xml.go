package docx

import (
	"regexp"
	"strings"
)

// document.xml 结构正则。w:p 的开始标签要求后跟 '>' 或属性，
// 避免误匹配 w:pPr 等同前缀标签；w:r 同理。
var (
	paraRe = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*)?/>|<w:p(?:\s[^>]*)?>.*?</w:p>`)
	runRe  = regexp.MustCompile(`(?s)<w:r(?:\s[^>]*)?/>|<w:r(?:\s[^>]*)?>.*?</w:r>`)
	tblRe  = regexp.MustCompile(`(?s)<w:tbl(?:\s[^>]*)?>.*?</w:tbl>`)
	trRe   = regexp.MustCompile(`(?s)<w:tr(?:\s[^>]*)?>.*?</w:tr>`)
	tcRe   = regexp.MustCompile(`(?s)<w:tc(?:\s[^>]*)?>.*?</w:tc>`)
	rPrRe  = regexp.MustCompile(`(?s)<w:rPr(?:\s[^>]*)?>.*?</w:rPr>`)
	wtRe   = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
)

// chunk XML内容的一个片段：正则命中的结构块，或结构块之间的原文。
type chunk struct {
	text    string
	isMatch bool
}

// splitMatches 把 s 按 re 的命中位置切分为交替的原文/命中片段。
func splitMatches(s string, re *regexp.Regexp) []chunk {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return []chunk{{text: s}}
	}
	var chunks []chunk
	pos := 0
	for _, loc := range locs {
		if loc[0] > pos {
			chunks = append(chunks, chunk{text: s[pos:loc[0]]})
		}
		chunks = append(chunks, chunk{text: s[loc[0]:loc[1]], isMatch: true})
		pos = loc[1]
	}
	if pos < len(s) {
		chunks = append(chunks, chunk{text: s[pos:]})
	}
	return chunks
}

var (
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	xmlUnescaper = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
)

// escapeText 转义写入 w:t 的文本。
func escapeText(s string) string {
	return xmlEscaper.Replace(s)
}

// unescapeText 还原 w:t 中的转义字符。
func unescapeText(s string) string {
	return xmlUnescaper.Replace(s)
}
