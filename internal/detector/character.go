package detector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// Pattern 一种字符占位符模式。
// Group 指定正则中作为占位符本体的分组索引（0 表示整个匹配）。
type Pattern struct {
	Type  string
	Expr  string
	Group int
	Label string
}

// DefaultMinRepetition 重复字符的最小重复次数
const DefaultMinRepetition = 3

// DefaultPatterns 返回默认的字符占位符模式表。
// 顺序即匹配优先级：先匹配到的区间会屏蔽后续模式的重叠匹配。
func DefaultPatterns(minRepetition int) []Pattern {
	if minRepetition <= 0 {
		minRepetition = DefaultMinRepetition
	}
	return []Pattern{
		{Type: "underline", Expr: fmt.Sprintf("_{%d,}", minRepetition), Label: "下划线占位符"},
		{Type: "xxx_placeholder", Expr: "x{2,10}", Label: "xxx占位符"},
		// 字段名+冒号+尾部空白：占位符本体是冒号后的空白段。
		// 冒号后没有任何空白的行无法定位插入区间，不在检测范围内。
		{Type: "colon_field", Expr: `[\p{Han}A-Za-z0-9]{2,8}：([ \t　]+)$`, Group: 1, Label: "冒号字段占位符"},
	}
}

// CharacterDetector 字符占位符检测器。
//
// 检测由特定字符构成的占位符，如连续下划线（_____）、连续x（xxxx）、
// 字段名冒号后的空白等。模式表可扩展。
type CharacterDetector struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// NewCharacterDetector 创建字符占位符检测器。
// patterns 为空时使用默认模式表。
func NewCharacterDetector(patterns []Pattern) (*CharacterDetector, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns(DefaultMinRepetition)
	}
	cd := &CharacterDetector{}
	for _, p := range patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("编译占位符模式 %s 失败: %w", p.Type, err)
		}
		cd.patterns = append(cd.patterns, compiledPattern{Pattern: p, re: re})
	}
	return cd, nil
}

// Name 实现 Detector 接口
func (cd *CharacterDetector) Name() string {
	return "character"
}

// Detect 在逻辑文本中匹配所有模式，产出占位符报告。
// 同一容器内与已匹配区间重叠的后续匹配被跳过，避免重复检测。
func (cd *CharacterDetector) Detect(_ context.Context, c *domain.Container, logicalText string, extractor *ContextExtractor) []domain.Occurrence {
	if logicalText == "" {
		return nil
	}

	var occs []domain.Occurrence
	type span struct{ start, end int }
	var matched []span

	overlaps := func(start, end int) bool {
		for _, m := range matched {
			if start < m.end && end > m.start {
				return true
			}
		}
		return false
	}

	for _, p := range cd.patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(logicalText, -1) {
			start, end := loc[2*p.Group], loc[2*p.Group+1]
			if start < 0 || start >= end {
				continue
			}
			if overlaps(start, end) {
				continue
			}
			matched = append(matched, span{start, end})

			occs = append(occs, domain.Occurrence{
				ContainerID: c.ID,
				Start:       start,
				End:         end,
				RawText:     logicalText[start:end],
				Kind:        domain.KindCharacterRun,
				Alignment:   domain.AlignmentReliable,
				SpanHint:    findSpanIndex(c, start),
				Context:     extractor.Extract(logicalText, start, end),
				Label:       p.Label,
			})
		}
	}
	return occs
}
