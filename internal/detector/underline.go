package detector

import (
	"context"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// UnderlinedFunc 判断格式标记是否带单下划线。
// 格式标记对核心不透明，解释工作由文档模型层提供的谓词完成。
type UnderlinedFunc func(domain.FormatToken) bool

// UnderlineSpaceDetector 下划线空格占位符检测器。
//
// 检测带下划线格式的空格段，这通常是需要填写的字段，
// 分尾部空格和中间空格两种情况，相邻空格段会被合并。
// 该检测器锚定的是格式标志而非文本内容，无法保证偏移量与
// 文本块边界精确对齐，因此产出的占位符都标记为单块替换。
type UnderlineSpaceDetector struct {
	underlined UnderlinedFunc
}

// NewUnderlineSpaceDetector 创建下划线空格检测器。
func NewUnderlineSpaceDetector(underlined UnderlinedFunc) *UnderlineSpaceDetector {
	return &UnderlineSpaceDetector{underlined: underlined}
}

// Name 实现 Detector 接口
func (ud *UnderlineSpaceDetector) Name() string {
	return "underline_space"
}

// Detect 在带下划线格式的文本块中查找空格段。
func (ud *UnderlineSpaceDetector) Detect(_ context.Context, c *domain.Container, logicalText string, extractor *ContextExtractor) []domain.Occurrence {
	if ud.underlined == nil {
		return nil
	}

	var occs []domain.Occurrence
	starts := spanStarts(c)

	for i := range c.Spans {
		if !ud.underlined(c.Spans[i].Format) {
			continue
		}
		groups := spaceGroups(c.Spans[i].Text)
		if len(groups) == 0 {
			continue
		}
		for _, g := range groups {
			absStart := starts[i] + g.start
			absEnd := starts[i] + g.end
			occs = append(occs, domain.Occurrence{
				ContainerID: c.ID,
				Start:       absStart,
				End:         absEnd,
				RawText:     c.Spans[i].Text[g.start:g.end],
				Kind:        domain.KindUnderlineSpace,
				Alignment:   domain.AlignmentSingleSpanOnly,
				SpanHint:    i,
				Context:     extractor.Extract(logicalText, absStart, absEnd),
				Label:       "下划线空格占位符",
			})
		}
	}
	return occs
}

type spaceGroup struct{ start, end int }

// spaceGroups 返回文本中的连续空格段，间隔不超过1个字符的相邻段合并。
func spaceGroups(text string) []spaceGroup {
	var raw []spaceGroup
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			raw = append(raw, spaceGroup{start, i})
			start = -1
		}
	}
	if start >= 0 {
		raw = append(raw, spaceGroup{start, len(text)})
	}
	if len(raw) == 0 {
		return nil
	}

	merged := []spaceGroup{raw[0]}
	for _, g := range raw[1:] {
		last := &merged[len(merged)-1]
		if g.start <= last.end+1 {
			last.end = g.end
		} else {
			merged = append(merged, g)
		}
	}
	return merged
}
