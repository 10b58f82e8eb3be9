// Package replacer 跨文本块替换引擎：在最少的文本块上完成替换，
// 不触碰区间之外的任何文本块。
package replacer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/momomo623/smart-word-completion/internal/domain"
	"github.com/momomo623/smart-word-completion/internal/spanindex"
)

// ErrUnresolved 占位符无法在目标文本块中定位，原样保留。
var ErrUnresolved = errors.New("占位符未解决")

// Apply 将一个占位符替换为 replacement，直接修改容器的文本块。
// 索引必须基于容器当前状态构建；替换完成后索引即失效。
//
// Alignment 可信时走跨块路径：
//   - 单个文本块完全覆盖区间：块内拼接替换，格式不变；
//   - 多个文本块覆盖：首块保留前缀并承载全部替换文本（首块格式胜出），
//     末块只保留后缀，中间块清空文本但保留在结构中；
//   - 索引无法解析覆盖块集合时退回单块路径。
//
// Alignment 为 SingleSpanOnly 时，只在检测器指定的文本块内查找 RawText
// 并原地替换；找不到时返回 ErrUnresolved，不产生任何修改。
func Apply(c *domain.Container, ix *spanindex.Index, occ domain.Occurrence, replacement string) error {
	if occ.Alignment == domain.AlignmentSingleSpanOnly {
		return applySingleSpan(c, occ, replacement)
	}

	ranges := ix.SpansCovering(occ.Start, occ.End)
	if len(ranges) == 0 {
		// 防御路径：索引解析失败时退回单块替换
		return applySingleSpan(c, occ, replacement)
	}

	if len(ranges) == 1 {
		r := ranges[0]
		text := c.Spans[r.SpanIndex].Text
		c.Spans[r.SpanIndex].Text = text[:r.LocalStart] + replacement + text[r.LocalEnd:]
		return nil
	}

	first, last := ranges[0], ranges[len(ranges)-1]
	c.Spans[first.SpanIndex].Text = c.Spans[first.SpanIndex].Text[:first.LocalStart] + replacement
	c.Spans[last.SpanIndex].Text = c.Spans[last.SpanIndex].Text[last.LocalEnd:]
	for _, r := range ranges[1 : len(ranges)-1] {
		c.Spans[r.SpanIndex].Text = ""
	}
	return nil
}

// applySingleSpan 在检测器指定的单个文本块内替换 RawText。
func applySingleSpan(c *domain.Container, occ domain.Occurrence, replacement string) error {
	idx := occ.SpanHint
	if idx < 0 || idx >= len(c.Spans) {
		return fmt.Errorf("%w: 文本块索引 %d 超出范围 (共 %d 块)", ErrUnresolved, idx, len(c.Spans))
	}
	text := c.Spans[idx].Text
	if occ.RawText == "" {
		// 空单元格填充：整块写入替换文本
		c.Spans[idx].Text = replacement
		return nil
	}
	pos := strings.Index(text, occ.RawText)
	if pos < 0 {
		return fmt.Errorf("%w: 在文本块 %d 中未找到原文 %q", ErrUnresolved, idx, occ.RawText)
	}
	c.Spans[idx].Text = text[:pos] + replacement + text[pos+len(occ.RawText):]
	return nil
}

// ApplyAll 按 Start 降序逐个替换容器内的占位符，保证未处理占位符的偏移量有效。
// 每次替换后重新构建索引。返回与输入同序的处理结果。
func ApplyAll(c *domain.Container, occs []domain.Occurrence, replacements []string) []domain.Resolution {
	// 降序索引序列，结果仍按输入顺序返回
	order := make([]int, len(occs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return occs[order[a]].Start > occs[order[b]].Start
	})

	results := make([]domain.Resolution, len(occs))
	for _, i := range order {
		occ := occs[i]
		res := domain.Resolution{Occurrence: occ, Replacement: replacements[i], Outcome: domain.OutcomeResolved}
		_, ix := spanindex.Build(c)
		if err := Apply(c, ix, occ, replacements[i]); err != nil {
			res.Outcome = domain.OutcomeUnresolved
			res.Replacement = ""
			res.Reason = err.Error()
		}
		results[i] = res
	}
	return results
}
