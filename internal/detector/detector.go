// Package detector 定义占位符检测器契约及内置检测器实现。
// 检测器只读取容器，产出逻辑文本偏移量表示的占位符报告，从不修改文本块。
package detector

import (
	"context"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// Detector 占位符检测器契约。
// 实现可以在无法确定文本块对齐时，将占位符标记为 AlignmentSingleSpanOnly
// 并通过 SpanHint 指定目标文本块。
type Detector interface {
	// Name 检测器名称（用于日志和报告）
	Name() string
	// Detect 在容器的逻辑文本中检测占位符。
	Detect(ctx context.Context, c *domain.Container, logicalText string, extractor *ContextExtractor) []domain.Occurrence
}

// spanStarts 计算每个文本块在逻辑文本中的起始偏移。
func spanStarts(c *domain.Container) []int {
	starts := make([]int, len(c.Spans))
	pos := 0
	for i := range c.Spans {
		starts[i] = pos
		pos += len(c.Spans[i].Text)
	}
	return starts
}

// findSpanIndex 返回逻辑偏移 start 所在的文本块索引，未命中时返回 0。
func findSpanIndex(c *domain.Container, start int) int {
	pos := 0
	for i := range c.Spans {
		next := pos + len(c.Spans[i].Text)
		if pos <= start && start < next {
			return i
		}
		pos = next
	}
	return 0
}
