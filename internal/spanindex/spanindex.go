// Package spanindex 构建容器逻辑文本与物理文本块之间的偏移映射。
package spanindex

import (
	"errors"
	"fmt"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// ErrIntegrity 容器在索引构建后被修改，偏移量不再可信。
var ErrIntegrity = errors.New("容器完整性校验失败")

// SpanRange 逻辑区间在某个文本块上的投影。
// LocalStart/LocalEnd 是该文本块内部的半开区间。
type SpanRange struct {
	SpanIndex  int
	LocalStart int
	LocalEnd   int
}

// Index 容器逻辑文本到文本块的只读偏移索引。
// 文本块被修改后索引即失效，需要重新构建。
type Index struct {
	logical string
	starts  []int // 每个文本块在逻辑文本中的起始偏移
	lens    []int // 每个文本块的文本字节长度
}

// Build 为容器构建偏移索引，返回逻辑文本和索引。
// 零个文本块的容器得到空逻辑文本和空索引。
func Build(c *domain.Container) (string, *Index) {
	ix := &Index{
		starts: make([]int, len(c.Spans)),
		lens:   make([]int, len(c.Spans)),
	}
	pos := 0
	for i := range c.Spans {
		ix.starts[i] = pos
		ix.lens[i] = len(c.Spans[i].Text)
		pos += ix.lens[i]
	}
	ix.logical = c.LogicalText()
	return ix.logical, ix
}

// LogicalText 返回构建时记录的逻辑文本。
func (ix *Index) LogicalText() string {
	return ix.logical
}

// SpanCount 返回文本块数量。
func (ix *Index) SpanCount() int {
	return len(ix.starts)
}

// SpanStart 返回指定文本块在逻辑文本中的起始偏移。
func (ix *Index) SpanStart(i int) int {
	return ix.starts[i]
}

// SpansCovering 返回与逻辑区间 [start, end) 有交集的文本块投影列表，按块序排列。
// 零长度文本块不产生投影。区间越界或为空时返回 nil。
func (ix *Index) SpansCovering(start, end int) []SpanRange {
	if start < 0 || end > len(ix.logical) || start >= end {
		return nil
	}
	var ranges []SpanRange
	for i := range ix.starts {
		spanStart := ix.starts[i]
		spanEnd := spanStart + ix.lens[i]
		if spanEnd <= start {
			continue
		}
		if spanStart >= end {
			break
		}
		if ix.lens[i] == 0 {
			continue
		}
		localStart := 0
		if start > spanStart {
			localStart = start - spanStart
		}
		localEnd := ix.lens[i]
		if end < spanEnd {
			localEnd = end - spanStart
		}
		ranges = append(ranges, SpanRange{SpanIndex: i, LocalStart: localStart, LocalEnd: localEnd})
	}
	return ranges
}

// Verify 校验容器当前文本与索引记录的逻辑文本一致。
// 不一致说明容器在索引构建后被修改过，属于完整性破坏。
func Verify(c *domain.Container, ix *Index) error {
	if got := c.LogicalText(); got != ix.logical {
		return fmt.Errorf("%w: 文本块拼接结果与索引记录不一致 (索引 %d 字节, 实际 %d 字节)",
			ErrIntegrity, len(ix.logical), len(got))
	}
	return nil
}
