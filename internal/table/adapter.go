// Package table 表格单元格适配器：把单元格视为嵌套容器，
// 为空单元格生成携带表头替换提示的占位符。
package table

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// Cell 一个表格单元格容器及其表格上下文。
type Cell struct {
	Container *domain.Container
	Header    string // 所在列的表头文本（第一行同列单元格）
	RowText   string // 整行文本（列间以分隔符连接，仅用于上下文）
}

// Adapter 表格占位符检测适配器。
type Adapter struct{}

// NewAdapter 创建表格适配器。
func NewAdapter() *Adapter {
	return &Adapter{}
}

// meaninglessHeaders 不能作为替换提示的表头
var meaninglessHeaders = map[string]bool{"": true, "-": true, "*": true, "#": true}

// DetectEmptyCells 为表头非空的空单元格生成占位符。
// 占位符使用退化区间 [0,0) 和单块替换路径，替换提示为列表头文本，
// 后续流程据此跳过外部生成。
func (a *Adapter) DetectEmptyCells(cells []Cell) []domain.Occurrence {
	var occs []domain.Occurrence
	for _, cell := range cells {
		if cell.Container == nil {
			continue
		}
		if cell.Container.ID.Row == 0 {
			continue // 表头行本身不是填充目标
		}
		if strings.TrimSpace(cell.Container.LogicalText()) != "" {
			continue // 只处理空单元格
		}
		header := strings.TrimSpace(cell.Header)
		if meaninglessHeaders[header] {
			log.Debug().
				Int("table", cell.Container.ID.Table).
				Int("row", cell.Container.ID.Row).
				Int("col", cell.Container.ID.Col).
				Msg("表头无意义，跳过空单元格")
			continue
		}

		occs = append(occs, domain.Occurrence{
			ContainerID:     cell.Container.ID,
			Start:           0,
			End:             0,
			RawText:         "",
			Kind:            domain.KindTableCellFill,
			Alignment:       domain.AlignmentSingleSpanOnly,
			SpanHint:        0,
			ReplacementHint: header,
			Label:           header,
			Context: domain.Context{
				Before: "表格'" + header + "'列",
				Line:   cell.RowText,
			},
		})
	}
	log.Info().Int("count", len(occs)).Msg("表格适配器检测到空单元格占位符")
	return occs
}
