// Package report 生成处理结果的markdown报告。
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// Generate 把整篇文档的处理结果写成markdown报告。
// 每个占位符列出类型、位置、生成的中性词和处理结果；
// 因完整性校验被跳过的容器单独列出。
func Generate(results []domain.ContainerResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Word文档中性词处理报告\n\n")

	total, resolved, unresolved := 0, 0, 0
	var skipped []domain.ContainerResult
	for _, cr := range results {
		if cr.Skipped {
			skipped = append(skipped, cr)
			continue
		}
		for _, res := range cr.Resolutions {
			total++
			if res.Outcome == domain.OutcomeResolved {
				resolved++
			} else {
				unresolved++
			}
		}
	}
	sb.WriteString(fmt.Sprintf("总共处理 %d 个占位符，成功 %d 个，未解决 %d 个\n\n", total, resolved, unresolved))

	idx := 0
	for _, cr := range results {
		if cr.Skipped {
			continue
		}
		for _, res := range cr.Resolutions {
			idx++
			occ := res.Occurrence
			sb.WriteString(fmt.Sprintf("## 占位符 %d: %s\n\n", idx, occ.Label))
			sb.WriteString(fmt.Sprintf("- 类型: %s\n", occ.Kind))
			if occ.ContainerID.Kind == domain.KindTableCell {
				sb.WriteString(fmt.Sprintf("- 单元格位置: 表格%d 第%d行 第%d列\n",
					occ.ContainerID.Table, occ.ContainerID.Row, occ.ContainerID.Col))
			} else {
				sb.WriteString(fmt.Sprintf("- 段落索引: %d\n", occ.ContainerID.Paragraph))
				sb.WriteString(fmt.Sprintf("- 位置: %d-%d\n", occ.Start, occ.End))
			}
			if res.Outcome == domain.OutcomeResolved {
				sb.WriteString(fmt.Sprintf("- 生成的中性词: %s\n", res.Term))
				sb.WriteString(fmt.Sprintf("- 写入内容: %s\n\n", res.Replacement))
			} else {
				sb.WriteString(fmt.Sprintf("- 处理结果: 未解决（%s）\n\n", res.Reason))
			}
			sb.WriteString("### 上下文\n\n")
			sb.WriteString(fmt.Sprintf("前文: %s\n\n", occ.Context.Before))
			sb.WriteString(fmt.Sprintf("后文: %s\n\n", occ.Context.After))
			sb.WriteString("---\n\n")
		}
	}

	if len(skipped) > 0 {
		sb.WriteString("## 跳过的容器\n\n")
		for _, cr := range skipped {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", describeContainer(cr.ID), cr.SkipReason))
		}
		sb.WriteString("\n")
	}

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	log.Info().Str("file", outputPath).Msg("已生成处理报告")
	return nil
}

func describeContainer(id domain.ContainerID) string {
	if id.Kind == domain.KindTableCell {
		return fmt.Sprintf("表格%d[%d,%d]", id.Table, id.Row, id.Col)
	}
	return fmt.Sprintf("段落%d", id.Paragraph)
}
