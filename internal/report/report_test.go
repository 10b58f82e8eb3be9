package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

func TestGenerate(t *testing.T) {
	results := []domain.ContainerResult{
		{
			ID: domain.ContainerID{Kind: domain.KindParagraph, Paragraph: 2},
			Resolutions: []domain.Resolution{
				{
					Occurrence: domain.Occurrence{
						ContainerID: domain.ContainerID{Kind: domain.KindParagraph, Paragraph: 2},
						Start:       9,
						End:         14,
						Kind:        domain.KindCharacterRun,
						Label:       "下划线占位符",
						Context:     domain.Context{Before: "姓名：", After: "（盖章）"},
					},
					Outcome:     domain.OutcomeResolved,
					Term:        "姓名",
					Replacement: "{{姓名}}",
				},
			},
		},
		{
			ID: domain.ContainerID{Kind: domain.KindTableCell, Table: 0, Row: 1, Col: 1},
			Resolutions: []domain.Resolution{
				{
					Occurrence: domain.Occurrence{
						ContainerID: domain.ContainerID{Kind: domain.KindTableCell, Table: 0, Row: 1, Col: 1},
						Kind:        domain.KindTableCellFill,
						Label:       "年龄",
					},
					Outcome: domain.OutcomeUnresolved,
					Reason:  "生成中性词失败: 接口超时",
				},
			},
		},
		{
			ID:         domain.ContainerID{Kind: domain.KindParagraph, Paragraph: 7},
			Skipped:    true,
			SkipReason: "容器完整性校验失败",
		},
	}

	path := filepath.Join(t.TempDir(), "report", "out.md")
	require.NoError(t, Generate(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# Word文档中性词处理报告")
	assert.Contains(t, content, "总共处理 2 个占位符，成功 1 个，未解决 1 个")
	assert.Contains(t, content, "下划线占位符")
	assert.Contains(t, content, "生成的中性词: 姓名")
	assert.Contains(t, content, "写入内容: {{姓名}}")
	assert.Contains(t, content, "单元格位置: 表格0 第1行 第1列")
	assert.Contains(t, content, "未解决（生成中性词失败: 接口超时）")
	assert.Contains(t, content, "## 跳过的容器")
	assert.Contains(t, content, "段落7: 容器完整性校验失败")
}

func TestGenerate_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, Generate(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "总共处理 0 个占位符")
}
