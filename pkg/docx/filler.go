package docx

import (
	"fmt"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
)

// FillMarkers 把文档中的 {{标记}} 替换为给定值并另存。
// 用于处理流程的第二步：向已标注中性词的文档回填实际内容。
func FillMarkers(inputPath, outputPath string, markers map[string]string) error {
	reader, err := docx.ReadDocxFile(inputPath)
	if err != nil {
		return fmt.Errorf("打开docx文件失败: %w", err)
	}
	defer reader.Close()

	editable := reader.Editable()
	for marker, value := range markers {
		if err := editable.Replace(marker, value, -1); err != nil {
			return fmt.Errorf("替换标记 %q 失败: %w", marker, err)
		}
		log.Debug().Str("marker", marker).Msg("已替换标记")
	}

	if err := editable.WriteToFile(outputPath); err != nil {
		return fmt.Errorf("保存文档失败: %w", err)
	}
	log.Info().Str("file", outputPath).Int("markers", len(markers)).Msg("标记回填完成")
	return nil
}
