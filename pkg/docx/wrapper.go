package docx

import (
	"fmt"

	"github.com/gomutex/godocx"
)

// ValidateDocument 用 godocx 打开文档做结构完整性检查。
// 只验证不修改，适合在处理前快速失败。
func ValidateDocument(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("输入路径不能为空")
	}
	if _, err := godocx.OpenDocument(filePath); err != nil {
		return fmt.Errorf("无法打开文档: %w", err)
	}
	return nil
}
