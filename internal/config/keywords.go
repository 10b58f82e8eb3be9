package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Keyword 一个填充关键词配置项
type Keyword struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeywordConfig 填充关键词配置文件结构（apply 子命令使用）
type KeywordConfig struct {
	ProjectName string    `json:"project_name"`
	Keywords    []Keyword `json:"keywords"`
}

// LoadKeywordConfig 从 JSON 文件加载填充关键词配置。
func LoadKeywordConfig(filePath string) (*KeywordConfig, error) {
	if filePath == "" {
		return nil, fmt.Errorf("配置文件路径不能为空")
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("配置文件不存在: %s", filePath)
	}
	if ext := filepath.Ext(filePath); ext != ".json" {
		return nil, fmt.Errorf("配置文件必须是 JSON 格式，当前文件: %s", ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg KeywordConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return &cfg, nil
}

// Validate 验证配置的有效性。
func (cfg *KeywordConfig) Validate() error {
	if len(cfg.Keywords) == 0 {
		return fmt.Errorf("关键词列表不能为空")
	}
	keySet := make(map[string]bool)
	for i, kw := range cfg.Keywords {
		if kw.Key == "" {
			return fmt.Errorf("第 %d 个关键词的 key 不能为空", i+1)
		}
		if keySet[kw.Key] {
			return fmt.Errorf("关键词重复: %s", kw.Key)
		}
		keySet[kw.Key] = true
	}
	return nil
}

// MarkerMap 将关键词列表转换为 {{key}} -> value 映射表。
// key 已经带有 {{}} 包裹时直接使用。
func (cfg *KeywordConfig) MarkerMap() map[string]string {
	markers := make(map[string]string, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		key := kw.Key
		if !strings.HasPrefix(key, "{{") || !strings.HasSuffix(key, "}}") {
			key = "{{" + key + "}}"
		}
		markers[key] = kw.Value
	}
	return markers
}
