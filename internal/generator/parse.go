package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/momomo623/smart-word-completion/internal/detector"
)

// ParseNeutralTerm 从大模型回复中提取中性词。
// 优先解析 ```yaml ... ``` 代码块中的 neutral_term 字段；
// 没有yaml块时取最后一个 "####" 分隔符之后的文本。
func ParseNeutralTerm(resp string) (string, error) {
	if block, ok := yamlBlock(resp); ok {
		var parsed struct {
			NeutralTerm string `yaml:"neutral_term"`
		}
		if err := yaml.Unmarshal([]byte(block), &parsed); err != nil {
			return "", fmt.Errorf("解析yaml块失败: %w", err)
		}
		if parsed.NeutralTerm == "" {
			return "", fmt.Errorf("yaml块中缺少 neutral_term 字段")
		}
		return strings.TrimSpace(parsed.NeutralTerm), nil
	}

	if idx := strings.LastIndex(resp, "####"); idx >= 0 {
		term := strings.TrimSpace(resp[idx+len("####"):])
		if term != "" {
			return term, nil
		}
	}
	return "", fmt.Errorf("回复中未找到中性词: %q", truncate(resp, 120))
}

// yamlBlock 提取回复中第一个 ```yaml 代码块的内容。
func yamlBlock(resp string) (string, bool) {
	start := strings.Index(resp, "```yaml")
	if start < 0 {
		return "", false
	}
	rest := resp[start+len("```yaml"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// ParseModelHits 解析大模型占位符分析的JSON回复。
// 兼容两种形态：{"placeholders": [...]} 对象和裸数组，
// 以及中英文两套字段名。
func ParseModelHits(resp string) ([]detector.ModelHit, error) {
	payload := extractJSON(resp)
	if payload == "" {
		return nil, fmt.Errorf("回复中未找到JSON内容: %q", truncate(resp, 120))
	}

	var items []map[string]any
	if strings.HasPrefix(payload, "{") {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, fmt.Errorf("解析JSON对象失败: %w", err)
		}
		raw, ok := wrapper["placeholders"]
		if !ok {
			return nil, nil
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("解析 placeholders 数组失败: %w", err)
		}
	} else {
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			return nil, fmt.Errorf("解析JSON数组失败: %w", err)
		}
	}

	hits := make([]detector.ModelHit, 0, len(items))
	for _, item := range items {
		hit := detector.ModelHit{
			Before:      firstString(item, "before_text", "前文"),
			After:       firstString(item, "after_text", "后文"),
			Description: firstString(item, "description", "位置描述"),
		}
		if hit.Before == "" && hit.After == "" && hit.Description == "" {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// extractJSON 从回复中提取JSON对象或数组部分。
func extractJSON(resp string) string {
	resp = strings.TrimSpace(resp)
	if strings.HasPrefix(resp, "{") || strings.HasPrefix(resp, "[") {
		return resp
	}
	for _, pair := range [][2]byte{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(resp, pair[0])
		end := strings.LastIndexByte(resp, pair[1])
		if start >= 0 && end > start {
			return resp[start : end+1]
		}
	}
	return ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
