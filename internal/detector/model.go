package detector

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// ModelHit 大模型返回的一个候选占位符位置。
type ModelHit struct {
	Before      string `json:"before_text"`
	After       string `json:"after_text"`
	Description string `json:"description"`
}

// ModelAnalyzer 大模型结构化分析接口，由生成服务实现。
type ModelAnalyzer interface {
	DetectPlaceholders(ctx context.Context, sectionText string) ([]ModelHit, error)
}

// ModelDetector 大模型占位符检测器。
//
// 将容器文本交给大模型分析，按返回的前后文把候选位置锚定到逻辑文本上。
// 可靠性最低，合并时优先级排在所有本地检测器之后。默认关闭。
type ModelDetector struct {
	analyzer ModelAnalyzer
}

// NewModelDetector 创建大模型检测器。
func NewModelDetector(analyzer ModelAnalyzer) *ModelDetector {
	return &ModelDetector{analyzer: analyzer}
}

// Name 实现 Detector 接口
func (md *ModelDetector) Name() string {
	return "llm"
}

// Detect 调用大模型分析容器文本。调用失败时返回空列表，不影响其他检测器。
func (md *ModelDetector) Detect(ctx context.Context, c *domain.Container, logicalText string, extractor *ContextExtractor) []domain.Occurrence {
	if md.analyzer == nil || strings.TrimSpace(logicalText) == "" {
		return nil
	}

	hits, err := md.analyzer.DetectPlaceholders(ctx, logicalText)
	if err != nil {
		log.Error().Err(err).Msg("大模型占位符分析失败")
		return nil
	}

	var occs []domain.Occurrence
	for _, hit := range hits {
		occ, ok := md.anchor(c, logicalText, hit)
		if !ok {
			continue
		}
		occ.Context = extractor.Extract(logicalText, occ.Start, occ.End)
		occs = append(occs, occ)
	}
	return occs
}

// anchor 按前后文把候选位置定位到逻辑文本。
// 前后文之间存在非空区间时产出可跨块替换的占位符；
// 定位不到精确区间时退化为替换首个文本块的单块占位符。
func (md *ModelDetector) anchor(c *domain.Container, logicalText string, hit ModelHit) (domain.Occurrence, bool) {
	occ := domain.Occurrence{
		ContainerID: c.ID,
		Kind:        domain.KindModelDetected,
		Label:       "大模型检测占位符",
	}
	if hit.Description != "" {
		occ.Label = "大模型检测占位符: " + hit.Description
	}

	if hit.Before != "" {
		pos := strings.Index(logicalText, hit.Before)
		if pos >= 0 {
			start := pos + len(hit.Before)
			rest := logicalText[start:]
			if hit.After != "" {
				if gap := strings.Index(rest, hit.After); gap > 0 {
					occ.Start = start
					occ.End = start + gap
					occ.RawText = logicalText[occ.Start:occ.End]
					occ.Alignment = domain.AlignmentReliable
					occ.SpanHint = findSpanIndex(c, occ.Start)
					return occ, true
				}
			}
		}
	}

	// 无法精确锚定：退回整块替换首个文本块
	if len(c.Spans) == 0 {
		return occ, false
	}
	occ.Start = 0
	occ.End = len(logicalText)
	occ.RawText = ""
	occ.Alignment = domain.AlignmentSingleSpanOnly
	occ.SpanHint = 0
	return occ, true
}
