// Package processor 文档处理流水线：检测、合并、生成、替换、保存、报告。
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/momomo623/smart-word-completion/internal/config"
	"github.com/momomo623/smart-word-completion/internal/detector"
	"github.com/momomo623/smart-word-completion/internal/domain"
	"github.com/momomo623/smart-word-completion/internal/merger"
	"github.com/momomo623/smart-word-completion/internal/replacer"
	"github.com/momomo623/smart-word-completion/internal/report"
	"github.com/momomo623/smart-word-completion/internal/spanindex"
	"github.com/momomo623/smart-word-completion/internal/table"
	"github.com/momomo623/smart-word-completion/internal/worker"
	"github.com/momomo623/smart-word-completion/pkg/docx"
)

// Unit 一个独立处理的容器及适配器预先生成的占位符。
type Unit struct {
	Container *domain.Container
	Extra     []domain.Occurrence
}

// Result 整篇文档的处理结果摘要。
type Result struct {
	OutputPath string
	ReportPath string
	Total      int
	Resolved   int
	Unresolved int
	Skipped    int
}

// Report 生成结果摘要文本。
func (r *Result) Report() string {
	return fmt.Sprintf("处理完成!\n- 总共处理了 %d 个占位符（成功 %d，未解决 %d，跳过容器 %d）\n- 输出文件: %s\n- 报告文件: %s",
		r.Total, r.Resolved, r.Unresolved, r.Skipped, r.OutputPath, r.ReportPath)
}

// Processor 文档处理器。
type Processor struct {
	cfg       *config.Config
	detectors []detector.Detector
	adapter   *table.Adapter
	generator domain.Generator
	extractor *detector.ContextExtractor
}

// New 创建文档处理器。
// generator 为 nil 时，所有需要外部生成的占位符都会标记为未解决。
func New(cfg *config.Config, detectors []detector.Detector, gen domain.Generator) *Processor {
	return &Processor{
		cfg:       cfg,
		detectors: detectors,
		adapter:   table.NewAdapter(),
		generator: gen,
		extractor: detector.NewContextExtractor(cfg.ContextWindow),
	}
}

// ProcessDocument 处理一篇文档：检测并替换占位符，保存结果并生成报告。
func (p *Processor) ProcessDocument(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	doc, err := docx.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	units := p.buildUnits(doc)
	results := p.ProcessUnits(ctx, units)

	// 写回修改并保存
	for _, u := range units {
		if err := doc.Commit(u.Container); err != nil {
			return nil, fmt.Errorf("写回容器失败: %w", err)
		}
	}
	if err := doc.Save(outputPath); err != nil {
		return nil, err
	}

	reportPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".md"
	if err := report.Generate(results, reportPath); err != nil {
		return nil, err
	}

	res := &Result{OutputPath: outputPath, ReportPath: reportPath}
	for _, cr := range results {
		if cr.Skipped {
			res.Skipped++
			continue
		}
		for _, r := range cr.Resolutions {
			res.Total++
			if r.Outcome == domain.OutcomeResolved {
				res.Resolved++
			} else {
				res.Unresolved++
			}
		}
	}
	return res, nil
}

// buildUnits 把文档的段落和单元格组装为处理单元。
// 表格适配器为空单元格生成的占位符挂到对应单元格的单元上。
func (p *Processor) buildUnits(doc *docx.Document) []Unit {
	var units []Unit
	for _, c := range doc.Containers() {
		units = append(units, Unit{Container: c})
	}

	cells := doc.Cells()
	adapterCells := make([]table.Cell, 0, len(cells))
	for _, ci := range cells {
		adapterCells = append(adapterCells, table.Cell{
			Container: ci.Container,
			Header:    ci.Header,
			RowText:   ci.RowText,
		})
	}
	extraByID := make(map[domain.ContainerID][]domain.Occurrence)
	for _, occ := range p.adapter.DetectEmptyCells(adapterCells) {
		extraByID[occ.ContainerID] = append(extraByID[occ.ContainerID], occ)
	}
	for _, ci := range cells {
		units = append(units, Unit{Container: ci.Container, Extra: extraByID[ci.Container.ID]})
	}
	return units
}

// ProcessUnits 并发处理所有单元，结果按输入顺序（即文档顺序）返回。
// 容器之间没有共享可变状态，单容器内的替换严格串行。
func (p *Processor) ProcessUnits(ctx context.Context, units []Unit) []domain.ContainerResult {
	pool := worker.NewPool(p.cfg.MaxConcurrent, func(ctx context.Context, u Unit) (domain.ContainerResult, error) {
		return p.processUnit(ctx, u), nil
	})
	tasks := pool.Execute(ctx, units)

	results := make([]domain.ContainerResult, len(tasks))
	for i, t := range tasks {
		results[i] = t.Result
	}
	return results
}

// processUnit 处理单个容器：建索引、检测、合并、生成、按降序替换。
func (p *Processor) processUnit(ctx context.Context, u Unit) domain.ContainerResult {
	c := u.Container
	cr := domain.ContainerResult{ID: c.ID}

	logical, ix := spanindex.Build(c)

	var occs []domain.Occurrence
	for _, det := range p.detectors {
		found := det.Detect(ctx, c, logical, p.extractor)
		if len(found) > 0 {
			log.Debug().Str("detector", det.Name()).Int("count", len(found)).Msg("检测到占位符")
		}
		occs = append(occs, found...)
	}
	occs = append(occs, u.Extra...)

	// 检测器不允许修改文本块；这里的校验失败说明完整性被破坏
	if err := spanindex.Verify(c, ix); err != nil {
		log.Error().Err(err).Msg("跳过容器")
		cr.Skipped = true
		cr.SkipReason = err.Error()
		return cr
	}

	merged := merger.Merge(occs)
	if len(merged) == 0 {
		return cr
	}

	resolutions := make([]domain.Resolution, len(merged))
	var applyOccs []domain.Occurrence
	var applyTexts []string
	var applyTerms []string
	var applyIdx []int

	for i, occ := range merged {
		term, err := p.resolveTerm(ctx, occ)
		if err != nil {
			resolutions[i] = domain.Resolution{
				Occurrence: occ,
				Outcome:    domain.OutcomeUnresolved,
				Reason:     err.Error(),
			}
			continue
		}
		applyOccs = append(applyOccs, occ)
		applyTexts = append(applyTexts, fmt.Sprintf(p.cfg.OutputFormat, term))
		applyTerms = append(applyTerms, term)
		applyIdx = append(applyIdx, i)
	}

	applied := replacer.ApplyAll(c, applyOccs, applyTexts)
	for j, res := range applied {
		res.Term = applyTerms[j]
		if res.Outcome == domain.OutcomeUnresolved {
			res.Term = ""
		}
		resolutions[applyIdx[j]] = res
	}

	cr.Resolutions = resolutions
	return cr
}

// resolveTerm 确定占位符的中性词：有替换提示时直接使用（跳过外部生成），
// 否则调用生成服务。
func (p *Processor) resolveTerm(ctx context.Context, occ domain.Occurrence) (string, error) {
	if occ.ReplacementHint != "" {
		return occ.ReplacementHint, nil
	}
	if p.generator == nil {
		return "", fmt.Errorf("未配置生成服务")
	}
	term, err := p.generator.NeutralTerm(ctx, domain.TermRequest{
		LineText:   occ.Context.Line,
		BeforeText: occ.Context.Before,
		AfterText:  occ.Context.After,
	})
	if err != nil {
		return "", fmt.Errorf("生成中性词失败: %w", err)
	}
	return term, nil
}
