package domain

import "context"

// FormatToken 不透明的格式标记，由文档模型层生成和解释。
// 核心引擎只负责原样保留，不解析其内容。
type FormatToken string

// Span 容器内的一段格式一致的文本块。
type Span struct {
	Text   string
	Format FormatToken
}

// ContainerKind 容器类型
type ContainerKind int

const (
	KindParagraph ContainerKind = iota // 普通段落
	KindTableCell                      // 表格单元格
)

// ContainerID 容器的稳定标识。
// 段落使用文档序索引，表格单元格使用 表格/行/列 坐标。
type ContainerID struct {
	Kind      ContainerKind
	Paragraph int
	Table     int
	Row       int
	Col       int
}

// Container 一个段落或单段落表格单元格，持有有序的文本块列表。
type Container struct {
	ID    ContainerID
	Spans []Span
}

// LogicalText 按索引顺序拼接所有文本块的文本。
func (c *Container) LogicalText() string {
	total := 0
	for i := range c.Spans {
		total += len(c.Spans[i].Text)
	}
	buf := make([]byte, 0, total)
	for i := range c.Spans {
		buf = append(buf, c.Spans[i].Text...)
	}
	return string(buf)
}

// OccurrenceKind 占位符类型，同时决定合并时的优先级。
type OccurrenceKind int

const (
	KindTableCellFill  OccurrenceKind = iota // 表格空单元格（优先级最高）
	KindCharacterRun                         // 字符占位符（下划线、xxx 等）
	KindUnderlineSpace                       // 下划线格式空格
	KindModelDetected                        // 大模型检测（优先级最低）
)

// String 返回占位符类型的可读名称
func (k OccurrenceKind) String() string {
	switch k {
	case KindTableCellFill:
		return "table"
	case KindCharacterRun:
		return "character"
	case KindUnderlineSpace:
		return "underline_space"
	case KindModelDetected:
		return "llm_detected"
	default:
		return "unknown"
	}
}

// Priority 检测器可靠性排序，数值越小越优先。
func (k OccurrenceKind) Priority() int {
	return int(k)
}

// Alignment 占位符偏移量与文本块边界的对应关系是否可信。
type Alignment int

const (
	// AlignmentReliable 偏移量可精确映射到文本块，走跨块替换路径。
	AlignmentReliable Alignment = iota
	// AlignmentSingleSpanOnly 映射不可信，只在检测器指定的单个文本块内做文本替换。
	AlignmentSingleSpanOnly
)

// Context 占位符周围的有界上下文，供生成服务使用。
type Context struct {
	Before string // 占位符前文
	After  string // 占位符后文
	Line   string // 占位符所在的整行文本
}

// Occurrence 一次检测到的占位符。
// Start/End 是逻辑文本中的半开区间 [Start, End)。
type Occurrence struct {
	ContainerID     ContainerID
	Start           int
	End             int
	RawText         string // 被替换的原始字符
	Kind            OccurrenceKind
	Alignment       Alignment
	SpanHint        int    // Alignment 为 SingleSpanOnly 时检测器指定的文本块索引
	Context         Context
	ReplacementHint string // 非空时直接作为替换内容，跳过外部生成（如表头）
	Label           string // 占位符的显示名称（用于报告）
}

// TermRequest 中性词生成请求。
type TermRequest struct {
	LineText   string
	BeforeText string
	AfterText  string
}

// Generator 外部生成协作方：根据上下文生成中性词。
// 失败是可恢复的，对应占位符标记为未解决。
type Generator interface {
	NeutralTerm(ctx context.Context, req TermRequest) (string, error)
}

// Outcome 单个占位符的处理结果
type Outcome int

const (
	OutcomeResolved   Outcome = iota // 替换成功
	OutcomeUnresolved                // 原文未找到或生成失败，原样保留
)

// Resolution 占位符及其最终处理结果。
type Resolution struct {
	Occurrence  Occurrence
	Outcome     Outcome
	Replacement string // 实际写入的文本（未解决时为空）
	Term        string // 生成的中性词（表格占位符为表头）
	Reason      string // 未解决原因
}

// ContainerResult 单个容器的处理结果。
type ContainerResult struct {
	ID          ContainerID
	Resolutions []Resolution
	Skipped     bool // 完整性校验失败时整个容器被跳过
	SkipReason  string
}
