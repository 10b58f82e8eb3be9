// Package docx 基于ZIP文件结构的DOCX文档模型。
//
// 只解析 word/document.xml 的段落/表格/run 结构，run 的格式属性
// 作为不透明标记原样保留；保存时未修改的 run 逐字节输出原文，
// 其余ZIP条目原样复制。
package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

const documentEntry = "word/document.xml"

// docNode document.xml 的一个顶层片段：原文、段落或表格。
type docNode struct {
	literal string
	para    *paragraph
	table   *tableBlock
}

// CellInfo 一个表格单元格容器及其表格坐标和表头信息。
type CellInfo struct {
	Container *domain.Container
	Table     int
	Row       int
	Col       int
	Header    string // 第一行同列单元格文本
	RowText   string // 整行文本，列间以 " | " 连接
}

// Document 一个打开的DOCX文档。
type Document struct {
	srcPath string
	entries []*zip.File
	reader  *zip.ReadCloser
	nodes   []docNode

	paragraphs []*paragraph
	tables     []*tableBlock

	containers []*domain.Container
	cells      []CellInfo
	runsByID   map[domain.ContainerID][]*run
}

// Open 打开DOCX文档并解析 document.xml 结构。
func Open(filePath string) (*Document, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开DOCX文件失败: %w", err)
	}

	d := &Document{
		srcPath:  filePath,
		reader:   reader,
		runsByID: make(map[domain.ContainerID][]*run),
	}

	var docXML string
	for _, file := range reader.File {
		d.entries = append(d.entries, file)
		if file.Name == documentEntry {
			rc, err := file.Open()
			if err != nil {
				reader.Close()
				return nil, fmt.Errorf("打开 %s 失败: %w", documentEntry, err)
			}
			content, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				reader.Close()
				return nil, fmt.Errorf("读取 %s 失败: %w", documentEntry, err)
			}
			docXML = string(content)
		}
	}
	if docXML == "" {
		reader.Close()
		return nil, fmt.Errorf("未找到 %s", documentEntry)
	}

	d.parse(docXML)
	d.assemble()
	log.Info().Str("file", filePath).
		Int("paragraphs", len(d.paragraphs)).
		Int("tables", len(d.tables)).
		Msg("已加载文档")
	return d, nil
}

// Close 释放底层ZIP读取器。
func (d *Document) Close() error {
	if d.reader == nil {
		return nil
	}
	err := d.reader.Close()
	d.reader = nil
	return err
}

// parse 把 document.xml 切分为 原文/段落/表格 顶层片段。
// 先切表格再切段落，避免单元格内的段落被当作顶层段落。
func (d *Document) parse(docXML string) {
	for _, top := range splitMatches(docXML, tblRe) {
		if top.isMatch {
			tb := parseTable(top.text)
			d.tables = append(d.tables, tb)
			d.nodes = append(d.nodes, docNode{table: tb})
			continue
		}
		for _, ch := range splitMatches(top.text, paraRe) {
			if ch.isMatch {
				p := parseParagraph(ch.text)
				d.paragraphs = append(d.paragraphs, p)
				d.nodes = append(d.nodes, docNode{para: p})
			} else {
				d.nodes = append(d.nodes, docNode{literal: ch.text})
			}
		}
	}
}

// assemble 把解析结果组装为核心引擎使用的容器视图。
func (d *Document) assemble() {
	for i, p := range d.paragraphs {
		id := domain.ContainerID{Kind: domain.KindParagraph, Paragraph: i}
		d.containers = append(d.containers, d.makeContainer(id, p))
	}

	for ti, tb := range d.tables {
		var headers []string
		if len(tb.rows) > 0 {
			for _, cell := range tb.rows[0].cells {
				headers = append(headers, strings.TrimSpace(cell.text()))
			}
		}
		for ri, row := range tb.rows {
			var rowTexts []string
			for _, cell := range row.cells {
				rowTexts = append(rowTexts, strings.TrimSpace(cell.text()))
			}
			rowText := strings.Join(rowTexts, " | ")

			for ci, cell := range row.cells {
				id := domain.ContainerID{Kind: domain.KindTableCell, Table: ti, Row: ri, Col: ci}
				c := d.makeCellContainer(id, cell)
				header := ""
				if ci < len(headers) {
					header = headers[ci]
				}
				d.cells = append(d.cells, CellInfo{
					Container: c,
					Table:     ti,
					Row:       ri,
					Col:       ci,
					Header:    header,
					RowText:   rowText,
				})
			}
		}
	}
}

// makeContainer 从段落构建容器并登记run映射。
func (d *Document) makeContainer(id domain.ContainerID, p *paragraph) *domain.Container {
	c := &domain.Container{ID: id}
	for _, r := range p.runs {
		c.Spans = append(c.Spans, domain.Span{Text: r.text, Format: domain.FormatToken(r.props)})
	}
	d.runsByID[id] = p.runs
	return c
}

// makeCellContainer 从单元格构建容器。
// 没有任何run的空单元格补一个虚拟run，让填充有落点。
func (d *Document) makeCellContainer(id domain.ContainerID, cell *tableCell) *domain.Container {
	c := &domain.Container{ID: id}
	var runs []*run
	for _, p := range cell.paras {
		for _, r := range p.runs {
			c.Spans = append(c.Spans, domain.Span{Text: r.text, Format: domain.FormatToken(r.props)})
			runs = append(runs, r)
		}
	}
	if len(runs) == 0 && len(cell.paras) > 0 {
		synth := &run{synthetic: true}
		cell.paras[0].synth = synth
		c.Spans = append(c.Spans, domain.Span{Text: "", Format: ""})
		runs = append(runs, synth)
	}
	d.runsByID[id] = runs
	return c
}

// Containers 返回文档顺序排列的段落容器。
func (d *Document) Containers() []*domain.Container {
	return d.containers
}

// Cells 返回文档中全部表格单元格。
func (d *Document) Cells() []CellInfo {
	return d.cells
}

// Commit 把容器的文本块内容写回底层run。
// 核心引擎完成替换后必须调用，否则保存时丢失修改。
func (d *Document) Commit(c *domain.Container) error {
	runs, ok := d.runsByID[c.ID]
	if !ok {
		return fmt.Errorf("未知容器: %+v", c.ID)
	}
	if len(runs) != len(c.Spans) {
		return fmt.Errorf("容器 %+v 的文本块数量不匹配: %d != %d", c.ID, len(c.Spans), len(runs))
	}
	for i, r := range runs {
		r.text = c.Spans[i].Text
	}
	return nil
}

// DocumentXML 重建 document.xml 内容。
func (d *Document) DocumentXML() string {
	var sb strings.Builder
	for _, node := range d.nodes {
		switch {
		case node.para != nil:
			sb.WriteString(node.para.rebuild())
		case node.table != nil:
			sb.WriteString(node.table.rebuild())
		default:
			sb.WriteString(node.literal)
		}
	}
	return sb.String()
}

// Save 将文档保存到 outputPath。
// word/document.xml 使用重建内容，其余ZIP条目逐字节复制。
func (d *Document) Save(outputPath string) error {
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer outputFile.Close()

	zipWriter := zip.NewWriter(outputFile)
	defer zipWriter.Close()

	for _, file := range d.entries {
		var content []byte
		if file.Name == documentEntry {
			content = []byte(d.DocumentXML())
		} else {
			rc, err := file.Open()
			if err != nil {
				return fmt.Errorf("打开条目 %s 失败: %w", file.Name, err)
			}
			content, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("读取条目 %s 失败: %w", file.Name, err)
			}
		}

		header := file.FileHeader
		writer, err := zipWriter.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("创建ZIP条目失败: %w", err)
		}
		if _, err := writer.Write(content); err != nil {
			return fmt.Errorf("写入条目 %s 失败: %w", file.Name, err)
		}
	}

	log.Info().Str("file", outputPath).Msg("已保存文档")
	return nil
}
