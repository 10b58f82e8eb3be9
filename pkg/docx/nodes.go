package docx

import "strings"

// run 一个 <w:r> 文本块。格式属性（rPr）原样保留，从不解析。
// 文本未被修改的 run 重建时逐字节输出原文。
type run struct {
	raw       string // 原始 run XML（虚拟run为空）
	props     string // <w:rPr>...</w:rPr> 原文，可能为空
	text      string // 当前文本
	orig      string // 解析时的文本
	synthetic bool   // 为空单元格补的虚拟run
}

func parseRun(raw string) *run {
	r := &run{raw: raw, props: rPrRe.FindString(raw)}
	for _, m := range wtRe.FindAllStringSubmatch(raw, -1) {
		r.text += unescapeText(m[1])
	}
	r.orig = r.text
	return r
}

func (r *run) dirty() bool {
	return r.text != r.orig
}

func (r *run) rebuild() string {
	if !r.dirty() && !r.synthetic {
		return r.raw
	}
	if r.synthetic && r.text == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<w:r>")
	sb.WriteString(r.props)
	if r.text != "" {
		sb.WriteString(`<w:t xml:space="preserve">`)
		sb.WriteString(escapeText(r.text))
		sb.WriteString("</w:t>")
	}
	sb.WriteString("</w:r>")
	return sb.String()
}

// paragraph 一个 <w:p> 段落，按位置切分为原文片段与 run 的交替序列。
type paragraph struct {
	raw         string
	selfClosing bool
	openTag     string // 自闭合段落改写时使用的开始标签
	chunks      []chunk
	runs        []*run
	synth       *run // 空单元格填充用的虚拟run，重建时插入段尾
}

func parseParagraph(raw string) *paragraph {
	p := &paragraph{raw: raw}
	if strings.HasSuffix(raw, "/>") {
		p.selfClosing = true
		p.openTag = strings.TrimSuffix(raw, "/>") + ">"
		return p
	}
	p.chunks = splitMatches(raw, runRe)
	for i := range p.chunks {
		if !p.chunks[i].isMatch {
			continue
		}
		r := parseRun(p.chunks[i].text)
		p.runs = append(p.runs, r)
	}
	return p
}

func (p *paragraph) dirty() bool {
	for _, r := range p.runs {
		if r.dirty() {
			return true
		}
	}
	return p.synth != nil && p.synth.text != ""
}

func (p *paragraph) rebuild() string {
	if !p.dirty() {
		return p.raw
	}
	if p.selfClosing {
		// 自闭合空段落只有在虚拟run有内容时才需要改写
		return p.openTag + p.synth.rebuild() + "</w:p>"
	}
	var sb strings.Builder
	runIdx := 0
	for _, ch := range p.chunks {
		if ch.isMatch {
			sb.WriteString(p.runs[runIdx].rebuild())
			runIdx++
		} else {
			sb.WriteString(ch.text)
		}
	}
	out := sb.String()
	if p.synth != nil && p.synth.text != "" && strings.HasSuffix(out, "</w:p>") {
		out = out[:len(out)-len("</w:p>")] + p.synth.rebuild() + "</w:p>"
	}
	return out
}

// tableCell 一个 <w:tc> 单元格，内部段落按位置保留。
type tableCell struct {
	chunks []chunk
	paras  []*paragraph
}

func parseCell(raw string) *tableCell {
	c := &tableCell{chunks: splitMatches(raw, paraRe)}
	for i := range c.chunks {
		if !c.chunks[i].isMatch {
			continue
		}
		c.paras = append(c.paras, parseParagraph(c.chunks[i].text))
	}
	return c
}

func (c *tableCell) rebuild() string {
	var sb strings.Builder
	paraIdx := 0
	for _, ch := range c.chunks {
		if ch.isMatch {
			sb.WriteString(c.paras[paraIdx].rebuild())
			paraIdx++
		} else {
			sb.WriteString(ch.text)
		}
	}
	return sb.String()
}

// text 单元格全部段落文本，段落间不加分隔（单元格通常只有一个段落）。
func (c *tableCell) text() string {
	var sb strings.Builder
	for _, p := range c.paras {
		for _, r := range p.runs {
			sb.WriteString(r.text)
		}
	}
	return sb.String()
}

// tableRow 一个 <w:tr> 表格行。
type tableRow struct {
	chunks []chunk
	cells  []*tableCell
}

func parseRow(raw string) *tableRow {
	tr := &tableRow{chunks: splitMatches(raw, tcRe)}
	for i := range tr.chunks {
		if !tr.chunks[i].isMatch {
			continue
		}
		tr.cells = append(tr.cells, parseCell(tr.chunks[i].text))
	}
	return tr
}

func (tr *tableRow) rebuild() string {
	var sb strings.Builder
	cellIdx := 0
	for _, ch := range tr.chunks {
		if ch.isMatch {
			sb.WriteString(tr.cells[cellIdx].rebuild())
			cellIdx++
		} else {
			sb.WriteString(ch.text)
		}
	}
	return sb.String()
}

// tableBlock 一个 <w:tbl> 表格。嵌套表格不展开，按原文透传。
type tableBlock struct {
	chunks []chunk
	rows   []*tableRow
}

func parseTable(raw string) *tableBlock {
	tb := &tableBlock{chunks: splitMatches(raw, trRe)}
	for i := range tb.chunks {
		if !tb.chunks[i].isMatch {
			continue
		}
		tb.rows = append(tb.rows, parseRow(tb.chunks[i].text))
	}
	return tb
}

func (tb *tableBlock) rebuild() string {
	var sb strings.Builder
	rowIdx := 0
	for _, ch := range tb.chunks {
		if ch.isMatch {
			sb.WriteString(tb.rows[rowIdx].rebuild())
			rowIdx++
		} else {
			sb.WriteString(ch.text)
		}
	}
	return sb.String()
}
