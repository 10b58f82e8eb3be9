package docx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
const docFooter = `</w:body></w:document>`

// writeDocx 生成一个只含 document.xml 的最小DOCX文件
func writeDocx(t *testing.T, bodyXML string) (string, string) {
	t.Helper()
	docXML := docHeader + bodyXML + docFooter

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	w, err = zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(docXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path, docXML
}

const sampleParagraph = `<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
	`<w:r><w:rPr><w:b/></w:rPr><w:t>姓名：</w:t></w:r>` +
	`<w:r><w:t>_____</w:t></w:r></w:p>`

func TestOpen_Paragraphs(t *testing.T) {
	path, _ := writeDocx(t, sampleParagraph)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	containers := d.Containers()
	require.Len(t, containers, 1)
	c := containers[0]
	assert.Equal(t, domain.KindParagraph, c.ID.Kind)
	require.Len(t, c.Spans, 2)
	assert.Equal(t, "姓名：", c.Spans[0].Text)
	assert.Equal(t, "_____", c.Spans[1].Text)
	assert.Equal(t, "姓名：_____", c.LogicalText())
	// 格式标记携带run属性原文
	assert.Contains(t, string(c.Spans[0].Format), "<w:b/>")
	assert.Empty(t, string(c.Spans[1].Format))
}

// TestDocumentXML_Untouched 未修改的文档重建结果与原文逐字节一致
func TestDocumentXML_Untouched(t *testing.T) {
	body := sampleParagraph +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>表头</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p/>`
	path, docXML := writeDocx(t, body)

	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, docXML, d.DocumentXML())
}

// TestCommit_OnlyDirtyRunsRewritten 只有被修改的run被重写，其余run原样输出
func TestCommit_OnlyDirtyRunsRewritten(t *testing.T) {
	path, _ := writeDocx(t, sampleParagraph)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	c := d.Containers()[0]
	c.Spans[1].Text = "{{姓名}}"
	require.NoError(t, d.Commit(c))

	out := d.DocumentXML()
	// 未修改的run保持原文
	assert.Contains(t, out, `<w:r><w:rPr><w:b/></w:rPr><w:t>姓名：</w:t></w:r>`)
	// 被修改的run带空白保留标记重写
	assert.Contains(t, out, `<w:r><w:t xml:space="preserve">{{姓名}}</w:t></w:r>`)
	assert.NotContains(t, out, "_____")
}

// TestCommit_PreservesFormatting 被修改的run保留其原始格式属性
func TestCommit_PreservesFormatting(t *testing.T) {
	body := `<w:p><w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>    </w:t></w:r></w:p>`
	path, _ := writeDocx(t, body)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	c := d.Containers()[0]
	c.Spans[0].Text = "{{日期}}"
	require.NoError(t, d.Commit(c))

	assert.Contains(t, d.DocumentXML(),
		`<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t xml:space="preserve">{{日期}}</w:t></w:r>`)
}

func TestCommit_Errors(t *testing.T) {
	path, _ := writeDocx(t, sampleParagraph)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	t.Run("未知容器", func(t *testing.T) {
		bad := &domain.Container{ID: domain.ContainerID{Kind: domain.KindParagraph, Paragraph: 99}}
		assert.Error(t, d.Commit(bad))
	})

	t.Run("文本块数量不匹配", func(t *testing.T) {
		c := &domain.Container{ID: d.Containers()[0].ID, Spans: []domain.Span{{Text: "x"}}}
		assert.Error(t, d.Commit(c))
	})
}

const sampleTable = `<w:tbl>` +
	`<w:tr><w:tc><w:p><w:r><w:t>姓名</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>年龄</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>张三</w:t></w:r></w:p></w:tc><w:tc><w:p/></w:tc></w:tr>` +
	`</w:tbl>`

func TestOpen_TableCells(t *testing.T) {
	path, _ := writeDocx(t, sampleTable)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	cells := d.Cells()
	require.Len(t, cells, 4)

	// 单元格内段落不得出现在顶层段落中
	assert.Empty(t, d.Containers())

	assert.Equal(t, "姓名", cells[0].Header)
	assert.Equal(t, "年龄", cells[1].Header)
	assert.Equal(t, "张三", cells[2].Container.LogicalText())
	assert.Equal(t, "张三 | ", cells[2].RowText)

	empty := cells[3]
	assert.Equal(t, "年龄", empty.Header)
	assert.Equal(t, 1, empty.Row)
	assert.Equal(t, 1, empty.Col)
	// 无run的空单元格补了虚拟文本块
	require.Len(t, empty.Container.Spans, 1)
	assert.Empty(t, empty.Container.Spans[0].Text)
}

// TestCommit_EmptyCellFill 空单元格通过虚拟run落点写入填充内容
func TestCommit_EmptyCellFill(t *testing.T) {
	path, _ := writeDocx(t, sampleTable)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	empty := d.Cells()[3].Container
	empty.Spans[0].Text = "{{年龄}}"
	require.NoError(t, d.Commit(empty))

	assert.Contains(t, d.DocumentXML(),
		`<w:tc><w:p><w:r><w:t xml:space="preserve">{{年龄}}</w:t></w:r></w:p></w:tc>`)
}

// TestCommit_EscapesXML 写回的文本中的XML特殊字符被转义
func TestCommit_EscapesXML(t *testing.T) {
	path, _ := writeDocx(t, `<w:p><w:r><w:t>_____</w:t></w:r></w:p>`)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	c := d.Containers()[0]
	c.Spans[0].Text = "A&B <C>"
	require.NoError(t, d.Commit(c))

	assert.Contains(t, d.DocumentXML(), "A&amp;B &lt;C&gt;")
}

func TestOpen_UnescapesText(t *testing.T) {
	path, _ := writeDocx(t, `<w:p><w:r><w:t>A&amp;B&lt;C</w:t></w:r></w:p>`)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, "A&B<C", d.Containers()[0].LogicalText())
}

// TestSaveAndReopen 保存后的文档可以重新打开，修改内容保留
func TestSaveAndReopen(t *testing.T) {
	path, _ := writeDocx(t, sampleParagraph)
	d, err := Open(path)
	require.NoError(t, err)

	c := d.Containers()[0]
	c.Spans[1].Text = "{{姓名}}"
	require.NoError(t, d.Commit(c))

	outPath := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, d.Save(outPath))
	require.NoError(t, d.Close())

	d2, err := Open(outPath)
	require.NoError(t, err)
	defer d2.Close()
	assert.Equal(t, "姓名：{{姓名}}", d2.Containers()[0].LogicalText())
}

func TestOpen_Errors(t *testing.T) {
	t.Run("文件不存在", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.docx"))
		assert.Error(t, err)
	})

	t.Run("缺少document.xml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.docx")
		f, err := os.Create(path)
		require.NoError(t, err)
		zw := zip.NewWriter(f)
		w, err := zw.Create("dummy.txt")
		require.NoError(t, err)
		_, _ = w.Write([]byte("x"))
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())

		_, err = Open(path)
		assert.Error(t, err)
	})
}

func TestIsUnderlined(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected bool
	}{
		{name: "单下划线", format: `<w:rPr><w:u w:val="single"/></w:rPr>`, expected: true},
		{name: "无val属性按默认值", format: `<w:rPr><w:u/></w:rPr>`, expected: true},
		{name: "双下划线", format: `<w:rPr><w:u w:val="double"/></w:rPr>`, expected: false},
		{name: "无下划线取消", format: `<w:rPr><w:u w:val="none"/></w:rPr>`, expected: false},
		{name: "无下划线标签", format: `<w:rPr><w:b/></w:rPr>`, expected: false},
		{name: "空格式", format: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUnderlined(domain.FormatToken(tt.format)))
		})
	}
}

func TestSplitMatches(t *testing.T) {
	chunks := splitMatches("a<w:r><w:t>x</w:t></w:r>b", runRe)
	require.Len(t, chunks, 3)
	assert.Equal(t, chunk{text: "a"}, chunks[0])
	assert.True(t, chunks[1].isMatch)
	assert.Equal(t, chunk{text: "b"}, chunks[2])

	var rebuilt strings.Builder
	for _, ch := range chunks {
		rebuilt.WriteString(ch.text)
	}
	assert.Equal(t, "a<w:r><w:t>x</w:t></w:r>b", rebuilt.String())
}
