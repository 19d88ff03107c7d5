package migration

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxToHTML(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain paragraph",
			body: `<w:p><w:r><w:t>Hello fair</w:t></w:r></w:p>`,
			want: `<p>Hello fair</p>`,
		},
		{
			name: "heading and formatting",
			body: `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Summary</w:t></w:r></w:p>` +
				`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r><w:r><w:t xml:space="preserve"> and </w:t></w:r><w:r><w:rPr><w:i/></w:rPr><w:t>italic</w:t></w:r></w:p>`,
			want: `<h2>Summary</h2><p><strong>Bold</strong> and <em>italic</em></p>`,
		},
		{
			name: "list paragraphs grouped",
			body: `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr><w:r><w:t>One</w:t></w:r></w:p>` +
				`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr><w:r><w:t>Two</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>After</w:t></w:r></w:p>`,
			want: `<ul><li>One</li><li>Two</li></ul><p>After</p>`,
		},
		{
			name: "escapes text and skips empty paragraphs",
			body: `<w:p></w:p><w:p><w:r><w:t>a &lt;b&gt; &amp; c</w:t></w:r><w:r><w:br/><w:t>next</w:t></w:r></w:p>`,
			want: `<p>a &lt;b&gt; &amp; c<br>next</p>`,
		},
		{
			name: "bold switched off explicitly",
			body: `<w:p><w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>plain</w:t></w:r></w:p>`,
			want: `<p>plain</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OOXMLConverter{}.DocxToHTML(buildDocx(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocxToHTML_Errors(t *testing.T) {
	_, err := OOXMLConverter{}.DocxToHTML([]byte("not a zip"))
	assert.Error(t, err)

	_, err = OOXMLConverter{}.DocxToHTML(buildDocx(t, `<w:p></w:p>`))
	assert.ErrorIs(t, err, ErrNoContent)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	_, err = OOXMLConverter{}.DocxToHTML(buf.Bytes())
	assert.ErrorContains(t, err, "document.xml missing")
}
