package migration

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

var ErrNoContent = errors.New("document has no text")

// DocConverter turns a legacy recap document into an HTML fragment.
type DocConverter interface {
	DocxToHTML(data []byte) (string, error)
}

// OOXMLConverter reads word/document.xml out of a .docx container. It keeps
// paragraphs, headings, bold/italic runs, line breaks and list paragraphs;
// tables, images and styling beyond that are dropped.
type OOXMLConverter struct {
	MaxDocumentBytes int64
}

const defaultMaxDocumentBytes = 32 << 20

func (c OOXMLConverter) DocxToHTML(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx container: %w", err)
	}
	f := findZipFile(zr, "word/document.xml")
	if f == nil {
		return "", fmt.Errorf("docx container: word/document.xml missing")
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	limit := c.MaxDocumentBytes
	if limit <= 0 {
		limit = defaultMaxDocumentBytes
	}
	out, err := documentXMLToHTML(io.LimitReader(rc, limit))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoContent
	}
	return out, nil
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// paragraph collects one <w:p> while the decoder walks it.
type paragraph struct {
	style  string
	list   bool
	runs   strings.Builder
	bold   bool
	italic bool
	text   bool
}

func (p *paragraph) tag() string {
	switch strings.ToLower(p.style) {
	case "heading1", "title":
		return "h2"
	case "heading2":
		return "h3"
	case "heading3", "heading4":
		return "h4"
	}
	return "p"
}

func documentXMLToHTML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    strings.Builder
		p      *paragraph
		inList bool
		inRun  bool
		inText bool
	)
	closeList := func() {
		if inList {
			out.WriteString("</ul>")
			inList = false
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p = &paragraph{}
			case "pStyle":
				if p != nil {
					p.style = attr(t, "val")
				}
			case "numPr":
				if p != nil {
					p.list = true
				}
			case "r":
				inRun = true
				if p != nil {
					p.bold, p.italic = false, false
				}
			case "b":
				if p != nil && attr(t, "val") != "0" && attr(t, "val") != "false" {
					p.bold = true
				}
			case "i":
				if p != nil && attr(t, "val") != "0" && attr(t, "val") != "false" {
					p.italic = true
				}
			case "t":
				inText = true
			case "br":
				if p != nil && inRun {
					p.runs.WriteString("<br>")
				}
			case "tab":
				if p != nil && inRun {
					p.runs.WriteString(" ")
				}
			}

		case xml.CharData:
			if !inText || p == nil {
				continue
			}
			s := html.EscapeString(string(t))
			if s == "" {
				continue
			}
			if p.italic {
				s = "<em>" + s + "</em>"
			}
			if p.bold {
				s = "<strong>" + s + "</strong>"
			}
			p.runs.WriteString(s)
			p.text = true

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				inRun = false
			case "p":
				if p == nil {
					continue
				}
				if !p.text {
					p = nil
					continue
				}
				if p.list {
					if !inList {
						out.WriteString("<ul>")
						inList = true
					}
					out.WriteString("<li>" + p.runs.String() + "</li>")
				} else {
					closeList()
					tag := p.tag()
					out.WriteString("<" + tag + ">" + p.runs.String() + "</" + tag + ">")
				}
				p = nil
			}
		}
	}
	closeList()
	return out.String(), nil
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
