// Package render turns a recap's content blocks into the public HTML page.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Rendered is the HTML of one block that survived filtering.
type Rendered struct {
	ID   string
	Type blocks.Type
	HTML template.HTML
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("recap").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Blocks renders list in display order. Malformed, unknown and empty blocks
// are left out without a placeholder.
func (r *Renderer) Blocks(rc *Context, list []blocks.ContentBlock) []Rendered {
	out := make([]Rendered, 0, len(list))
	for _, b := range blocks.Sorted(list) {
		c, err := blocks.Decode(b)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, blocks.ErrUnknownType) {
				reason = "unknown_type"
			}
			skip(b, reason, err)
			continue
		}
		if blocks.IsEmptyContent(c) {
			metrics.SkippedBlocks.WithLabelValues("empty").Inc()
			continue
		}
		v := blocks.Visit[view](c, strategy{rc: rc, blockID: b.ID})
		var buf bytes.Buffer
		if err := r.tmpl.ExecuteTemplate(&buf, v.name, v.data); err != nil {
			skip(b, "malformed", err)
			continue
		}
		out = append(out, Rendered{ID: b.ID, Type: b.Type, HTML: template.HTML(buf.String())})
	}
	return out
}

func skip(b blocks.ContentBlock, reason string, err error) {
	metrics.SkippedBlocks.WithLabelValues(reason).Inc()
	log.WithFields(log.Fields{"block_id": b.ID, "type": b.Type, "reason": reason}).Warnf("⚠️ skipping block: %v", err)
}

// Render concatenates the rendered blocks into one fragment.
func (r *Renderer) Render(rc *Context, list []blocks.ContentBlock) template.HTML {
	var sb strings.Builder
	for _, rb := range r.Blocks(rc, list) {
		fmt.Fprintf(&sb, `<section id="block-%s" class="recap-block recap-block--%s">`, template.HTMLEscapeString(rb.ID), rb.Type)
		sb.WriteString(string(rb.HTML))
		sb.WriteString("</section>\n")
	}
	return template.HTML(sb.String())
}

// Page is the document-level data around the blocks.
type Page struct {
	Title         string
	Summary       string
	FeaturedImage string
	Description   string
	Keywords      []string
	Blocks        []blocks.ContentBlock
}

type pageData struct {
	Lang          string
	Title         string
	Summary       string
	FeaturedImage string
	Description   string
	Keywords      string
	Blocks        []Rendered
}

// WritePage renders a full HTML document for p.
func (r *Renderer) WritePage(w io.Writer, rc *Context, p Page) error {
	data := pageData{
		Lang:          rc.lang().String(),
		Title:         p.Title,
		Summary:       p.Summary,
		FeaturedImage: p.FeaturedImage,
		Description:   p.Description,
		Keywords:      strings.Join(p.Keywords, ", "),
		Blocks:        r.Blocks(rc, p.Blocks),
	}
	return r.tmpl.ExecuteTemplate(w, "page", data)
}
