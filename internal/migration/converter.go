// Package migration turns legacy events (free-text description plus an
// optional uploaded recap file) into structured content blocks.
package migration

import (
	"context"
	"html"
	"net/url"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/models"
)

// Converter builds the initial block list for one event.
type Converter struct {
	Fetcher Fetcher
	Docx    DocConverter
}

func NewConverter(f Fetcher, d DocConverter) *Converter {
	if d == nil {
		d = OOXMLConverter{}
	}
	return &Converter{Fetcher: f, Docx: d}
}

var placeholderStats = []blocks.Stat{
	{Label: "Attendees", Value: blocks.TextValue("TBD"), Icon: "users"},
	{Label: "Employers", Value: blocks.TextValue("TBD"), Icon: "trending"},
	{Label: "Satisfaction", Value: blocks.TextValue("TBD"), Icon: "star"},
	{Label: "Offers Made", Value: blocks.TextValue("TBD"), Icon: "award"},
}

var boilerplateHighlights = []blocks.HighlightItem{
	{Text: "Students connected directly with hiring employers"},
	{Text: "Hands-on sessions and workshops throughout the day"},
	{Text: "Networking opportunities across industries"},
	{Text: "Follow-up interviews scheduled on the spot"},
}

// Convert never fails: a legacy file that cannot be converted becomes a
// download link in a callout.
func (c *Converter) Convert(ctx context.Context, e *models.Event) ([]blocks.ContentBlock, error) {
	var contents []blocks.Content

	if desc := strings.TrimSpace(e.Description); desc != "" {
		contents = append(contents, &blocks.TextContent{
			Text:  "<p>" + html.EscapeString(desc) + "</p>",
			Style: blocks.TextNormal,
		})
	}

	if e.RecapFileURL != nil && strings.TrimSpace(*e.RecapFileURL) != "" {
		contents = append(contents, c.legacyFile(ctx, e, strings.TrimSpace(*e.RecapFileURL)))
	}

	if e.Status == models.StatusPast {
		stats := make([]blocks.Stat, len(placeholderStats))
		copy(stats, placeholderStats)
		items := make([]blocks.HighlightItem, len(boilerplateHighlights))
		copy(items, boilerplateHighlights)
		contents = append(contents,
			&blocks.StatisticsContent{Stats: stats, Layout: blocks.StatsGrid, Style: blocks.StatsColorful},
			&blocks.HighlightsContent{Items: items, Style: blocks.HighlightsChecklist},
		)
	}

	out := make([]blocks.ContentBlock, 0, len(contents))
	for i, content := range contents {
		b, err := blocks.New(content, i)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Converter) legacyFile(ctx context.Context, e *models.Event, fileURL string) blocks.Content {
	logger := log.WithFields(log.Fields{"event_id": e.ID, "file": fileURL})

	switch extension(fileURL) {
	case ".pdf":
		return &blocks.TextContent{
			Text:  `<p>The full recap is available as a PDF: ` + link(fileURL, "View the event recap") + `</p>`,
			Style: blocks.TextCallout,
		}
	case ".docx":
		body, err := c.docx(ctx, fileURL)
		if err == nil {
			return &blocks.TextContent{Text: body, Style: blocks.TextNormal}
		}
		logger.WithError(err).Warn("⚠️ Legacy recap conversion failed, using download link")
	default:
		logger.Warn("⚠️ Unsupported legacy recap format, using download link")
	}
	return fallback(fileURL)
}

func (c *Converter) docx(ctx context.Context, fileURL string) (string, error) {
	if c.Fetcher == nil {
		return "", errNoFetcher
	}
	data, err := c.Fetcher.Fetch(ctx, fileURL)
	if err != nil {
		return "", err
	}
	return c.Docx.DocxToHTML(data)
}

func fallback(fileURL string) *blocks.TextContent {
	return &blocks.TextContent{
		Text:  `<p>The original recap document could not be displayed here. ` + link(fileURL, "Download the recap") + `</p>`,
		Style: blocks.TextCallout,
	}
}

func link(href, label string) string {
	return `<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">` + html.EscapeString(label) + `</a>`
}

// extension reads the lower-cased file extension from the URL path, ignoring
// any query string.
func extension(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}
