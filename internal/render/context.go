package render

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

const (
	slideParamPrefix = "slide."
	lightboxParam    = "lightbox"
	imageParam       = "image"
)

// Context carries the per-request view state the renderer needs: locale for
// numbers and the gallery navigation positions encoded in the page URL.
type Context struct {
	Language language.Tag
	BasePath string
	Slides   map[string]int
	Lightbox *Lightbox
}

// Lightbox is an open full-screen view of one image in one gallery block.
type Lightbox struct {
	BlockID string
	Index   int
}

func NewContext(basePath string) *Context {
	return &Context{Language: language.English, BasePath: basePath, Slides: map[string]int{}}
}

// ContextFromQuery reads ?slide.<block>=i, ?lightbox=<block>&image=i and ?lang=.
// Unparseable values are ignored.
func ContextFromQuery(basePath string, q url.Values) *Context {
	rc := NewContext(basePath)
	if tag, err := language.Parse(q.Get("lang")); err == nil {
		rc.Language = tag
	}
	for k, v := range q {
		id, ok := strings.CutPrefix(k, slideParamPrefix)
		if !ok || id == "" || len(v) == 0 {
			continue
		}
		if i, err := strconv.Atoi(v[0]); err == nil {
			rc.Slides[id] = i
		}
	}
	if id := q.Get(lightboxParam); id != "" {
		i, _ := strconv.Atoi(q.Get(imageParam))
		rc.Lightbox = &Lightbox{BlockID: id, Index: i}
	}
	return rc
}

// Stateless is true when the page would look the same for every visitor,
// which is when the render cache may serve it.
func (rc *Context) Stateless() bool {
	return len(rc.Slides) == 0 && rc.Lightbox == nil && rc.Language == language.English
}

func (rc *Context) slide(blockID string) int {
	if rc == nil || rc.Slides == nil {
		return 0
	}
	return rc.Slides[blockID]
}

func (rc *Context) lightboxFor(blockID string) (int, bool) {
	if rc == nil || rc.Lightbox == nil || rc.Lightbox.BlockID != blockID {
		return 0, false
	}
	return rc.Lightbox.Index, true
}

func (rc *Context) lang() language.Tag {
	if rc == nil || rc.Language == language.Und {
		return language.English
	}
	return rc.Language
}

func (rc *Context) href(q url.Values) string {
	base := "?"
	if rc != nil {
		base = rc.BasePath + "?"
	}
	return base + q.Encode()
}

func (rc *Context) slideHref(blockID string, i int) string {
	q := url.Values{}
	q.Set(slideParamPrefix+blockID, strconv.Itoa(i))
	return rc.href(q) + "#block-" + blockID
}

func (rc *Context) lightboxHref(blockID string, i int) string {
	q := url.Values{}
	q.Set(lightboxParam, blockID)
	q.Set(imageParam, strconv.Itoa(i))
	return rc.href(q) + "#block-" + blockID
}

func (rc *Context) closeHref(blockID string) string {
	if rc == nil {
		return "#block-" + blockID
	}
	return rc.BasePath + "#block-" + blockID
}
