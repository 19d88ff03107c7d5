package elastic

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/models"
)

type RecapDoc struct {
	EventID          uuid.UUID `json:"event_id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Body             string    `json:"body"`
	Keywords         []string  `json:"keywords"`
	BlockTypes       []string  `json:"block_types"`
	FeaturedImageURL string    `json:"featured_image_url,omitempty"`
	Published        bool      `json:"published"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BuildRecapDoc flattens a recap into its search document. Blocks that do not
// decode contribute nothing to the body.
func BuildRecapDoc(r models.EventRecap) ([]byte, error) {
	list, err := r.Blocks()
	if err != nil {
		return nil, err
	}

	var types []string
	seen := map[blocks.Type]bool{}
	for _, b := range blocks.Sorted(list) {
		if !seen[b.Type] && b.Type.Known() {
			seen[b.Type] = true
			types = append(types, string(b.Type))
		}
	}

	meta := r.SeoMeta.Data()
	doc := RecapDoc{
		EventID:    r.EventID,
		Title:      r.Title,
		Summary:    r.Summary,
		Body:       blocks.PlainText(list),
		Keywords:   meta.Keywords,
		BlockTypes: types,
		Published:  r.Published,
		UpdatedAt:  r.UpdatedAt,
	}
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	if doc.BlockTypes == nil {
		doc.BlockTypes = []string{}
	}
	if r.FeaturedImageURL != nil {
		doc.FeaturedImageURL = *r.FeaturedImageURL
	}
	return json.Marshal(doc)
}
