package render

import "github.com/sirdesai22/recap-service/internal/models"

// RecapPage gathers the page-level fields of a stored recap.
func RecapPage(r *models.EventRecap) (Page, error) {
	list, err := r.Blocks()
	if err != nil {
		return Page{}, err
	}
	meta := r.SeoMeta.Data()
	p := Page{
		Title:       r.Title,
		Summary:     r.Summary,
		Description: meta.Description,
		Keywords:    meta.Keywords,
		Blocks:      list,
	}
	if p.Description == "" {
		p.Description = r.Summary
	}
	if r.FeaturedImageURL != nil {
		p.FeaturedImage = *r.FeaturedImageURL
	}
	return p, nil
}
