package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

type Hit struct {
	RecapID   uuid.UUID `json:"recap_id"`
	EventID   uuid.UUID `json:"event_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Score     float64   `json:"score"`
	Fragments []string  `json:"fragments,omitempty"`
}

type SearchResult struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string              `json:"_id"`
			Score     float64             `json:"_score"`
			Source    RecapDoc            `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func searchBody(q string, limit int) ([]byte, error) {
	query := map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^3", "summary^2", "keywords^2", "body"},
					},
				},
				"filter": []any{map[string]any{"term": map[string]any{"published": true}}},
			},
		},
		"highlight": map[string]any{
			"fields": map[string]any{"body": map[string]any{"fragment_size": 160, "number_of_fragments": 2}},
		},
	}
	return json.Marshal(query)
}

// SearchRecaps runs a full-text query over published recaps.
func SearchRecaps(ctx context.Context, c *es.Client, q string, limit int) (SearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	body, err := searchBody(q, limit)
	if err != nil {
		return SearchResult{}, err
	}

	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(IdxRecaps),
		c.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search recaps: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return SearchResult{}, fmt.Errorf("search recaps: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return SearchResult{}, fmt.Errorf("decode search response: %w", err)
	}

	out := SearchResult{Total: sr.Hits.Total.Value, Hits: make([]Hit, 0, len(sr.Hits.Hits))}
	for _, h := range sr.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		out.Hits = append(out.Hits, Hit{
			RecapID:   id,
			EventID:   h.Source.EventID,
			Title:     h.Source.Title,
			Summary:   h.Source.Summary,
			Score:     h.Score,
			Fragments: h.Highlight["body"],
		})
	}
	return out, nil
}

// Searcher binds SearchRecaps to a client.
type Searcher struct {
	Client *es.Client
}

func (s Searcher) Search(ctx context.Context, q string, limit int) (SearchResult, error) {
	return SearchRecaps(ctx, s.Client, q, limit)
}
