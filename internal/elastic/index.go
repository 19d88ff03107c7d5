package elastic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
)

const IdxRecaps = "recaps_v1"

const recapMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"event_id":{"type":"keyword"},"title":{"type":"text"},"summary":{"type":"text"},
	"body":{"type":"text"},"keywords":{"type":"keyword"},"block_types":{"type":"keyword"},
	"featured_image_url":{"type":"keyword","index":false},
	"published":{"type":"boolean"},"updated_at":{"type":"date"}
}}}`

func EnsureIndexes(ctx context.Context, c *es.Client) error {
	return ensure(ctx, c, IdxRecaps, recapMapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := c.Indices.Create(index, c.Indices.Create.WithBody(strings.NewReader(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}
	return nil
}
