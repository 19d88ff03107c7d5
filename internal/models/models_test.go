package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

func TestEventRecap_BlocksRoundTrip(t *testing.T) {
	list := []blocks.ContentBlock{
		{ID: "b1", Type: blocks.TypeText, Order: 0, Content: json.RawMessage(`{"text":"<p>Great turnout</p>","style":"normal"}`)},
		{ID: "b2", Type: blocks.TypeHighlights, Order: 1, Content: json.RawMessage(`{"items":[{"text":"Networking"}],"style":"bullets"}`)},
	}
	var r EventRecap
	require.NoError(t, r.SetBlocks(list))

	// what the jsonb column hands back on read
	var stored EventRecap
	stored.ContentBlocks = append(stored.ContentBlocks, r.ContentBlocks...)
	got, err := stored.Blocks()
	require.NoError(t, err)
	assert.Equal(t, list, got)
	assert.Contains(t, string(r.ContentBlocks), "<p>Great turnout</p>")
}

func TestEventRecap_EmptyColumn(t *testing.T) {
	var r EventRecap
	got, err := r.Blocks()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, r.SetBlocks(nil))
	assert.Equal(t, "[]", string(r.ContentBlocks))
}
