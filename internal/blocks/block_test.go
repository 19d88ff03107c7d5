package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestContentBlocks_RoundTrip(t *testing.T) {
	stored := `[
		{"id":"a","type":"text","order":0,"content":{"text":"<p>Hi</p>","style":"callout","extra":{"x":1}}},
		{"id":"b","type":"statistics","order":1,"content":{"stats":[{"label":"Attendees","value":1500,"icon":"users"},{"label":"Offers","value":"TBD"}],"layout":"cards","style":"gradient"}},
		{"id":"c","type":"mystery","order":1,"content":{"anything":true}}
	]`

	list, err := ParseList([]byte(stored))
	require.NoError(t, err)
	require.Len(t, list, 3)

	out, err := MarshalList(list)
	require.NoError(t, err)

	again, err := ParseList(out)
	require.NoError(t, err)
	assert.Equal(t, list, again)
	assert.JSONEq(t, stored, string(out))
}

func TestParseList_NullAndEmpty(t *testing.T) {
	for _, in := range []string{"", "null", "[]", "  "} {
		list, err := ParseList([]byte(in))
		require.NoError(t, err, in)
		assert.Empty(t, list, in)
		assert.NotNil(t, list, in)
	}

	out, err := MarshalList(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		block ContentBlock
		want  error
	}{
		{"ok", ContentBlock{ID: "1", Type: TypeQuote, Content: json.RawMessage(`{}`)}, nil},
		{"missing type", ContentBlock{ID: "1", Content: json.RawMessage(`{}`)}, ErrMalformed},
		{"missing content", ContentBlock{ID: "1", Type: TypeText}, ErrMalformed},
		{"null content", ContentBlock{ID: "1", Type: TypeText, Content: json.RawMessage(`null`)}, ErrMalformed},
		{"unknown type", ContentBlock{ID: "1", Type: "video", Content: json.RawMessage(`{}`)}, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_EveryType(t *testing.T) {
	for _, typ := range AllTypes {
		c, err := DefaultContent(typ)
		require.NoError(t, err)
		b, err := New(c, 0)
		require.NoError(t, err)

		decoded, err := Decode(b)
		require.NoError(t, err, typ)
		assert.Equal(t, typ, decoded.BlockType())
		assert.Equal(t, c, decoded)
	}
}

func TestDecode_WrongShapeIsMalformed(t *testing.T) {
	_, err := Decode(ContentBlock{ID: "x", Type: TypeHighlights, Content: json.RawMessage(`{"items":"nope"}`)})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestStatValue_JSON(t *testing.T) {
	var s Stat
	require.NoError(t, json.Unmarshal([]byte(`{"label":"People","value":2500.5}`), &s))
	assert.True(t, s.Value.Numeric)
	assert.Equal(t, 2500.5, s.Value.Number)

	require.NoError(t, json.Unmarshal([]byte(`{"label":"People","value":"TBD"}`), &s))
	assert.False(t, s.Value.Numeric)
	assert.Equal(t, "TBD", s.Value.String())

	out, err := json.Marshal(Stat{Label: "n", Value: NumberValue(42)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"n","value":42}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"value":true}`), &s))
}

func TestMerge_KeepsUnknownFields(t *testing.T) {
	stored := json.RawMessage(`{"quote":"old","author":"A","author_title":"CEO","theme":"dark"}`)
	merged, err := Merge(stored, &QuoteContent{Quote: "new", Author: "A", Style: QuoteCard})
	require.NoError(t, err)
	assert.JSONEq(t, `{"quote":"new","author":"A","style":"card","theme":"dark"}`, string(merged))
}

func TestNormalize_Defaults(t *testing.T) {
	assert.Equal(t, TextNormal, TextStyle("loud").Normalize())
	assert.Equal(t, TextCentered, TextCentered.Normalize())
	assert.Equal(t, GalleryGrid, GalleryLayout("").Normalize())
	assert.Equal(t, StatsGrid, StatsLayout("diagonal").Normalize())
	assert.Equal(t, StatsColorful, StatsStyle("neon").Normalize())
	assert.Equal(t, QuoteSimple, QuoteStyle("").Normalize())
	assert.Equal(t, HighlightsChecklist, HighlightsStyle("stars").Normalize())
	assert.Equal(t, FeedbackCards, FeedbackDisplay("table").Normalize())
}
