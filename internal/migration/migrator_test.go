package migration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/models"
)

type memStore struct {
	events    []models.Event
	recaps    map[uuid.UUID]*models.EventRecap
	failFind  map[uuid.UUID]error
	insertErr error
}

func newMemStore(events ...models.Event) *memStore {
	for i := range events {
		if events[i].ID == uuid.Nil {
			events[i].ID = uuid.New()
		}
	}
	return &memStore{events: events, recaps: map[uuid.UUID]*models.EventRecap{}, failFind: map[uuid.UUID]error{}}
}

func (s *memStore) ListEvents(context.Context) ([]models.Event, error) { return s.events, nil }

func (s *memStore) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memStore) FindRecapByEvent(_ context.Context, eventID uuid.UUID) (*models.EventRecap, error) {
	if err := s.failFind[eventID]; err != nil {
		return nil, err
	}
	if r, ok := s.recaps[eventID]; ok {
		return r, nil
	}
	return nil, db.ErrNotFound
}

func (s *memStore) InsertRecap(_ context.Context, r *models.EventRecap) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, ok := s.recaps[r.EventID]; ok {
		return db.ErrDuplicate
	}
	r.ID = uuid.New()
	s.recaps[r.EventID] = r
	return nil
}

type stubFetcher struct {
	data []byte
	err  error
	urls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.data, f.err
}

type stubDocx struct {
	html string
	err  error
}

func (d stubDocx) DocxToHTML([]byte) (string, error) { return d.html, d.err }

func strPtr(s string) *string { return &s }

func decodeText(t *testing.T, b blocks.ContentBlock) *blocks.TextContent {
	t.Helper()
	c, err := blocks.Decode(b)
	require.NoError(t, err)
	tc, ok := c.(*blocks.TextContent)
	require.True(t, ok, "block %s is %s", b.ID, b.Type)
	return tc
}

func TestConvert_GreatTurnout(t *testing.T) {
	conv := NewConverter(nil, nil)
	list, err := conv.Convert(context.Background(), &models.Event{
		ID:          uuid.New(),
		Description: "Great turnout",
		Status:      models.StatusPast,
	})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, blocks.TypeText, list[0].Type)
	assert.Equal(t, blocks.TypeStatistics, list[1].Type)
	assert.Equal(t, blocks.TypeHighlights, list[2].Type)
	for i, b := range list {
		assert.Equal(t, i, b.Order)
		assert.NotEmpty(t, b.ID)
	}

	text := decodeText(t, list[0])
	assert.Equal(t, "<p>Great turnout</p>", text.Text)
	assert.Equal(t, blocks.TextNormal, text.Style)

	c, err := blocks.Decode(list[1])
	require.NoError(t, err)
	stats := c.(*blocks.StatisticsContent)
	require.Len(t, stats.Stats, 4)
	var icons []string
	for _, s := range stats.Stats {
		icons = append(icons, s.Icon)
		assert.Equal(t, "TBD", s.Value.String())
	}
	assert.Equal(t, []string{"users", "trending", "star", "award"}, icons)

	c, err = blocks.Decode(list[2])
	require.NoError(t, err)
	assert.Len(t, c.(*blocks.HighlightsContent).Items, 4)
}

func TestConvert_EscapesDescription(t *testing.T) {
	list, err := NewConverter(nil, nil).Convert(context.Background(), &models.Event{
		Description: "Pizza & <script>",
		Status:      models.StatusUpcoming,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "<p>Pizza &amp; &lt;script&gt;</p>", decodeText(t, list[0]).Text)
}

func TestConvert_LegacyFiles(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		fetcher  *stubFetcher
		docx     DocConverter
		style    blocks.TextStyle
		contains string
		fetched  bool
	}{
		{
			name:     "pdf links out without fetching",
			url:      "https://files.example.com/recaps/fair.pdf",
			fetcher:  &stubFetcher{},
			style:    blocks.TextCallout,
			contains: `href="https://files.example.com/recaps/fair.pdf"`,
		},
		{
			name:     "pdf with query string",
			url:      "https://files.example.com/recaps/FAIR.PDF?token=abc",
			fetcher:  &stubFetcher{},
			style:    blocks.TextCallout,
			contains: "View the event recap",
		},
		{
			name:     "docx converted",
			url:      "https://files.example.com/recaps/fair.docx",
			fetcher:  &stubFetcher{data: []byte("zip")},
			docx:     stubDocx{html: "<p>From the document</p>"},
			style:    blocks.TextNormal,
			contains: "<p>From the document</p>",
			fetched:  true,
		},
		{
			name:     "docx fetch failure falls back",
			url:      "https://files.example.com/recaps/fair.docx",
			fetcher:  &stubFetcher{err: errors.New("connection refused")},
			docx:     stubDocx{html: "<p>unused</p>"},
			style:    blocks.TextCallout,
			contains: "Download the recap",
			fetched:  true,
		},
		{
			name:     "docx conversion failure falls back",
			url:      "https://files.example.com/recaps/fair.docx",
			fetcher:  &stubFetcher{data: []byte("zip")},
			docx:     stubDocx{err: ErrNoContent},
			style:    blocks.TextCallout,
			contains: `href="https://files.example.com/recaps/fair.docx"`,
			fetched:  true,
		},
		{
			name:     "unsupported format falls back",
			url:      "https://files.example.com/recaps/fair.pptx",
			fetcher:  &stubFetcher{},
			style:    blocks.TextCallout,
			contains: "Download the recap",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConverter(tt.fetcher, tt.docx)
			list, err := conv.Convert(context.Background(), &models.Event{
				RecapFileURL: strPtr(tt.url),
				Status:       models.StatusUpcoming,
			})
			require.NoError(t, err)
			require.Len(t, list, 1)

			text := decodeText(t, list[0])
			assert.Equal(t, tt.style, text.Style)
			assert.Contains(t, text.Text, tt.contains)
			assert.Equal(t, tt.fetched, len(tt.fetcher.urls) > 0)
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	store := newMemStore(
		models.Event{Title: "Spring Fair", Description: "Great turnout", Status: models.StatusPast},
		models.Event{Title: "Autumn Fair", Status: models.StatusUpcoming},
	)
	m := NewMigrator(store, NewConverter(nil, nil))

	first, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, r := range first {
		assert.True(t, r.Success)
		assert.False(t, r.AlreadyMigrated)
		assert.NotEmpty(t, r.RecapID)
	}
	assert.Len(t, store.recaps, 2)

	second, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)
	for i, r := range second {
		assert.True(t, r.Success)
		assert.True(t, r.AlreadyMigrated)
		assert.Equal(t, first[i].RecapID, r.RecapID)
	}
	assert.Len(t, store.recaps, 2)
}

func TestRun_CopiesEventFields(t *testing.T) {
	img := "https://cdn.example.com/fair.jpg"
	store := newMemStore(models.Event{Title: "Spring Fair", Description: "Great turnout", ImageURL: &img, Status: models.StatusPast})

	results, err := NewMigrator(store, NewConverter(nil, nil)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := store.recaps[store.events[0].ID]
	require.NotNil(t, r)
	assert.Equal(t, "Spring Fair", r.Title)
	assert.Equal(t, "Great turnout", r.Summary)
	assert.Equal(t, &img, r.FeaturedImageURL)
	assert.False(t, r.Published)

	list, err := r.Blocks()
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRun_FailureIsolated(t *testing.T) {
	store := newMemStore(
		models.Event{Title: "A", Description: "first", Status: models.StatusPast},
		models.Event{Title: "B", Description: "second", Status: models.StatusPast},
		models.Event{Title: "C", Description: "third", Status: models.StatusPast},
	)
	store.failFind[store.events[1].ID] = errors.New("connection reset")

	results, err := NewMigrator(store, NewConverter(nil, nil)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, store.events[1].ID, results[1].EventID)
	assert.Contains(t, results[1].Error, "connection reset")
	assert.True(t, results[2].Success)
	assert.Len(t, store.recaps, 2)
}

func TestRun_DryRun(t *testing.T) {
	store := newMemStore(models.Event{Title: "A", Description: "first", Status: models.StatusPast})
	m := NewMigrator(store, NewConverter(nil, nil))
	m.DryRun = true

	results, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Recap)
	assert.Empty(t, results[0].RecapID)
	assert.Empty(t, store.recaps)
}

func TestRun_DuplicateInsertIsAlreadyMigrated(t *testing.T) {
	store := newMemStore(models.Event{Title: "A", Status: models.StatusPast})
	store.insertErr = db.ErrDuplicate

	results, err := NewMigrator(store, NewConverter(nil, nil)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.True(t, results[0].AlreadyMigrated)
}

func TestMigrateEvent(t *testing.T) {
	store := newMemStore(models.Event{Title: "A", Description: "x", Status: models.StatusUpcoming})
	m := NewMigrator(store, NewConverter(nil, nil))

	res, err := m.MigrateEvent(context.Background(), store.events[0].ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = m.MigrateEvent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("docx bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(&http.Client{Timeout: 5 * time.Second}, 3, 1024)
	data, err := f.Fetch(context.Background(), srv.URL+"/recap.docx")
	require.NoError(t, err)
	assert.Equal(t, "docx bytes", string(data))
	assert.EqualValues(t, 3, calls.Load())
}

func TestHTTPFetcher_Limits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.docx" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(nil, 0, 16)
	_, err := f.Fetch(context.Background(), srv.URL+"/big.docx")
	assert.ErrorContains(t, err, "larger than")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.docx")
	assert.ErrorContains(t, err, "status 404")
}

type memObjects map[string][]byte

func (m memObjects) KeyForURL(url string) (string, bool) {
	return strings.CutPrefix(url, "https://bucket.example.com/")
}

func (m memObjects) Read(_ context.Context, key string) ([]byte, error) {
	if b, ok := m[key]; ok {
		return b, nil
	}
	return nil, errors.New("no such key")
}

func TestObjectFetcher(t *testing.T) {
	next := &stubFetcher{data: []byte("remote")}
	f := &ObjectFetcher{
		Objects: memObjects{"legacy/fair.docx": []byte("local")},
		Next:    next,
	}

	data, err := f.Fetch(context.Background(), "https://bucket.example.com/legacy/fair.docx")
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))
	assert.Empty(t, next.urls)

	data, err = f.Fetch(context.Background(), "https://elsewhere.example.com/fair.docx")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
	assert.Equal(t, []string{"https://elsewhere.example.com/fair.docx"}, next.urls)
}
