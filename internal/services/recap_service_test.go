package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/editor"
)

type recordingCache struct{ ids []uuid.UUID }

func (c *recordingCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.ids = append(c.ids, id)
	return nil
}

func newTestService(t *testing.T) (*RecapService, sqlmock.Sqlmock, *recordingCache) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	cache := &recordingCache{}
	return NewRecapService(db.NewStore(gdb), cache), mock, cache
}

var recapCols = []string{"id", "event_id", "title", "summary", "content_blocks", "published", "created_at", "updated_at"}

const storedBlocks = `[` +
	`{"id":"b1","type":"text","order":0,"content":{"text":"<p>Hi</p>","style":"normal"}},` +
	`{"id":"b2","type":"statistics","order":1,"content":{"stats":[{"label":"Attendees","value":"TBD","icon":"users"}],"layout":"grid","style":"colorful","legacy_key":"keep"}}` +
	`]`

func expectLockedRecap(mock sqlmock.Sqlmock, id uuid.UUID, published bool) {
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "event_recaps" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(recapCols).
			AddRow(id.String(), uuid.NewString(), "Spring Fair", "", []byte(storedBlocks), published, now, now))
}

func expectWrite(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`UPDATE "event_recaps" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "outboxes"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()
}

func TestAddBlock(t *testing.T) {
	svc, mock, cache := newTestService(t)
	id := uuid.New()

	expectLockedRecap(mock, id, false)
	expectWrite(mock)

	b, err := svc.AddBlock(context.Background(), id, blocks.TypeQuote)
	require.NoError(t, err)
	assert.Equal(t, blocks.TypeQuote, b.Type)
	assert.Equal(t, 2, b.Order)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, []uuid.UUID{id}, cache.ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditBlock_KeepsUnknownContent(t *testing.T) {
	svc, mock, cache := newTestService(t)
	id := uuid.New()

	expectLockedRecap(mock, id, false)
	expectWrite(mock)

	saved, err := svc.EditBlock(context.Background(), id, "b2", []editor.Op{
		{Op: editor.OpUpdateRow, Index: 0, Field: "value", Value: "1200"},
		{Op: editor.OpAddRow},
	})
	require.NoError(t, err)
	assert.Equal(t, "b2", saved.ID)
	assert.Equal(t, 1, saved.Order)
	assert.Contains(t, string(saved.Content), `"legacy_key":"keep"`)
	assert.Contains(t, string(saved.Content), `"value":1200`)
	assert.Equal(t, []uuid.UUID{id}, cache.ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditBlock_FailureRollsBack(t *testing.T) {
	svc, mock, cache := newTestService(t)
	id := uuid.New()

	expectLockedRecap(mock, id, false)
	mock.ExpectRollback()

	_, err := svc.EditBlock(context.Background(), id, "b1", []editor.Op{{Op: editor.OpAddRow}})
	assert.ErrorIs(t, err, editor.ErrWrongType)

	expectLockedRecap(mock, id, false)
	mock.ExpectRollback()
	_, err = svc.EditBlock(context.Background(), id, "missing", []editor.Op{{Op: editor.OpSetText, Value: "x"}})
	assert.ErrorIs(t, err, ErrBlockNotFound)

	assert.Empty(t, cache.ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTogglePublish(t *testing.T) {
	svc, mock, _ := newTestService(t)
	id := uuid.New()

	expectLockedRecap(mock, id, false)
	expectWrite(mock)

	r, err := svc.TogglePublish(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, r.Published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMeta_RejectsBlankTitle(t *testing.T) {
	svc, mock, _ := newTestService(t)
	blank := "  "
	_, err := svc.UpdateMeta(context.Background(), uuid.New(), Meta{Title: &blank})
	assert.ErrorIs(t, err, editor.ErrInvalidValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecap(t *testing.T) {
	svc, mock, cache := newTestService(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "event_recaps" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "outboxes"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteRecap(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, cache.ids)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "event_recaps" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	assert.ErrorIs(t, svc.DeleteRecap(context.Background(), id), db.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecap_Duplicate(t *testing.T) {
	svc, mock, _ := newTestService(t)
	eventID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date", "status"}).
			AddRow(eventID.String(), "Spring Fair", now, "past"))
	mock.ExpectQuery(`SELECT \* FROM "event_recaps" WHERE event_id = \$1`).
		WillReturnRows(sqlmock.NewRows(recapCols).
			AddRow(uuid.NewString(), eventID.String(), "Spring Fair", "", []byte(`[]`), false, now, now))

	_, err := svc.CreateRecap(context.Background(), eventID, "")
	assert.ErrorIs(t, err, ErrDuplicateRecap)
	assert.NoError(t, mock.ExpectationsWereMet())
}
