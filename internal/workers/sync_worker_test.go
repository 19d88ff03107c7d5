package workers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sirdesai22/recap-service/internal/models"
)

// fakeBulk answers _bulk requests, recording each action line. Deletes answer
// with deleteStatus.
type fakeBulk struct {
	mu           sync.Mutex
	actions      []string
	deleteStatus int
}

func (f *fakeBulk) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if !strings.HasSuffix(r.URL.Path, "/_bulk") {
		_, _ = w.Write([]byte(`{}`))
		return
	}

	var items []map[string]any
	sc := bufio.NewScanner(r.Body)
	for sc.Scan() {
		var line map[string]map[string]any
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			continue
		}
		for action, meta := range line {
			if action != "index" && action != "delete" {
				continue
			}
			f.mu.Lock()
			f.actions = append(f.actions, action+":"+meta["_id"].(string))
			f.mu.Unlock()
			status := 201
			if action == "delete" {
				status = f.deleteStatus
			}
			items = append(items, map[string]any{action: map[string]any{"_id": meta["_id"], "status": status}})
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": false, "items": items})
}

func newTestWorker(t *testing.T, bulk *fakeBulk) (*SyncWorker, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(bulk)
	t.Cleanup(srv.Close)
	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return &SyncWorker{DB: gdb, ES: client}, mock
}

var outboxCols = []string{"id", "entity_type", "entity_id", "op", "payload", "created_at", "processed"}

func TestProcessOnce_SyncsRecaps(t *testing.T) {
	bulk := &fakeBulk{deleteStatus: 404}
	w, mock := newTestWorker(t, bulk)
	upserted, deleted := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`WITH cte AS`).WillReturnRows(sqlmock.NewRows(outboxCols).
		AddRow(1, models.EntityRecap, upserted.String(), models.OpUpsert, nil, now, true).
		AddRow(2, models.EntityRecap, deleted.String(), models.OpDelete, nil, now, true))
	mock.ExpectQuery(`SELECT \* FROM "event_recaps" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "title", "content_blocks", "published", "created_at", "updated_at"}).
			AddRow(upserted.String(), uuid.NewString(), "Spring Fair",
				[]byte(`[{"id":"b1","type":"text","order":0,"content":{"text":"<p>Hi</p>"}}]`), true, now, now))

	require.NoError(t, w.processOnce(context.Background()))
	assert.ElementsMatch(t, []string{"index:" + upserted.String(), "delete:" + deleted.String()}, bulk.actions)
	// the 404 on delete must not produce a DLQ insert
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessOnce_UnknownEntityGoesToDLQ(t *testing.T) {
	w, mock := newTestWorker(t, &fakeBulk{deleteStatus: 200})

	mock.ExpectQuery(`WITH cte AS`).WillReturnRows(sqlmock.NewRows(outboxCols).
		AddRow(7, "hackathon", uuid.NewString(), models.OpUpsert, nil, time.Now(), true))
	mock.ExpectQuery(`INSERT INTO "dlqs"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	require.NoError(t, w.processOnce(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutDLQ_KeepsPayload(t *testing.T) {
	w, mock := newTestWorker(t, &fakeBulk{})
	entity := uuid.New()
	payload := []byte(`{"reason":"reindex"}`)

	var stored models.DLQ
	require.NoError(t, w.DB.Callback().Create().Before("gorm:create").Register("test:capture_dlq", func(db *gorm.DB) {
		if d, ok := db.Statement.Dest.(*models.DLQ); ok {
			stored = *d
		}
	}))
	mock.ExpectQuery(`INSERT INTO "dlqs"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	PutDLQ(context.Background(), w.DB, models.Outbox{
		ID: 5, EntityType: models.EntityRecap, EntityID: entity, Op: models.OpUpsert, Payload: payload,
	}, "boom")

	assert.Equal(t, int64(5), stored.OutboxID)
	assert.Equal(t, entity.String(), stored.EntityID)
	assert.Equal(t, "boom", stored.ErrorMsg)
	assert.JSONEq(t, string(payload), string(stored.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessOnce_Empty(t *testing.T) {
	w, mock := newTestWorker(t, &fakeBulk{})
	mock.ExpectQuery(`WITH cte AS`).WillReturnRows(sqlmock.NewRows(outboxCols))

	require.NoError(t, w.processOnce(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryRecord_NotFound(t *testing.T) {
	w, mock := newTestWorker(t, &fakeBulk{})
	mock.ExpectQuery(`SELECT \* FROM "dlqs" WHERE id = \$1`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	assert.ErrorIs(t, w.RetryRecord(context.Background(), 42), ErrDLQNotFound)
}

func TestRetryRecord_Resolves(t *testing.T) {
	bulk := &fakeBulk{deleteStatus: 200}
	w, mock := newTestWorker(t, bulk)
	entity := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "dlqs" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "outbox_id", "entity_type", "entity_id", "op", "error_msg", "attempts", "resolved"}).
			AddRow(3, 9, models.EntityRecap, entity.String(), models.OpDelete, "timeout", 1, false))
	mock.ExpectExec(`UPDATE "dlqs" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, w.RetryRecord(context.Background(), 3))
	assert.Equal(t, []string{"delete:" + entity.String()}, bulk.actions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryRecord_ResolveUpdateFails(t *testing.T) {
	w, mock := newTestWorker(t, &fakeBulk{deleteStatus: 200})
	entity := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "dlqs" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "outbox_id", "entity_type", "entity_id", "op", "error_msg", "attempts", "resolved"}).
			AddRow(3, 9, models.EntityRecap, entity.String(), models.OpDelete, "timeout", 1, false))
	mock.ExpectExec(`UPDATE "dlqs" SET`).WillReturnError(errors.New("connection reset"))

	err := w.RetryRecord(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailures(t *testing.T) {
	var f failures
	assert.NoError(t, f.err())
	f.add("first")
	f.add("second")
	assert.EqualError(t, f.err(), "first")
}
