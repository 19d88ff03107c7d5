// Package workers keeps the recap search index in step with Postgres by
// draining the outbox into Elasticsearch.
package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sirdesai22/recap-service/internal/elastic"
	"github.com/sirdesai22/recap-service/internal/metrics"
	"github.com/sirdesai22/recap-service/internal/models"
)

type SyncWorker struct {
	DB            *gorm.DB
	ES            *es.Client
	Interval      time.Duration
	RetryInterval time.Duration
	BatchSize     int
}

func (w *SyncWorker) interval() time.Duration {
	if w.Interval <= 0 {
		return time.Second
	}
	return w.Interval
}

func (w *SyncWorker) batchSize() int {
	if w.BatchSize <= 0 {
		return 200
	}
	return w.BatchSize
}

// Run polls the outbox until ctx is done.
func (w *SyncWorker) Run(ctx context.Context) error {
	if err := elastic.EnsureIndexes(ctx, w.ES); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				log.Printf("worker error: %v", err)
			}
		}
	}
}

func (w *SyncWorker) newIndexer() (esutil.BulkIndexer, error) {
	return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: w.ES, Index: elastic.IdxRecaps, FlushBytes: 5 << 20, NumWorkers: 2,
	})
}

func (w *SyncWorker) processOnce(ctx context.Context) error {
	batch, err := FetchOutboxBatch(ctx, w.DB, w.batchSize())
	if err != nil {
		return err
	}
	if len(batch.Events) == 0 {
		return nil
	}

	bi, err := w.newIndexer()
	if err != nil {
		return err
	}

	for _, e := range batch.Events {
		ob := e
		onFail := func(msg string) {
			metrics.FailedEvents.Inc()
			PutDLQ(ctx, w.DB, ob, msg)
		}
		if err := w.applyEvent(ctx, bi, ob, onFail); err != nil {
			// already marked processed, so the DLQ is its only way back
			onFail(err.Error())
			log.Printf("DLQ outbox_id=%d: %v", ob.ID, err)
			continue
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}
	stats := bi.Stats()
	log.Printf("bulk ok=%d failed=%d", stats.NumFlushed, stats.NumFailed)
	return nil
}

// applyEvent queues the index action for one outbox event. Failures reported
// by Elasticsearch after the flush go to onFail.
func (w *SyncWorker) applyEvent(ctx context.Context, bi esutil.BulkIndexer, e models.Outbox, onFail func(string)) error {
	if e.EntityType != models.EntityRecap {
		return fmt.Errorf("unknown entity_type=%s", e.EntityType)
	}
	docID := e.EntityID.String()

	if e.Op == models.OpDelete {
		return w.add(ctx, bi, docID, "delete", nil, onFail)
	}

	var r models.EventRecap
	err := w.DB.WithContext(ctx).First(&r, "id = ?", e.EntityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// deleted after the upsert was queued
		return w.add(ctx, bi, docID, "delete", nil, onFail)
	}
	if err != nil {
		return err
	}
	doc, err := elastic.BuildRecapDoc(r)
	if err != nil {
		return err
	}
	return w.add(ctx, bi, docID, "index", doc, onFail)
}

func (w *SyncWorker) add(ctx context.Context, bi esutil.BulkIndexer, docID, action string, body []byte, onFail func(string)) error {
	item := esutil.BulkIndexerItem{
		Action:     action,
		DocumentID: docID,
		Index:      elastic.IdxRecaps,
		OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
			metrics.ProcessedEvents.Inc()
			log.Printf("✅ synced %s id=%s", elastic.IdxRecaps, docID)
		},
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err == nil && action == "delete" && res.Status == http.StatusNotFound {
				// nothing to delete is the state we wanted
				metrics.ProcessedEvents.Inc()
				return
			}
			msg := ""
			switch {
			case err != nil:
				msg = err.Error()
			case res.Error.Reason != "":
				msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
			default:
				msg = fmt.Sprintf("status=%d failed to index", res.Status)
			}
			onFail(msg)
			log.Printf("💀 %s failed for %s id=%s reason=%s", action, elastic.IdxRecaps, docID, msg)
		},
	}

	if len(body) > 0 {
		item.Body = bytes.NewReader(body)
	}
	return bi.Add(ctx, item)
}

// failures collects bulk failures reported from indexer goroutines.
type failures struct {
	mu   sync.Mutex
	msgs []string
}

func (f *failures) add(msg string) {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
}

func (f *failures) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return nil
	}
	return errors.New(f.msgs[0])
}
