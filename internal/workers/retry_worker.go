package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sirdesai22/recap-service/internal/metrics"
	"github.com/sirdesai22/recap-service/internal/models"
)

var ErrDLQNotFound = errors.New("dlq record not found")

// maxAttempts stops the periodic loop from retrying a record forever; the
// admin retry endpoint ignores it.
const maxAttempts = 10

func (w *SyncWorker) retryInterval() time.Duration {
	if w.RetryInterval <= 0 {
		return 30 * time.Second
	}
	return w.RetryInterval
}

// RetryDLQ periodically re-applies unresolved DLQ records until ctx is done.
func (w *SyncWorker) RetryDLQ(ctx context.Context) error {
	ticker := time.NewTicker(w.retryInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var dlqs []models.DLQ
			err := w.DB.WithContext(ctx).
				Where("resolved = ? AND attempts < ?", false, maxAttempts).
				Order("id asc").Limit(50).Find(&dlqs).Error
			if err != nil {
				log.Printf("DLQ fetch error: %v", err)
				continue
			}
			for _, d := range dlqs {
				log.Printf("♻️ Retrying DLQ id=%d entity=%s op=%s", d.ID, d.EntityType, d.Op)
				if err := w.retry(ctx, d); err != nil {
					log.Printf("DLQ id=%d still failing: %v", d.ID, err)
				}
			}
		}
	}
}

// RetryRecord re-applies a single DLQ record now.
func (w *SyncWorker) RetryRecord(ctx context.Context, id int64) error {
	var d models.DLQ
	err := w.DB.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("dlq %d: %w", id, ErrDLQNotFound)
	}
	if err != nil {
		return err
	}
	return w.retry(ctx, d)
}

func (w *SyncWorker) retry(ctx context.Context, d models.DLQ) error {
	err := w.reapply(ctx, d)
	now := time.Now()
	q := w.DB.WithContext(ctx).Model(&models.DLQ{}).Where("id = ?", d.ID)
	if err != nil {
		if uerr := q.Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"error_msg":  err.Error(),
			"retried_at": &now,
		}).Error; uerr != nil {
			log.Printf("❌ Failed to update DLQ id=%d: %v", d.ID, uerr)
		}
		return err
	}
	if err := q.Updates(map[string]any{"resolved": true, "retried_at": &now}).Error; err != nil {
		log.Printf("❌ Failed to mark DLQ id=%d resolved: %v", d.ID, err)
		return fmt.Errorf("resolve dlq %d: %w", d.ID, err)
	}
	metrics.ProcessedEvents.Inc()
	log.Printf("✅ DLQ id=%d resolved", d.ID)
	return nil
}

func (w *SyncWorker) reapply(ctx context.Context, d models.DLQ) error {
	entityID, err := uuid.Parse(d.EntityID)
	if err != nil {
		return fmt.Errorf("entity id %q: %w", d.EntityID, err)
	}
	ob := models.Outbox{
		ID:         d.OutboxID,
		EntityType: d.EntityType,
		EntityID:   entityID,
		Op:         d.Op,
		Payload:    d.Payload,
	}

	bi, err := w.newIndexer()
	if err != nil {
		return err
	}
	var fails failures
	if err := w.applyEvent(ctx, bi, ob, fails.add); err != nil {
		_ = bi.Close(ctx)
		return err
	}
	if err := bi.Close(ctx); err != nil {
		return err
	}
	return fails.err()
}
