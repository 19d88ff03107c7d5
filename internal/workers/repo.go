package workers

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sirdesai22/recap-service/internal/metrics"
	"github.com/sirdesai22/recap-service/internal/models"
)

type OutboxBatch struct{ Events []models.Outbox }

// FetchOutboxBatch claims up to limit unprocessed events, marking them processed.
func FetchOutboxBatch(ctx context.Context, db *gorm.DB, limit int) (OutboxBatch, error) {
	var evts []models.Outbox
	// FOR UPDATE SKIP LOCKED to allow multiple workers later
	tx := db.WithContext(ctx).Raw(`
		WITH cte AS (
		  SELECT * FROM outboxes
		  WHERE processed = false
		  ORDER BY id ASC
		  LIMIT ?
		  FOR UPDATE SKIP LOCKED
		)
		UPDATE outboxes SET processed = true
		FROM cte
		WHERE outboxes.id = cte.id
		RETURNING cte.*`, limit).Scan(&evts)
	return OutboxBatch{Events: evts}, tx.Error
}

// PutDLQ inserts a failed outbox event into the DLQ table.
func PutDLQ(ctx context.Context, db *gorm.DB, ob models.Outbox, msg string) {
	metrics.DLQEvents.Inc()
	dlq := models.DLQ{
		OutboxID:   ob.ID,
		EntityType: ob.EntityType,
		EntityID:   ob.EntityID.String(),
		Op:         ob.Op,
		Payload:    ob.Payload,
		ErrorMsg:   msg,
		CreatedAt:  time.Now(),
	}
	if err := db.WithContext(ctx).Create(&dlq).Error; err != nil {
		log.Printf("❌ Failed to insert into DLQ: %v", err)
	} else {
		log.Printf("💀 DLQ record created for outbox_id=%d", ob.ID)
	}
}

// ListOutbox returns the newest outbox events first.
func ListOutbox(ctx context.Context, db *gorm.DB, limit int) ([]models.Outbox, error) {
	var out []models.Outbox
	err := db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// ListDLQ returns the newest DLQ records first, optionally only unresolved ones.
func ListDLQ(ctx context.Context, db *gorm.DB, limit int, unresolvedOnly bool) ([]models.DLQ, error) {
	q := db.WithContext(ctx).Order("id desc").Limit(limit)
	if unresolvedOnly {
		q = q.Where("resolved = ?", false)
	}
	var out []models.DLQ
	err := q.Find(&out).Error
	return out, err
}

func (w *SyncWorker) Outbox(ctx context.Context, limit int) ([]models.Outbox, error) {
	return ListOutbox(ctx, w.DB, limit)
}

func (w *SyncWorker) DLQ(ctx context.Context, limit int, unresolvedOnly bool) ([]models.DLQ, error) {
	return ListDLQ(ctx, w.DB, limit, unresolvedOnly)
}
