package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sirdesai22/recap-service/internal/models"
)

// AddOutboxEvent inserts one event into the outbox inside tx.
func AddOutboxEvent(tx *gorm.DB, entityType string, entityID uuid.UUID, op string, payload any) error {
	var data datatypes.JSON
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("outbox payload: %w", err)
		}
		data = b
	}

	event := models.Outbox{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
		Payload:    data,
	}

	if err := tx.Create(&event).Error; err != nil {
		log.Printf("❌ Failed to create outbox event: %v", err)
		return err
	}
	return nil
}

// AddBatchOutboxEvents inserts one event per id. Used to reindex every recap.
func AddBatchOutboxEvents(tx *gorm.DB, entityType string, op string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	events := make([]models.Outbox, 0, len(ids))
	for _, id := range ids {
		events = append(events, models.Outbox{EntityType: entityType, EntityID: id, Op: op})
	}
	if err := tx.CreateInBatches(&events, 500).Error; err != nil {
		log.Printf("❌ Failed to insert batch outbox for %s: %v", entityType, err)
		return err
	}
	log.Printf("📦 %d outbox events created for %s", len(ids), entityType)
	return nil
}
