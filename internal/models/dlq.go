package models

import (
	"time"

	"gorm.io/datatypes"
)

// DLQ holds outbox events the search sync could not apply.
type DLQ struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OutboxID   int64          `gorm:"index" json:"outbox_id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Op         string         `json:"op"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	ErrorMsg   string         `json:"error"`
	Attempts   int            `gorm:"default:0" json:"attempts"`
	CreatedAt  time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	RetriedAt  *time.Time     `json:"retried_at,omitempty"`
	Resolved   bool           `gorm:"default:false;index" json:"resolved"`
}
