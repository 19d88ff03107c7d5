package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

type EventStatus string

const (
	StatusUpcoming EventStatus = "upcoming"
	StatusPast     EventStatus = "past"
)

// ---------------- EVENTS ----------------
type Event struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title        string      `gorm:"not null" json:"title"`
	Date         time.Time   `gorm:"index" json:"date"`
	Location     string      `json:"location"`
	Description  string      `json:"description"`
	ImageURL     *string     `json:"image_url,omitempty"`
	Status       EventStatus `gorm:"type:varchar(16);default:upcoming;not null" json:"status"`
	RecapFileURL *string     `json:"recap_file_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ---------------- EVENT RECAPS ----------------
type SeoMeta struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

type EventRecap struct {
	ID               uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventID          uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	Title            string                      `gorm:"not null" json:"title"`
	Summary          string                      `json:"summary"`
	ContentBlocks    datatypes.JSON              `gorm:"type:jsonb;not null;default:'[]'" json:"content_blocks"`
	FeaturedImageURL *string                     `json:"featured_image_url,omitempty"`
	SeoMeta          datatypes.JSONType[SeoMeta] `gorm:"type:jsonb;not null;default:'{}'" json:"seo_meta"`
	Published        bool                        `gorm:"default:false;index" json:"published"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// Blocks decodes the stored content_blocks column.
func (r *EventRecap) Blocks() ([]blocks.ContentBlock, error) {
	return blocks.ParseList(r.ContentBlocks)
}

func (r *EventRecap) SetBlocks(list []blocks.ContentBlock) error {
	data, err := blocks.MarshalList(list)
	if err != nil {
		return err
	}
	r.ContentBlocks = datatypes.JSON(data)
	return nil
}

// ---------------- OUTBOX (for search sync events) ----------------
type Outbox struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string         `gorm:"index;not null" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null" json:"entity_id"`
	Op         string         `gorm:"not null" json:"op"` // UPSERT | DELETE
	Payload    datatypes.JSON `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	Processed  bool           `gorm:"default:false" json:"processed"`
}

const (
	EntityRecap = "recap"

	OpUpsert = "UPSERT"
	OpDelete = "DELETE"
)
