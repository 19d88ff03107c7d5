package db

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sirdesai22/recap-service/internal/models"
)

func strPtr(s string) *string { return &s }

// Seed inserts a few legacy events for local development. It does nothing once events exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Event{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("🌱 Data already exists, skipping seed.")
		return nil
	}

	now := time.Now()
	events := []models.Event{
		{
			Title:       "Spring Career Fair",
			Date:        now.AddDate(0, -3, 0),
			Location:    "Main Hall",
			Description: "Great turnout from students and employers alike.",
			Status:      models.StatusPast,
		},
		{
			Title:        "Tech Networking Night",
			Date:         now.AddDate(0, -1, 0),
			Location:     "Innovation Hub",
			Description:  "An evening of lightning talks and introductions.",
			Status:       models.StatusPast,
			RecapFileURL: strPtr("https://example.com/recaps/tech-night.pdf"),
		},
		{
			Title:    "Autumn Career Fair",
			Date:     now.AddDate(0, 2, 0),
			Location: "Main Hall",
			Status:   models.StatusUpcoming,
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&events).Error; err != nil {
			return err
		}
		log.Printf("🌱 %d sample events inserted.", len(events))
		return nil
	})
}
