package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/metrics"
	"github.com/sirdesai22/recap-service/internal/models"
)

// Datastore is what a migration run reads and writes.
type Datastore interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindRecapByEvent(ctx context.Context, eventID uuid.UUID) (*models.EventRecap, error)
	InsertRecap(ctx context.Context, r *models.EventRecap) error
}

type Result struct {
	Success         bool      `json:"success"`
	EventID         uuid.UUID `json:"eventId"`
	RecapID         string    `json:"recapId,omitempty"`
	Error           string    `json:"error,omitempty"`
	AlreadyMigrated bool      `json:"alreadyMigrated,omitempty"`
	// Recap is only filled on dry runs.
	Recap *models.EventRecap `json:"recap,omitempty"`
}

type Migrator struct {
	Store     Datastore
	Converter *Converter
	// DryRun converts without inserting.
	DryRun bool
}

func NewMigrator(store Datastore, conv *Converter) *Migrator {
	return &Migrator{Store: store, Converter: conv}
}

// WithDryRun returns a copy of m with DryRun set.
func (m *Migrator) WithDryRun(dry bool) *Migrator {
	c := *m
	c.DryRun = dry
	return &c
}

// Run migrates every event one at a time, oldest first. A failing event is
// recorded in its Result; the error return is only for failing to list events.
func (m *Migrator) Run(ctx context.Context) ([]Result, error) {
	events, err := m.Store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}
	log.Printf("🚚 Migrating %d legacy events (dry run: %v)", len(events), m.DryRun)

	results := make([]Result, 0, len(events))
	for i := range events {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, m.migrate(ctx, &events[i]))
	}

	var migrated, skipped, failed int
	for _, r := range results {
		switch {
		case !r.Success:
			failed++
		case r.AlreadyMigrated:
			skipped++
		default:
			migrated++
		}
	}
	log.Printf("✅ Migration finished: %d migrated, %d already migrated, %d failed", migrated, skipped, failed)
	return results, nil
}

// MigrateEvent migrates a single event by id.
func (m *Migrator) MigrateEvent(ctx context.Context, id uuid.UUID) (Result, error) {
	e, err := m.Store.GetEvent(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return m.migrate(ctx, e), nil
}

func (m *Migrator) migrate(ctx context.Context, e *models.Event) Result {
	logger := log.WithField("event_id", e.ID)
	res := Result{EventID: e.ID}

	existing, err := m.Store.FindRecapByEvent(ctx, e.ID)
	switch {
	case err == nil:
		res.Success, res.AlreadyMigrated, res.RecapID = true, true, existing.ID.String()
		metrics.MigratedEvents.WithLabelValues("already_migrated").Inc()
		return res
	case !errors.Is(err, db.ErrNotFound):
		return m.fail(logger, res, err)
	}

	list, err := m.Converter.Convert(ctx, e)
	if err != nil {
		return m.fail(logger, res, err)
	}

	recap := &models.EventRecap{
		EventID:          e.ID,
		Title:            e.Title,
		Summary:          e.Description,
		FeaturedImageURL: e.ImageURL,
	}
	if err := recap.SetBlocks(list); err != nil {
		return m.fail(logger, res, err)
	}

	if m.DryRun {
		res.Success, res.Recap = true, recap
		return res
	}

	if err := m.Store.InsertRecap(ctx, recap); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			// another run got there first
			res.Success, res.AlreadyMigrated = true, true
			metrics.MigratedEvents.WithLabelValues("already_migrated").Inc()
			return res
		}
		return m.fail(logger, res, err)
	}

	res.Success, res.RecapID = true, recap.ID.String()
	metrics.MigratedEvents.WithLabelValues("migrated").Inc()
	logger.WithField("blocks", len(list)).Info("📝 Recap created from legacy event")
	return res
}

func (m *Migrator) fail(logger *log.Entry, res Result, err error) Result {
	logger.WithError(err).Error("❌ Event migration failed")
	metrics.MigratedEvents.WithLabelValues("failed").Inc()
	res.Error = err.Error()
	return res
}
